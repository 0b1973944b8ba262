package price

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const redisKeyPrefix = "whalescope:price:"

// RedisSource is a read-through layer that shares spot prices across runs.
// Redis errors never fail a lookup; the upstream source is used instead.
type RedisSource struct {
	client   redis.UniversalClient
	upstream Source
	ttl      time.Duration
	logger   *zap.Logger
}

func NewRedisSource(client redis.UniversalClient, upstream Source, ttl time.Duration, logger *zap.Logger) *RedisSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSource{client: client, upstream: upstream, ttl: ttl, logger: logger}
}

func (s *RedisSource) SpotPrice(ctx context.Context, token string) (decimal.Decimal, error) {
	key := redisKeyPrefix + token
	cached, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if price, parseErr := decimal.NewFromString(cached); parseErr == nil {
			return price, nil
		}
		s.logger.Debug("invalid cached price", zap.String("key", key), zap.String("value", cached))
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Debug("redis get failed", zap.String("key", key), zap.Error(err))
	}

	price, err := s.upstream.SpotPrice(ctx, token)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsPositive() {
		if err := s.client.Set(ctx, key, price.String(), s.ttl).Err(); err != nil {
			s.logger.Debug("redis set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return price, nil
}
