package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"whaleScope/internal/model"
	"whaleScope/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS lp_prices (
	lp_mint     TEXT PRIMARY KEY,
	pool        TEXT NOT NULL,
	base_mint   TEXT NOT NULL,
	quote_mint  TEXT NOT NULL,
	price       NUMERIC NOT NULL,
	run_at      TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS whale_rankings (
	run_at      TIMESTAMPTZ NOT NULL,
	rank        INTEGER NOT NULL,
	address     TEXT NOT NULL,
	lp_value    NUMERIC NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_at, rank)
);
CREATE INDEX IF NOT EXISTS whale_rankings_address_idx ON whale_rankings (address, run_at);
`

// Store provides Postgres persistence for LP prices and whale rankings.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Sink = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutLpPrices upserts the latest price per LP mint.
func (s *Store) PutLpPrices(ctx context.Context, runAt time.Time, prices []model.LpPrice) error {
	if len(prices) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(`
			INSERT INTO lp_prices (lp_mint, pool, base_mint, quote_mint, price, run_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (lp_mint)
			DO UPDATE SET
				pool = EXCLUDED.pool,
				base_mint = EXCLUDED.base_mint,
				quote_mint = EXCLUDED.quote_mint,
				price = EXCLUDED.price,
				run_at = EXCLUDED.run_at,
				updated_at = now()
			WHERE lp_prices.run_at <= EXCLUDED.run_at
		`,
			p.LpMint,
			p.Pool,
			p.BaseMint,
			p.QuoteMint,
			p.Price,
			runAt,
		)
	}
	return s.sendBatch(ctx, batch, len(prices))
}

// PutWhales stores one ranking per run. Re-running with the same run time
// replaces the earlier rows.
func (s *Store) PutWhales(ctx context.Context, runAt time.Time, whales []model.Whale) error {
	if len(whales) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range storage.WhaleRecords(runAt, whales) {
		batch.Queue(`
			INSERT INTO whale_rankings (run_at, rank, address, lp_value, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (run_at, rank)
			DO UPDATE SET
				address = EXCLUDED.address,
				lp_value = EXCLUDED.lp_value
		`,
			r.RunAt,
			r.Rank,
			r.Address,
			r.LpValue,
		)
	}
	return s.sendBatch(ctx, batch, len(whales))
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
