package storage

import (
	"context"
	"errors"
	"time"

	"whaleScope/internal/model"
)

// Sink persists the results of one run.
type Sink interface {
	PutLpPrices(ctx context.Context, runAt time.Time, prices []model.LpPrice) error
	PutWhales(ctx context.Context, runAt time.Time, whales []model.Whale) error
}

// Multi fans writes out to several sinks and joins their errors.
type Multi []Sink

func (m Multi) PutLpPrices(ctx context.Context, runAt time.Time, prices []model.LpPrice) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PutLpPrices(ctx, runAt, prices); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) PutWhales(ctx context.Context, runAt time.Time, whales []model.Whale) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PutWhales(ctx, runAt, whales); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WhaleRecords numbers a ranking starting at 1.
func WhaleRecords(runAt time.Time, whales []model.Whale) []model.WhaleRecord {
	records := make([]model.WhaleRecord, len(whales))
	for i, whale := range whales {
		records[i] = model.WhaleRecord{
			RunAt:   runAt,
			Rank:    i + 1,
			Address: whale.Address,
			LpValue: whale.LpValue,
		}
	}
	return records
}
