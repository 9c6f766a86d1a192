package cache

import (
	"context"
	"time"
)

// RateCache holds store deduction rates looked up during imports. A miss
// is not an error; callers fall back to the repository.
type RateCache interface {
	GetRate(ctx context.Context, storeID int64) (float64, bool, error)
	SetRate(ctx context.Context, storeID int64, rate float64, ttl time.Duration) error
}

type NoopRateCache struct{}

func (NoopRateCache) GetRate(_ context.Context, _ int64) (float64, bool, error) {
	return 0, false, nil
}

func (NoopRateCache) SetRate(_ context.Context, _ int64, _ float64, _ time.Duration) error {
	return nil
}
