// Package memory keeps the price history in process memory. It backs the
// CLI and tests, and any deployment that loads a CSV at startup.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// PriceRepository implements domain.PriceStore over a sorted slice
type PriceRepository struct {
	mu     sync.RWMutex
	series domain.PriceSeries
}

var _ domain.PriceStore = (*PriceRepository)(nil)

// NewPriceRepository creates a store seeded with points, which need not be
// sorted. Later duplicates of a date win.
func NewPriceRepository(points ...domain.PricePoint) *PriceRepository {
	r := &PriceRepository{}
	r.merge(points)
	return r
}

func (r *PriceRepository) Latest(ctx context.Context) (domain.PricePoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.series) == 0 {
		return domain.PricePoint{}, fmt.Errorf("price history is empty: %w", domain.ErrNoData)
	}
	return r.series.Last(), nil
}

func (r *PriceRepository) Series(ctx context.Context, rng date.Range) (domain.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.series.Window(rng), nil
}

func (r *PriceRepository) Upsert(ctx context.Context, points []domain.PricePoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, p := range points {
		if p.Close <= 0 {
			return fmt.Errorf("%w: close for %s must be positive", domain.ErrInvalidInput, p.Date)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.merge(points)
	return nil
}

// merge must be called with the write lock held (or before the store is shared).
func (r *PriceRepository) merge(points []domain.PricePoint) {
	byDate := make(map[date.Date]domain.PricePoint, len(r.series)+len(points))
	for _, p := range r.series {
		byDate[p.Date] = p
	}
	for _, p := range points {
		byDate[p.Date] = p
	}

	merged := make(domain.PriceSeries, 0, len(byDate))
	for _, p := range byDate {
		merged = append(merged, p)
	}
	slices.SortFunc(merged, func(a, b domain.PricePoint) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})
	r.series = merged
}
