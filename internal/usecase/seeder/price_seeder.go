package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// DefaultBatchSize is the number of points written per Upsert call
const DefaultBatchSize = 500

// Loader reads the price points used to seed a store
type Loader func() ([]domain.PricePoint, error)

// PriceSeeder fills an empty price store from a Loader
type PriceSeeder struct {
	repo      domain.PriceStore
	load      Loader
	BatchSize int
}

// NewPriceSeeder creates a new PriceSeeder instance
func NewPriceSeeder(repo domain.PriceStore, load Loader) *PriceSeeder {
	return &PriceSeeder{
		repo:      repo,
		load:      load,
		BatchSize: DefaultBatchSize,
	}
}

// Seed loads and stores the seed points if the store holds no prices yet.
// It returns the number of points written, zero when the store was already
// populated.
func (s *PriceSeeder) Seed(ctx context.Context) (int, error) {
	_, err := s.repo.Latest(ctx)
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, domain.ErrNoData) {
		return 0, fmt.Errorf("check price store: %w", err)
	}

	points, err := s.load()
	if err != nil {
		return 0, fmt.Errorf("load seed prices: %w", err)
	}
	if err := Import(ctx, s.repo, points, s.BatchSize); err != nil {
		return 0, err
	}
	return len(points), nil
}

// Import writes points in batches of batchSize. A batchSize below 1 writes
// everything in one call.
func Import(ctx context.Context, w domain.PriceWriter, points []domain.PricePoint, batchSize int) error {
	if batchSize < 1 {
		batchSize = max(len(points), 1)
	}
	for start := 0; start < len(points); start += batchSize {
		end := min(start+batchSize, len(points))
		if err := w.Upsert(ctx, points[start:end]); err != nil {
			return fmt.Errorf("import rows %d-%d: %w", start+1, end, err)
		}
	}
	return nil
}
