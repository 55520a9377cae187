package domain

import (
	"context"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
)

// PriceRepository defines the read side of the price history store
type PriceRepository interface {
	// Latest returns the most recent stored point.
	// Returns ErrNoData if the store is empty.
	Latest(ctx context.Context) (PricePoint, error)

	// Series returns the points within r in ascending date order.
	// An empty result is not an error.
	Series(ctx context.Context, r date.Range) (PriceSeries, error)
}

// PriceWriter defines the write side used by importers
type PriceWriter interface {
	// Upsert inserts the points, replacing any stored point with the same date.
	Upsert(ctx context.Context, points []PricePoint) error
}

// PriceStore is a price history store that can be read and written
type PriceStore interface {
	PriceRepository
	PriceWriter
}
