package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

const latestKey = "latest"

// PriceRepository caches reads of an underlying price store. Concurrent
// misses for the same key share one backend query, which is not canceled
// with the caller that started it. Writes go through and purge the cache.
type PriceRepository struct {
	next    domain.PriceStore
	series  *LRUCache[domain.PriceSeries]
	latest  *LRUCache[domain.PricePoint]
	flights singleflight.Group
}

var _ domain.PriceStore = (*PriceRepository)(nil)

// NewPriceRepository wraps next. maxEntries bounds the number of cached
// ranges.
func NewPriceRepository(next domain.PriceStore, maxEntries int, ttl time.Duration) *PriceRepository {
	return &PriceRepository{
		next:   next,
		series: NewLRUCache[domain.PriceSeries](maxEntries, ttl),
		latest: NewLRUCache[domain.PricePoint](1, ttl),
	}
}

func (r *PriceRepository) Latest(ctx context.Context) (domain.PricePoint, error) {
	if p, ok := r.latest.Get(latestKey); ok {
		return p, nil
	}

	v, err, _ := r.flights.Do(latestKey, func() (any, error) {
		p, err := r.next.Latest(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		r.latest.Set(latestKey, p)
		return p, nil
	})
	if cerr := ctx.Err(); cerr != nil {
		return domain.PricePoint{}, cerr
	}
	if err != nil {
		return domain.PricePoint{}, err
	}
	return v.(domain.PricePoint), nil
}

// Series returns a copy of the cached window so callers may modify it.
func (r *PriceRepository) Series(ctx context.Context, rng date.Range) (domain.PriceSeries, error) {
	key := "series:" + rng.String()
	if s, ok := r.series.Get(key); ok {
		return s.Clone(0), nil
	}

	v, err, _ := r.flights.Do(key, func() (any, error) {
		s, err := r.next.Series(context.WithoutCancel(ctx), rng)
		if err != nil {
			return nil, err
		}
		r.series.Set(key, s)
		return s, nil
	})
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, err
	}
	return v.(domain.PriceSeries).Clone(0), nil
}

func (r *PriceRepository) Upsert(ctx context.Context, points []domain.PricePoint) error {
	defer r.Invalidate()
	return r.next.Upsert(ctx, points)
}

// Invalidate drops every cached entry
func (r *PriceRepository) Invalidate() {
	r.series.Purge()
	r.latest.Purge()
}

// CleanExpired implements Cleaner
func (r *PriceRepository) CleanExpired() int {
	return r.series.CleanExpired() + r.latest.CleanExpired()
}

// Stats returns the combined counters of both caches
func (r *PriceRepository) Stats() Stats {
	s, l := r.series.Stats(), r.latest.Stats()
	return Stats{
		Hits:      s.Hits + l.Hits,
		Misses:    s.Misses + l.Misses,
		Evictions: s.Evictions + l.Evictions,
	}
}

// Size returns the number of cached entries
func (r *PriceRepository) Size() int {
	return r.series.Size() + r.latest.Size()
}
