// Package cache provides in-process TTL caches and a cached price store.
package cache

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Purge removes every entry
	Purge()

	// Size returns the current number of items in the cache
	Size() int
}

// Stats are cumulative lookup counters
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically removes expired entries from registered caches on a
// cron schedule such as "@every 10m".
type Janitor struct {
	cron   *cron.Cron
	caches []Cleaner
	log    *logrus.Logger
}

// NewJanitor creates a janitor running on schedule. It does nothing until
// Start is called.
func NewJanitor(schedule string, log *logrus.Logger, caches ...Cleaner) (*Janitor, error) {
	j := &Janitor{
		cron:   cron.New(),
		caches: caches,
		log:    log,
	}
	if _, err := j.cron.AddFunc(schedule, j.Sweep); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Sweep cleans every registered cache once.
func (j *Janitor) Sweep() {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	if total > 0 {
		j.log.WithField("removed", total).Debug("cache sweep")
	}
}

// Start begins the schedule in its own goroutine
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
