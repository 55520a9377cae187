package domain

import (
	"fmt"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
)

// PricePoint is one trading day of the instrument.
// A zero Dividend means no dividend was paid that day.
type PricePoint struct {
	Date     date.Date `json:"date"`
	Close    float64   `json:"close"`
	Dividend float64   `json:"dividend,omitempty"`
}

// PriceSeries is an ascending, date-unique sequence of price points.
type PriceSeries []PricePoint

// First returns the earliest point. The series must not be empty.
func (s PriceSeries) First() PricePoint { return s[0] }

// Last returns the latest point. The series must not be empty.
func (s PriceSeries) Last() PricePoint { return s[len(s)-1] }

// Validate checks the invariants the simulator relies on: at least one
// point, positive closes, and strictly increasing dates.
func (s PriceSeries) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: price series is empty", ErrInvalidInput)
	}
	if s[0].Close <= 0 {
		return fmt.Errorf("%w: first close must be positive, got %v", ErrInvalidInput, s[0].Close)
	}
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return fmt.Errorf("%w: dates not strictly increasing at %s", ErrInvalidInput, s[i].Date)
		}
		if s[i].Close <= 0 {
			return fmt.Errorf("%w: close must be positive, got %v on %s", ErrInvalidInput, s[i].Close, s[i].Date)
		}
	}
	return nil
}

// Window returns the points falling within r. The result shares no memory
// with s.
func (s PriceSeries) Window(r date.Range) PriceSeries {
	out := make(PriceSeries, 0, len(s))
	for _, p := range s {
		if r.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a copy of s with spare capacity for extra points.
func (s PriceSeries) Clone(extra int) PriceSeries {
	out := make(PriceSeries, len(s), len(s)+extra)
	copy(out, s)
	return out
}
