// Package extrapolator projects a price series past the end of its history
// with a constant compounding rate.
package extrapolator

import (
	"fmt"
	"math"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// MaxPoints caps the number of synthesized points of a single Extend call.
const MaxPoints = 1000

// DailyRate converts an annualized percentage (8 for 8%) to the equivalent
// daily compounding rate over a 365 day year.
func DailyRate(annualPercent float64) float64 {
	return math.Pow(1+annualPercent/100, 1.0/365) - 1
}

// Needed reports whether start or end lies after the last point of series.
func Needed(series domain.PriceSeries, start, end date.Date) bool {
	if len(series) == 0 {
		return false
	}
	last := series.Last().Date
	return start.After(last) || end.After(last)
}

// Extend returns a copy of series lengthened to end.
//
// When start is after the last known date the real points are dropped and
// the result starts at start. Otherwise the real points are kept and the
// projection starts after the last one. In both modes one point is emitted
// at the end of every following month before end, plus a final point at end.
// Synthesized closes compound from the last known close; they carry no
// dividend.
//
// If MaxPoints is reached before end, the truncated series is returned with
// domain.ErrRunawayExtrapolation.
func Extend(series domain.PriceSeries, start, end date.Date, annualPercent float64) (domain.PriceSeries, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: cannot extrapolate an empty series", domain.ErrInvalidInput)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s is not before end %s", domain.ErrInvalidInput, start, end)
	}
	if annualPercent <= -100 {
		return nil, fmt.Errorf("%w: annualized return must be above -100%%, got %v", domain.ErrInvalidInput, annualPercent)
	}

	last := series.Last()
	p := projection{
		from:  last.Date,
		close: last.Close,
		rate:  DailyRate(annualPercent),
	}

	switch {
	case start.After(last.Date):
		out := make(domain.PriceSeries, 0, capacity(start, end))
		out = append(out, p.at(start))
		return p.fill(out, 1, start, end)
	case end.After(last.Date):
		out := series.Clone(capacity(last.Date, end))
		return p.fill(out, 0, last.Date, end)
	default:
		return series.Clone(0), nil
	}
}

// projection compounds a known close forward in time.
type projection struct {
	from  date.Date
	close float64
	rate  float64
}

func (p projection) at(on date.Date) domain.PricePoint {
	days := on.DaysSince(p.from)
	return domain.PricePoint{
		Date:  on,
		Close: p.close * math.Pow(1+p.rate, float64(days)),
	}
}

// fill appends the month ends strictly between after and end, then end.
// generated counts the points out already holds from this projection.
func (p projection) fill(out domain.PriceSeries, generated int, after, end date.Date) (domain.PriceSeries, error) {
	cursor := after
	for {
		if generated >= MaxPoints {
			return out, fmt.Errorf("%w: %d points generated, reached %s of %s", domain.ErrRunawayExtrapolation, generated, cursor, end)
		}
		next := cursor.Add(1).EndOfMonth()
		if !next.Before(end) {
			break
		}
		out = append(out, p.at(next))
		generated++
		cursor = next
	}
	if out.Last().Date != end {
		out = append(out, p.at(end))
	}
	return out, nil
}

// capacity estimates the number of month ends between from and to.
func capacity(from, to date.Date) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month()) + 2
	return max(0, min(months, MaxPoints+1))
}
