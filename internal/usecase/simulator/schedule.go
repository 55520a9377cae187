package simulator

import (
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// schedule decides on which series dates the monthly contribution fires.
type schedule struct {
	enabled bool
	day     int

	// last trading day of every month present in the series
	lastTrading map[date.YearMonth]date.Date

	// the lump sum already funds the first month when it lands on the contribution day
	lumpSum bool

	funded    date.YearMonth
	hasFunded bool
}

func newSchedule(series domain.PriceSeries, params domain.SimulationParameters) *schedule {
	s := &schedule{
		enabled: params.Recurring(),
		lumpSum: params.InitialInvestment > 0,
	}
	if !s.enabled {
		return s
	}
	s.day = *params.MonthlyDay
	s.lastTrading = make(map[date.YearMonth]date.Date)
	for _, p := range series {
		ym := p.Date.YearMonth()
		if last, ok := s.lastTrading[ym]; !ok || p.Date.After(last) {
			s.lastTrading[ym] = p.Date
		}
	}
	return s
}

// due reports whether the contribution fires on the i-th series date on.
// It must be called for every date in ascending order.
func (s *schedule) due(i int, on date.Date) bool {
	if !s.enabled {
		return false
	}
	ym := on.YearMonth()
	if s.hasFunded && s.funded == ym {
		return false
	}

	last := s.lastTrading[ym]
	var fire bool
	if s.day > last.Day() {
		// the month has no trading day on or after the contribution day
		fire = on == last
	} else {
		fire = on.Day() >= s.day
	}
	if !fire {
		return false
	}

	s.funded, s.hasFunded = ym, true
	if i == 0 && s.lumpSum && on.Day() == s.day {
		return false
	}
	return true
}
