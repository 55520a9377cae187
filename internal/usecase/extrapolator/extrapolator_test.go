package extrapolator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

func pt(on string, close float64) domain.PricePoint {
	return domain.PricePoint{Date: date.MustParse(on), Close: close}
}

func dates(s domain.PriceSeries) []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Date.String()
	}
	return out
}

func TestDailyRate(t *testing.T) {
	assert.InDelta(t, math.Pow(1.08, 1.0/365)-1, DailyRate(8), 1e-15)
	assert.Equal(t, 0.0, DailyRate(0))
	assert.Less(t, DailyRate(-20), 0.0)
}

func TestExtend_OneYearAtEightPercent(t *testing.T) {
	series := domain.PriceSeries{pt("2023-01-01", 100)}

	out, err := Extend(series, date.MustParse("2023-01-01"), date.MustParse("2024-01-01"), 8)

	require.NoError(t, err)
	// 2023 has 365 days
	assert.Equal(t, "2024-01-01", out.Last().Date.String())
	assert.InDelta(t, 108.0, out.Last().Close, 1e-9)
}

func TestExtend_EndBeyondHistory(t *testing.T) {
	series := domain.PriceSeries{pt("2024-05-31", 90), pt("2024-06-14", 100)}

	out, err := Extend(series, date.MustParse("2024-05-31"), date.MustParse("2024-09-15"), 10)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-05-31", "2024-06-14",
		"2024-06-30", "2024-07-31", "2024-08-31",
		"2024-09-15",
	}, dates(out))
	assert.Equal(t, series[0], out[0])
	assert.Equal(t, series[1], out[1])

	rate := DailyRate(10)
	assert.InDelta(t, 100*math.Pow(1+rate, 16), out[2].Close, 1e-9)
	assert.InDelta(t, 100*math.Pow(1+rate, 93), out[5].Close, 1e-9)
	for _, p := range out[2:] {
		assert.Zero(t, p.Dividend)
		assert.True(t, p.Date.After(series.Last().Date))
	}
	assert.Len(t, series, 2, "input is not modified")
}

func TestExtend_EndOnMonthEndIsNotDuplicated(t *testing.T) {
	series := domain.PriceSeries{pt("2024-01-15", 100)}

	out, err := Extend(series, date.MustParse("2024-01-01"), date.MustParse("2024-03-31"), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-15", "2024-01-31", "2024-02-29", "2024-03-31"}, dates(out))
}

func TestExtend_LastKnownOnMonthEnd(t *testing.T) {
	series := domain.PriceSeries{pt("2023-01-31", 100)}

	out, err := Extend(series, date.MustParse("2023-01-01"), date.MustParse("2023-03-10"), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"2023-01-31", "2023-02-28", "2023-03-10"}, dates(out))
}

func TestExtend_StartBeyondHistory(t *testing.T) {
	series := domain.PriceSeries{pt("2024-01-10", 50), pt("2024-06-28", 100)}
	start := date.MustParse("2025-02-10")

	out, err := Extend(series, start, date.MustParse("2025-05-20"), 12)

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-02-10", "2025-02-28", "2025-03-31", "2025-04-30", "2025-05-20"}, dates(out))

	rate := DailyRate(12)
	days := start.DaysSince(date.MustParse("2024-06-28"))
	assert.InDelta(t, 100*math.Pow(1+rate, float64(days)), out[0].Close, 1e-9)
	for _, p := range out {
		assert.False(t, p.Date.Before(start))
	}
}

func TestExtend_FarFutureStart(t *testing.T) {
	series := domain.PriceSeries{pt("2000-01-01", 100)}

	out, err := Extend(series, date.MustParse("2400-01-01"), date.MustParse("2400-03-01"), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"2400-01-01", "2400-01-31", "2400-02-29", "2400-03-01"}, dates(out))
	// 400 Gregorian years are 146097 days
	assert.InDelta(t, 100*math.Pow(1+DailyRate(1), 146097), out[0].Close, 1e-6)
	assert.InDelta(t, 5366.584, out[0].Close, 1e-3)
}

func TestExtend_WithinHistoryIsACopy(t *testing.T) {
	series := domain.PriceSeries{pt("2024-01-02", 10), pt("2024-02-01", 11)}

	out, err := Extend(series, date.MustParse("2024-01-01"), date.MustParse("2024-02-01"), 10)

	require.NoError(t, err)
	assert.Equal(t, series, out)
	out[0].Close = 1
	assert.Equal(t, 10.0, series[0].Close)
	assert.False(t, Needed(series, date.MustParse("2024-01-01"), date.MustParse("2024-02-01")))
	assert.True(t, Needed(series, date.MustParse("2024-01-01"), date.MustParse("2024-02-02")))
}

func TestExtend_InvalidInput(t *testing.T) {
	s := domain.PriceSeries{pt("2024-01-02", 10)}
	start, end := date.MustParse("2024-01-01"), date.MustParse("2025-01-01")

	_, err := Extend(nil, start, end, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Extend(s, end, start, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Extend(s, end, end, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Extend(s, start, end, -100)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtend_RunawayIsCapped(t *testing.T) {
	t.Run("End beyond history", func(t *testing.T) {
		series := domain.PriceSeries{pt("2024-01-02", 10)}
		out, err := Extend(series, date.MustParse("2024-01-01"), date.MustParse("2200-01-01"), 5)

		assert.ErrorIs(t, err, domain.ErrRunawayExtrapolation)
		require.Len(t, out, 1+MaxPoints)
		assert.Equal(t, series[0], out[0])
		assert.True(t, out.Last().Date.Before(date.MustParse("2200-01-01")))
		assert.NoError(t, out.Validate())
	})

	t.Run("Start beyond history", func(t *testing.T) {
		series := domain.PriceSeries{pt("2024-01-02", 10)}
		start := date.MustParse("2030-01-01")
		out, err := Extend(series, start, date.MustParse("2300-01-01"), 5)

		assert.ErrorIs(t, err, domain.ErrRunawayExtrapolation)
		require.Len(t, out, MaxPoints)
		assert.Equal(t, start, out[0].Date)
		assert.NoError(t, out.Validate())
	})
}

func TestExtend_FeedsMonthlyContributions(t *testing.T) {
	series := domain.PriceSeries{pt("2024-01-02", 100)}

	out, err := Extend(series, date.MustParse("2024-01-01"), date.MustParse("2024-12-31"), 0)

	require.NoError(t, err)
	months := map[date.YearMonth]bool{}
	for _, p := range out {
		months[p.Date.YearMonth()] = true
		assert.InDelta(t, 100, p.Close, 1e-9)
	}
	assert.Len(t, months, 12)
	assert.NoError(t, out.Validate())
}
