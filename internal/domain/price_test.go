package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
)

func point(on string, close float64) PricePoint {
	return PricePoint{Date: date.MustParse(on), Close: close}
}

func TestPriceSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		series  PriceSeries
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Empty series should fail",
			series:  PriceSeries{},
			wantErr: true,
			errMsg:  "price series is empty",
		},
		{
			name:    "Zero first close should fail",
			series:  PriceSeries{point("2020-01-01", 0), point("2020-01-02", 10)},
			wantErr: true,
			errMsg:  "first close must be positive",
		},
		{
			name:    "Later zero close should fail",
			series:  PriceSeries{point("2020-01-01", 10), point("2020-01-02", 11), point("2020-01-03", 0)},
			wantErr: true,
			errMsg:  "close must be positive, got 0 on 2020-01-03",
		},
		{
			name:    "Later negative close should fail",
			series:  PriceSeries{point("2020-01-01", 10), point("2020-01-02", -1)},
			wantErr: true,
			errMsg:  "close must be positive",
		},
		{
			name:    "Duplicate dates should fail",
			series:  PriceSeries{point("2020-01-01", 10), point("2020-01-01", 11)},
			wantErr: true,
			errMsg:  "not strictly increasing",
		},
		{
			name:    "Descending dates should fail",
			series:  PriceSeries{point("2020-01-02", 10), point("2020-01-01", 11)},
			wantErr: true,
		},
		{
			name:    "Single point should pass",
			series:  PriceSeries{point("2020-01-01", 10)},
			wantErr: false,
		},
		{
			name:    "Ascending series should pass",
			series:  PriceSeries{point("2020-01-01", 10), point("2020-06-30", 12)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPriceSeries_Window(t *testing.T) {
	s := PriceSeries{point("2020-01-01", 1), point("2020-02-01", 2), point("2020-03-01", 3)}

	got := s.Window(date.Range{From: date.MustParse("2020-01-15"), To: date.MustParse("2020-03-01")})
	assert.Equal(t, PriceSeries{point("2020-02-01", 2), point("2020-03-01", 3)}, got)

	got[0].Close = 99
	assert.Equal(t, 2.0, s[1].Close, "window must not alias the source")

	assert.Len(t, s.Window(date.Range{}), 3)
}

func TestPriceSeries_Clone(t *testing.T) {
	s := PriceSeries{point("2020-01-01", 1)}
	c := s.Clone(4)
	c = append(c, point("2020-01-02", 2))
	c[0].Close = 5
	assert.Len(t, s, 1)
	assert.Equal(t, 1.0, s[0].Close)
	assert.Equal(t, 2, len(c))
}

func TestSimulationParameters_Validate(t *testing.T) {
	day := func(d int) *int { return &d }
	tests := []struct {
		name    string
		params  SimulationParameters
		wantErr bool
	}{
		{"Defaults should pass", SimulationParameters{}, false},
		{"Negative initial should fail", SimulationParameters{InitialInvestment: -1}, true},
		{"Negative monthly should fail", SimulationParameters{MonthlyAmount: -1}, true},
		{"Day 0 should fail", SimulationParameters{MonthlyDay: day(0)}, true},
		{"Day 32 should fail", SimulationParameters{MonthlyDay: day(32)}, true},
		{"Day 31 should pass", SimulationParameters{MonthlyDay: day(31), MonthlyAmount: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSimulationParameters_Recurring(t *testing.T) {
	d := 15
	assert.False(t, SimulationParameters{MonthlyAmount: 100}.Recurring())
	assert.False(t, SimulationParameters{MonthlyDay: &d}.Recurring())
	assert.True(t, SimulationParameters{MonthlyDay: &d, MonthlyAmount: 100}.Recurring())
}
