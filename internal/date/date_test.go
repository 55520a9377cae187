package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		got  Date
		want string
	}{
		{"plain", New(2024, time.March, 15), "2024-03-15"},
		{"day overflow in leap year", New(2024, time.February, 30), "2024-03-01"},
		{"day overflow in common year", New(2023, time.February, 29), "2023-03-01"},
		{"month overflow", New(2023, 13, 1), "2024-01-01"},
		{"day zero is previous month end", New(2024, time.March, 0), "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got.String())
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("2025-7-1")
	require.NoError(t, err)
	assert.Equal(t, New(2025, time.July, 1), d)

	d, err = Parse("2020-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	_, err = Parse("2021-02-29")
	assert.Error(t, err)

	_, err = Parse("not-a-date")
	assert.Error(t, err)
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-10", "2024-01-31"},
		{"2024-02-01", "2024-02-29"},
		{"2023-02-14", "2023-02-28"},
		{"1900-02-14", "1900-02-28"},
		{"2000-02-14", "2000-02-29"},
		{"2024-04-30", "2024-04-30"},
		{"2024-12-31", "2024-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := MustParse(tt.in).EndOfMonth()
			assert.Equal(t, tt.want, got.String())
			assert.True(t, got.IsEndOfMonth())
		})
	}
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2024-01-01", "2024-01-01", 0},
		{"2024-01-31", "2024-02-01", 1},
		{"2024-02-28", "2024-03-01", 2},
		{"2023-02-28", "2023-03-01", 1},
		{"2023-01-01", "2024-01-01", 365},
		{"2024-01-01", "2025-01-01", 366},
		{"2025-01-01", "2024-01-01", -366},
		{"2000-01-01", "2400-01-01", 146097},
		{"2400-01-01", "2000-01-01", -146097},
		{"1900-01-01", "2100-01-01", 73049},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.to).DaysSince(MustParse(tt.from)))
		})
	}
}

func TestAddMonths_ClampsToMonthEnd(t *testing.T) {
	assert.Equal(t, "2024-02-29", MustParse("2024-01-31").AddMonths(1).String())
	assert.Equal(t, "2023-02-28", MustParse("2023-01-31").AddMonths(1).String())
	assert.Equal(t, "2025-01-15", MustParse("2024-12-15").AddMonths(1).String())
	assert.Equal(t, "2023-11-30", MustParse("2024-01-30").AddMonths(-2).String())
}

func TestCompare(t *testing.T) {
	a := MustParse("2024-01-31")
	b := MustParse("2024-02-01")
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.Equal(t, a, Min(a, b))
	assert.Equal(t, b, Max(a, b))
}

func TestYearMonth(t *testing.T) {
	a := MustParse("2024-02-01")
	b := MustParse("2024-02-29")
	c := MustParse("2025-02-01")
	assert.Equal(t, a.YearMonth(), b.YearMonth())
	assert.NotEqual(t, a.YearMonth(), c.YearMonth())
	assert.Equal(t, "2024-02", a.YearMonth().String())
}

func TestIsLeap(t *testing.T) {
	assert.True(t, IsLeap(2024))
	assert.True(t, IsLeap(2000))
	assert.False(t, IsLeap(1900))
	assert.False(t, IsLeap(2023))
}

func TestJSON(t *testing.T) {
	type payload struct {
		On Date `json:"on"`
	}
	b, err := json.Marshal(payload{On: New(2024, time.June, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2024-06-05"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2020-02-29"}`), &p))
	assert.Equal(t, New(2020, time.February, 29), p.On)

	assert.Error(t, json.Unmarshal([]byte(`{"on":"2020-13-01"}`), &p))
}

func TestRange(t *testing.T) {
	r := Range{From: MustParse("2024-01-01"), To: MustParse("2024-12-31")}
	assert.True(t, r.Contains(MustParse("2024-01-01")))
	assert.True(t, r.Contains(MustParse("2024-12-31")))
	assert.False(t, r.Contains(MustParse("2025-01-01")))
	assert.True(t, r.Valid())
	assert.True(t, Range{}.Contains(MustParse("1999-01-01")))
	assert.False(t, Range{From: MustParse("2024-02-01"), To: MustParse("2024-01-01")}.Valid())
	assert.Equal(t, "2024-01-01..-", Range{From: MustParse("2024-01-01")}.String())
}
