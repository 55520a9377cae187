// Package date provides a calendar date with day granularity and no
// time-of-day or timezone component.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format is the ISO-8601 layout used to read and write dates.
const Format = "2006-01-02"

const readFormat = "2006-1-2" // lenient, accepts 2025-7-1

// Date is a calendar day. The zero value is not a valid date, see IsZero.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, so New(2024, 2, 30) is 2024-03-01.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current date in UTC.
func Today() Date { return FromTime(time.Now().UTC()) }

// Parse parses a date in the "2006-01-02" layout. Single digit months and
// days are accepted.
func Parse(str string) (Date, error) {
	t, err := time.Parse(readFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, Format, err)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Year returns the year of d.
func (d Date) Year() int { return d.y }

// Month returns the month of d.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month of d.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Add returns d shifted by days.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// AddMonths returns the same day n months later, clamped to the last day of
// the target month (Jan 31 + 1 month is Feb 28 or 29).
func (d Date) AddMonths(n int) Date {
	first := New(d.y, d.m+time.Month(n), 1)
	day := min(d.d, DaysIn(first.y, first.m))
	return Date{first.y, first.m, day}
}

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.compare(x) < 0 }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.compare(x) > 0 }

func (d Date) compare(x Date) int {
	switch {
	case d.y != x.y:
		return d.y - x.y
	case d.m != x.m:
		return int(d.m - x.m)
	default:
		return d.d - x.d
	}
}

const secondsPerDay = 24 * 60 * 60

// DaysSince returns the number of calendar days from x to d. It is negative
// when d is before x.
func (d Date) DaysSince(x Date) int {
	return int((d.Time().Unix() - x.Time().Unix()) / secondsPerDay)
}

// EndOfMonth returns the last calendar day of d's month.
func (d Date) EndOfMonth() Date { return Date{d.y, d.m, DaysIn(d.y, d.m)} }

// IsEndOfMonth reports whether d is the last calendar day of its month.
func (d Date) IsEndOfMonth() bool { return d.d == DaysIn(d.y, d.m) }

// YearMonth identifies d's calendar month.
func (d Date) YearMonth() YearMonth { return YearMonth{d.y, d.m} }

// String formats d as "2006-01-02".
func (d Date) String() string { return fmt.Sprintf("%04d-%02d-%02d", d.y, int(d.m), d.d) }

// MarshalJSON encodes d as a JSON string.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON decodes a JSON string in the "2006-01-02" layout.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := Parse(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)

// YearMonth is a calendar month, usable as a map key.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

// IsLeap reports whether year is a leap year in the Gregorian calendar.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeap(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// Min returns the earlier of a and b.
func Min(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of a and b.
func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}
