// Package csvfeed reads daily price history from CSV files with a
// "date,close[,dividend]" header. Column order is free and extra columns
// are ignored.
package csvfeed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// ReadFile reads the price points in the CSV file at path
func ReadFile(path string) ([]domain.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	points, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// Read parses price points from r in file order. Blank dividend cells
// read as zero.
func Read(r io.Reader) ([]domain.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := columns(header)
	if err != nil {
		return nil, err
	}

	var points []domain.PricePoint
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)

		p, err := cols.point(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidInput, line, err)
		}
		points = append(points, p)
	}
	return points, nil
}

type layout struct {
	date, close, dividend int
}

func columns(header []string) (layout, error) {
	l := layout{date: -1, close: -1, dividend: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "date":
			l.date = i
		case "close":
			l.close = i
		case "dividend", "dividends":
			l.dividend = i
		}
	}
	if l.date < 0 || l.close < 0 {
		return l, fmt.Errorf("%w: header needs date and close columns, got %q", domain.ErrInvalidInput, header)
	}
	return l, nil
}

func (l layout) point(record []string) (domain.PricePoint, error) {
	if l.date >= len(record) || l.close >= len(record) {
		return domain.PricePoint{}, fmt.Errorf("expected at least %d fields, got %d", max(l.date, l.close)+1, len(record))
	}

	on, err := date.Parse(strings.TrimSpace(record[l.date]))
	if err != nil {
		return domain.PricePoint{}, err
	}

	closePrice, err := decimal.NewFromString(strings.TrimSpace(record[l.close]))
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("invalid close %q", record[l.close])
	}
	if !closePrice.IsPositive() {
		return domain.PricePoint{}, fmt.Errorf("close must be positive, got %s", closePrice)
	}

	dividend := decimal.Zero
	if l.dividend >= 0 && l.dividend < len(record) {
		if raw := strings.TrimSpace(record[l.dividend]); raw != "" {
			dividend, err = decimal.NewFromString(raw)
			if err != nil {
				return domain.PricePoint{}, fmt.Errorf("invalid dividend %q", raw)
			}
			if dividend.IsNegative() {
				return domain.PricePoint{}, fmt.Errorf("dividend must not be negative, got %s", dividend)
			}
		}
	}

	return domain.PricePoint{
		Date:     on,
		Close:    closePrice.InexactFloat64(),
		Dividend: dividend.InexactFloat64(),
	}, nil
}
