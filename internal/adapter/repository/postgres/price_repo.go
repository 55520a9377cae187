package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// priceRepository implements domain.PriceStore
type priceRepository struct {
	db *DB
}

// NewPriceRepository creates a new price history repository
func NewPriceRepository(db *DB) domain.PriceStore {
	return &priceRepository{db: db}
}

// Latest retrieves the most recent price point
func (r *priceRepository) Latest(ctx context.Context) (domain.PricePoint, error) {
	query := `
		SELECT date, close, dividend
		FROM price_history
		ORDER BY date DESC
		LIMIT 1
	`

	p, err := scanPoint(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PricePoint{}, fmt.Errorf("price_history is empty: %w", domain.ErrNoData)
		}
		return domain.PricePoint{}, fmt.Errorf("failed to get latest price: %w", err)
	}

	return p, nil
}

// Series retrieves the price points within rng, ascending by date
func (r *priceRepository) Series(ctx context.Context, rng date.Range) (domain.PriceSeries, error) {
	query := `
		SELECT date, close, dividend
		FROM price_history
		WHERE ($1::date IS NULL OR date >= $1::date)
		  AND ($2::date IS NULL OR date <= $2::date)
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, bound(rng.From), bound(rng.To))
	if err != nil {
		return nil, fmt.Errorf("failed to query price series: %w", err)
	}
	defer rows.Close()

	series := make(domain.PriceSeries, 0)
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price series: %w", err)
	}

	return series, nil
}

// Upsert inserts or replaces price points in a single transaction
func (r *priceRepository) Upsert(ctx context.Context, points []domain.PricePoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (date, close, dividend)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE
		SET close = EXCLUDED.close, dividend = EXCLUDED.dividend
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.ExecContext(ctx,
			p.Date.Time(),
			decimal.NewFromFloat(p.Close).String(),
			decimal.NewFromFloat(p.Dividend).String(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert price for %s: %w", p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prices: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoint(row rowScanner) (domain.PricePoint, error) {
	var on time.Time
	var closeStr, dividendStr string

	if err := row.Scan(&on, &closeStr, &dividendStr); err != nil {
		return domain.PricePoint{}, err
	}

	// Parse close and dividend (NUMERIC)
	closePrice, err := decimal.NewFromString(closeStr)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("failed to parse close: %w", err)
	}
	dividend, err := decimal.NewFromString(dividendStr)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("failed to parse dividend: %w", err)
	}

	return domain.PricePoint{
		Date:     date.FromTime(on),
		Close:    closePrice.InexactFloat64(),
		Dividend: dividend.InexactFloat64(),
	}, nil
}

// bound maps an open side of a range to NULL
func bound(d date.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}
