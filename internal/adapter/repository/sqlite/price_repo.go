// Package sqlite stores the price history in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// PriceRepository implements domain.PriceStore on SQLite
type PriceRepository struct {
	db *sql.DB
}

var _ domain.PriceStore = (*PriceRepository)(nil)

// NewPriceRepository opens (creating if needed) the database at dbPath and
// applies migrations.
func NewPriceRepository(dbPath string) (*PriceRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PriceRepository{db: db}, nil
}

// Close closes the database
func (r *PriceRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Latest retrieves the most recent price point
func (r *PriceRepository) Latest(ctx context.Context) (domain.PricePoint, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT date, close, dividend
		FROM price_history
		ORDER BY date DESC
		LIMIT 1`)

	p, err := scanPoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PricePoint{}, fmt.Errorf("price_history is empty: %w", domain.ErrNoData)
	}
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("get latest price: %w", err)
	}
	return p, nil
}

// Series retrieves the price points within rng, ascending by date.
// Dates are stored as ISO strings so lexical order is date order.
func (r *PriceRepository) Series(ctx context.Context, rng date.Range) (domain.PriceSeries, error) {
	from, to := bound(rng.From), bound(rng.To)
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, close, dividend
		FROM price_history
		WHERE (?1 = '' OR date >= ?1)
		  AND (?2 = '' OR date <= ?2)
		ORDER BY date ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query price series: %w", err)
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
		return nil, fmt.Errorf("iterate price series: %w", err)
	}
	return series, nil
}

// Upsert inserts or replaces price points in a single transaction
func (r *PriceRepository) Upsert(ctx context.Context, points []domain.PricePoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (date, close, dividend)
		VALUES (?, ?, ?)
		ON CONFLICT (date) DO UPDATE
		SET close = excluded.close, dividend = excluded.dividend`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.Date.String(), p.Close, p.Dividend); err != nil {
			return fmt.Errorf("upsert price for %s: %w", p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prices: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoint(row rowScanner) (domain.PricePoint, error) {
	var on string
	var p domain.PricePoint
	if err := row.Scan(&on, &p.Close, &p.Dividend); err != nil {
		return domain.PricePoint{}, err
	}
	d, err := date.Parse(on)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("parse stored date: %w", err)
	}
	p.Date = d
	return p, nil
}

func bound(d date.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
