// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/skiphire/internal/ports/secondary"
)

const skipColumns = `id, size, hire_period_days, transport_cost, per_tonne_cost,
	price_before_vat, vat, postcode, area, forbidden,
	allowed_on_road, allows_heavy_waste, created_at, updated_at`

// CatalogRepository implements secondary.CatalogRepository with SQLite.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new SQLite catalog repository.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// List retrieves skips matching the filters, smallest first.
func (r *CatalogRepository) List(ctx context.Context, filters secondary.SkipFilters) ([]*secondary.SkipRecord, error) {
	query := "SELECT " + skipColumns + " FROM skips"
	var args []any
	if filters.Postcode != "" {
		query += " WHERE postcode = ?"
		args = append(args, filters.Postcode)
	}
	query += " ORDER BY size ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list skips: %w", err)
	}
	defer rows.Close()

	var skips []*secondary.SkipRecord
	for rows.Next() {
		record, err := scanSkip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skip: %w", err)
		}
		skips = append(skips, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list skips: %w", err)
	}

	return skips, nil
}

// GetByID retrieves a skip by its catalog ID.
func (r *CatalogRepository) GetByID(ctx context.Context, id int) (*secondary.SkipRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+skipColumns+" FROM skips WHERE id = ?", id)

	record, err := scanSkip(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("skip %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get skip: %w", err)
	}

	return record, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSkip(s scanner) (*secondary.SkipRecord, error) {
	var (
		transport sql.NullFloat64
		perTonne  sql.NullFloat64
	)

	record := &secondary.SkipRecord{}
	err := s.Scan(
		&record.ID, &record.Size, &record.HirePeriodDays, &transport, &perTonne,
		&record.PriceBeforeVAT, &record.VAT, &record.Postcode, &record.Area, &record.Forbidden,
		&record.AllowedOnRoad, &record.AllowsHeavyWaste, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if transport.Valid {
		record.TransportCost = &transport.Float64
	}
	if perTonne.Valid {
		record.PerTonneCost = &perTonne.Float64
	}
	return record, nil
}

// Ensure CatalogRepository implements the interface
var _ secondary.CatalogRepository = (*CatalogRepository)(nil)
