// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// CatalogRepository defines the secondary port for the read-only skip catalog.
type CatalogRepository interface {
	// List retrieves skips matching the given filters, ordered by size.
	List(ctx context.Context, filters SkipFilters) ([]*SkipRecord, error)

	// GetByID retrieves a skip by its catalog ID.
	// Returns an error wrapping ErrNotFound if no such skip exists.
	GetByID(ctx context.Context, id int) (*SkipRecord, error)
}

// SkipRecord represents a skip as stored in the catalog source.
type SkipRecord struct {
	ID               int
	Size             int
	HirePeriodDays   int
	TransportCost    *float64
	PerTonneCost     *float64
	PriceBeforeVAT   float64
	VAT              float64
	Postcode         string
	Area             string
	Forbidden        bool
	AllowedOnRoad    bool
	AllowsHeavyWaste bool
	CreatedAt        string
	UpdatedAt        string
}

// SkipFilters contains filter options for querying the catalog.
type SkipFilters struct {
	Postcode string // empty matches every area
}
