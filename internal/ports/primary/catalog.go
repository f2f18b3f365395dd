package primary

import "context"

// CatalogService defines the primary port for browsing skips.
type CatalogService interface {
	// ListSkips lists skips for an area, smallest first.
	ListSkips(ctx context.Context, filters SkipFilters) ([]*Skip, error)

	// GetSkip retrieves a skip by ID.
	GetSkip(ctx context.Context, skipID int) (*Skip, error)

	// QuoteSkip returns the VAT-inclusive price breakdown for a skip.
	QuoteSkip(ctx context.Context, skipID int) (*Quote, error)
}

// SkipFilters contains filter options for listing skips.
type SkipFilters struct {
	Postcode         string
	IncludeForbidden bool
}

// Skip represents a skip exposed to adapters.
type Skip struct {
	ID               int      `json:"id"`
	Size             int      `json:"size"`
	HirePeriodDays   int      `json:"hire_period_days"`
	TransportCost    *float64 `json:"transport_cost"`
	PerTonneCost     *float64 `json:"per_tonne_cost"`
	PriceBeforeVAT   float64  `json:"price_before_vat"`
	VAT              float64  `json:"vat"`
	Postcode         string   `json:"postcode"`
	Area             string   `json:"area"`
	Forbidden        bool     `json:"forbidden"`
	AllowedOnRoad    bool     `json:"allowed_on_road"`
	AllowsHeavyWaste bool     `json:"allows_heavy_waste"`
	Description      string   `json:"description"`
	CreatedAt        string   `json:"created_at,omitempty"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

// Quote is the price breakdown of a skip.
type Quote struct {
	PriceBeforeVAT float64 `json:"price_before_vat"`
	VATPercent     float64 `json:"vat_percent"`
	VATAmount      float64 `json:"vat_amount"`
	Total          float64 `json:"total"`
	TotalMinor     int64   `json:"total_minor"`
}
