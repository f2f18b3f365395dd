package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/skiphire/internal/core/catalog"
	"github.com/example/skiphire/internal/core/pricing"
	"github.com/example/skiphire/internal/ports/primary"
	"github.com/example/skiphire/internal/ports/secondary"
)

// catalogTimeLayout is the timestamp format of the catalog source.
const catalogTimeLayout = "2006-01-02T15:04:05.999999"

// CatalogServiceImpl implements the CatalogService interface.
type CatalogServiceImpl struct {
	catalogRepo     secondary.CatalogRepository
	defaultPostcode string
}

// NewCatalogService creates a new CatalogService with injected dependencies.
// defaultPostcode is used when a listing does not name an area.
func NewCatalogService(catalogRepo secondary.CatalogRepository, defaultPostcode string) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		catalogRepo:     catalogRepo,
		defaultPostcode: defaultPostcode,
	}
}

// ListSkips lists skips for an area, smallest first. Forbidden skips are
// hidden unless explicitly requested.
func (s *CatalogServiceImpl) ListSkips(ctx context.Context, filters primary.SkipFilters) ([]*primary.Skip, error) {
	postcode := filters.Postcode
	if postcode == "" {
		postcode = s.defaultPostcode
	}

	records, err := s.catalogRepo.List(ctx, secondary.SkipFilters{Postcode: postcode})
	if err != nil {
		return nil, fmt.Errorf("failed to list skips: %w", err)
	}

	skips := make([]*primary.Skip, 0, len(records))
	for _, r := range records {
		skip, err := skipFromRecord(r)
		if err != nil {
			return nil, err
		}
		if skip.Forbidden && !filters.IncludeForbidden {
			continue
		}
		skips = append(skips, skipToDTO(skip))
	}

	sort.SliceStable(skips, func(i, j int) bool { return skips[i].Size < skips[j].Size })
	return skips, nil
}

// GetSkip retrieves a skip by ID.
func (s *CatalogServiceImpl) GetSkip(ctx context.Context, skipID int) (*primary.Skip, error) {
	skip, err := s.lookup(ctx, skipID)
	if err != nil {
		return nil, err
	}
	return skipToDTO(skip), nil
}

// QuoteSkip returns the VAT-inclusive price breakdown for a skip.
func (s *CatalogServiceImpl) QuoteSkip(ctx context.Context, skipID int) (*primary.Quote, error) {
	skip, err := s.lookup(ctx, skipID)
	if err != nil {
		return nil, err
	}
	return quoteToDTO(pricing.NewQuote(skip.PriceBeforeVAT, skip.VAT)), nil
}

func (s *CatalogServiceImpl) lookup(ctx context.Context, skipID int) (catalog.Skip, error) {
	return lookupSkip(ctx, s.catalogRepo, skipID)
}

// lookupSkip fetches a skip from the catalog source and checks it.
func lookupSkip(ctx context.Context, repo secondary.CatalogRepository, skipID int) (catalog.Skip, error) {
	record, err := repo.GetByID(ctx, skipID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return catalog.Skip{}, fmt.Errorf("%w: %d", primary.ErrSkipNotFound, skipID)
		}
		return catalog.Skip{}, fmt.Errorf("failed to get skip: %w", err)
	}
	return skipFromRecord(record)
}

// skipFromRecord converts a catalog record to the core type.
func skipFromRecord(r *secondary.SkipRecord) (catalog.Skip, error) {
	skip := catalog.Skip{
		ID:               r.ID,
		Size:             r.Size,
		HirePeriodDays:   r.HirePeriodDays,
		TransportCost:    r.TransportCost,
		PerTonneCost:     r.PerTonneCost,
		PriceBeforeVAT:   r.PriceBeforeVAT,
		VAT:              r.VAT,
		Postcode:         r.Postcode,
		Area:             r.Area,
		Forbidden:        r.Forbidden,
		AllowedOnRoad:    r.AllowedOnRoad,
		AllowsHeavyWaste: r.AllowsHeavyWaste,
		CreatedAt:        parseCatalogTime(r.CreatedAt),
		UpdatedAt:        parseCatalogTime(r.UpdatedAt),
	}
	if err := catalog.Validate(skip); err != nil {
		return catalog.Skip{}, fmt.Errorf("invalid catalog entry: %w", err)
	}
	return skip, nil
}

func parseCatalogTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(catalogTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatCatalogTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(catalogTimeLayout)
}

// skipToDTO converts a core skip to the primary port type.
func skipToDTO(skip catalog.Skip) *primary.Skip {
	return &primary.Skip{
		ID:               skip.ID,
		Size:             skip.Size,
		HirePeriodDays:   skip.HirePeriodDays,
		TransportCost:    skip.TransportCost,
		PerTonneCost:     skip.PerTonneCost,
		PriceBeforeVAT:   skip.PriceBeforeVAT,
		VAT:              skip.VAT,
		Postcode:         skip.Postcode,
		Area:             skip.Area,
		Forbidden:        skip.Forbidden,
		AllowedOnRoad:    skip.AllowedOnRoad,
		AllowsHeavyWaste: skip.AllowsHeavyWaste,
		Description:      catalog.Describe(skip.Size),
		CreatedAt:        formatCatalogTime(skip.CreatedAt),
		UpdatedAt:        formatCatalogTime(skip.UpdatedAt),
	}
}

func quoteToDTO(q pricing.Quote) *primary.Quote {
	return &primary.Quote{
		PriceBeforeVAT: q.PriceBeforeVAT,
		VATPercent:     q.VATPercent,
		VATAmount:      q.VATAmount,
		Total:          q.Total,
		TotalMinor:     pricing.ToMinorUnits(q.Total),
	}
}

// Ensure CatalogServiceImpl implements the interface
var _ primary.CatalogService = (*CatalogServiceImpl)(nil)
