package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/skiphire/internal/ports/primary"
)

// CatalogAdapter is a thin adapter that translates CLI operations to CatalogService calls.
// It depends only on the CatalogService interface, enabling easy testing with mocks.
type CatalogAdapter struct {
	service primary.CatalogService
	out     io.Writer
}

// NewCatalogAdapter creates a new CatalogAdapter with the given service.
func NewCatalogAdapter(service primary.CatalogService, out io.Writer) *CatalogAdapter {
	return &CatalogAdapter{
		service: service,
		out:     out,
	}
}

// List lists the skips offered in an area.
func (a *CatalogAdapter) List(ctx context.Context, postcode string, includeForbidden bool) error {
	skips, err := a.service.ListSkips(ctx, primary.SkipFilters{
		Postcode:         postcode,
		IncludeForbidden: includeForbidden,
	})
	if err != nil {
		return fmt.Errorf("failed to list skips: %w", err)
	}

	RenderCatalog(a.out, skips)
	return nil
}

// Quote shows the price breakdown for one skip.
func (a *CatalogAdapter) Quote(ctx context.Context, skipID int) error {
	skip, err := a.service.GetSkip(ctx, skipID)
	if err != nil {
		return err
	}
	quote, err := a.service.QuoteSkip(ctx, skipID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%d yard skip (%d day hire)\n", skip.Size, skip.HirePeriodDays)
	fmt.Fprintf(a.out, "%s\n", skip.Description)
	RenderQuote(a.out, quote)
	fmt.Fprintln(a.out)
	return nil
}
