// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing and output
// formatting, but delegate business logic to services.
package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/example/skiphire/internal/core/pricing"
	"github.com/example/skiphire/internal/core/schedule"
	"github.com/example/skiphire/internal/ports/primary"
)

const rule = "────────────────────────────────────────────────────────────────"

// RenderStepper prints the progress bar. Steps up to and including the
// current one are active.
func RenderStepper(out io.Writer, snap *primary.Snapshot) {
	parts := make([]string, 0, len(snap.Steps))
	for i, name := range snap.Steps {
		label := fmt.Sprintf("%d. %s", i+1, name)
		switch {
		case i == snap.Step:
			parts = append(parts, color.New(color.FgHiGreen, color.Bold).Sprint("● "+label))
		case i < snap.Step:
			parts = append(parts, color.New(color.FgGreen).Sprint("✓ "+label))
		default:
			parts = append(parts, color.New(color.FgHiBlack).Sprint("○ "+label))
		}
	}
	fmt.Fprintf(out, "\n%s\n%s\n", strings.Join(parts, "  "), rule)
}

// RenderCatalog prints the skip table.
func RenderCatalog(out io.Writer, skips []*primary.Skip) {
	if len(skips) == 0 {
		fmt.Fprintln(out, "No skips available")
		return
	}

	fmt.Fprintf(out, "\n%-7s %-6s %-9s %-10s %-6s %-6s %s\n", "ID", "SIZE", "HIRE", "PRICE", "ROAD", "HEAVY", "DESCRIPTION")
	fmt.Fprintln(out, rule)
	for _, s := range skips {
		size := fmt.Sprintf("%dyd", s.Size)
		if s.Forbidden {
			size = color.New(color.FgRed).Sprint(size + "✗")
		}
		fmt.Fprintf(out, "%-7d %-6s %-9s %-10s %-6s %-6s %s\n",
			s.ID,
			size,
			fmt.Sprintf("%d days", s.HirePeriodDays),
			pricing.FormatGBP(pricing.Total(s.PriceBeforeVAT, s.VAT)),
			yesNo(s.AllowedOnRoad),
			yesNo(s.AllowsHeavyWaste),
			s.Description,
		)
	}
	fmt.Fprintln(out)
}

// RenderQuote prints a price breakdown.
func RenderQuote(out io.Writer, q *primary.Quote) {
	fmt.Fprintf(out, "  Price (excl. VAT): %s\n", pricing.FormatGBP(q.PriceBeforeVAT))
	fmt.Fprintf(out, "  VAT (%g%%):        %s\n", q.VATPercent, pricing.FormatGBP(q.VATAmount))
	fmt.Fprintf(out, "  Total:             %s\n", color.New(color.Bold).Sprint(pricing.FormatGBP(q.Total)))
}

// RenderErrors prints field errors in a stable order.
func RenderErrors(out io.Writer, errs map[string]string) {
	if len(errs) == 0 {
		return
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(out, "  %s %s: %s\n", color.New(color.FgRed).Sprint("✗"), f, errs[f])
	}
}

// RenderSummary prints the booking record as collected so far.
func RenderSummary(out io.Writer, snap *primary.Snapshot) {
	b := snap.Booking
	fmt.Fprintf(out, "\nBooking %s\n", snap.SessionID)
	if b.Skip != nil {
		fmt.Fprintf(out, "Skip:       %d yard (%d day hire)\n", b.Skip.Size, b.Skip.HirePeriodDays)
	} else {
		fmt.Fprintln(out, "Skip:       (none selected)")
	}
	if b.Placement != "" {
		fmt.Fprintf(out, "Placement:  %s\n", placementLabel(b.Placement))
	}
	if b.Placement == "public" {
		fmt.Fprintf(out, "Photo:      %s\n", photoLabel(b))
	}
	if b.DeliveryDate != nil {
		fmt.Fprintf(out, "Delivery:   %s\n", schedule.FormatLong(*b.DeliveryDate))
	}
	if b.CollectionDate != nil {
		fmt.Fprintf(out, "Collection: %s\n", schedule.FormatLong(*b.CollectionDate))
	}
	if b.DeliveryAddress != "" {
		fmt.Fprintf(out, "Address:    %s\n", b.DeliveryAddress)
	}
	if b.SpecialInstructions != "" {
		fmt.Fprintf(out, "Notes:      %s\n", b.SpecialInstructions)
	}
	if b.Customer.Name != "" || b.Customer.Email != "" || b.Customer.Phone != "" {
		fmt.Fprintf(out, "Contact:    %s <%s> %s\n", b.Customer.Name, b.Customer.Email, b.Customer.Phone)
	}
	if snap.Quote != nil {
		RenderQuote(out, snap.Quote)
	}
	fmt.Fprintln(out)
}

// RenderConfirmation prints the receipt of a paid booking.
func RenderConfirmation(out io.Writer, c *primary.Confirmation) {
	fmt.Fprintf(out, "\n%s %s\n", color.New(color.FgGreen).Sprint("✓"), c.Message)
	fmt.Fprintf(out, "Reference:   %s\n", c.Reference)
	fmt.Fprintf(out, "Transaction: %s\n", c.TransactionID)
	fmt.Fprintf(out, "Charged:     %s\n\n", pricing.FormatGBP(float64(c.AmountMinor)/pricing.MinorUnitsPerPound))
}

func placementLabel(p string) string {
	switch p {
	case "private":
		return "Private property"
	case "public":
		return "Public road (permit required)"
	}
	return p
}

func photoLabel(b primary.Booking) string {
	if !b.PhotoUploaded {
		return color.New(color.FgYellow).Sprint("none (optional)")
	}
	if b.PhotoLocation != "" {
		return b.PhotoLocation
	}
	return "uploaded"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
