package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/example/skiphire/internal/ports/primary"
)

// LogAdapter prints the booking audit trail.
type LogAdapter struct {
	service primary.AuditService
	out     io.Writer
}

// NewLogAdapter creates a new LogAdapter with the given service.
func NewLogAdapter(service primary.AuditService, out io.Writer) *LogAdapter {
	return &LogAdapter{
		service: service,
		out:     out,
	}
}

// Tail prints matching entries, oldest first.
func (a *LogAdapter) Tail(ctx context.Context, filters primary.AuditFilters) error {
	entries, err := a.service.ListEntries(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to fetch audit log: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No log entries found.")
		return nil
	}

	fmt.Fprintf(a.out, "Found %d log entries:\n\n", len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		a.printEntry(entries[i])
	}
	return nil
}

// Prune deletes entries older than days.
func (a *LogAdapter) Prune(ctx context.Context, days int) error {
	count, err := a.service.PruneEntries(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to prune audit log: %w", err)
	}

	if count == 0 {
		fmt.Fprintf(a.out, "No log entries older than %d days found.\n", days)
	} else {
		fmt.Fprintf(a.out, "Pruned %d log entries older than %d days.\n", count, days)
	}
	return nil
}

// Format: timestamp | actor | action | entity_type/session | field changes
func (a *LogAdapter) printEntry(entry *primary.AuditEntry) {
	actor := entry.Actor
	if actor == "" {
		actor = "-"
	}

	fmt.Fprintf(a.out, "%s | %-4s | %s %s | %s/%s",
		formatTimestamp(entry.Timestamp),
		actor,
		actionIcon(entry.Action),
		entry.Action,
		entry.EntityType,
		entry.SessionID,
	)
	if entry.Action == "update" && entry.FieldName != "" {
		fmt.Fprintf(a.out, " | %s: %s -> %s", entry.FieldName, orDash(entry.OldValue), orDash(entry.NewValue))
	}
	fmt.Fprintln(a.out)
}

func actionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
