package app

import (
	"context"
	"fmt"

	"github.com/example/skiphire/internal/ports/primary"
	"github.com/example/skiphire/internal/ports/secondary"
)

// DefaultAuditLimit caps a listing when no limit is given.
const DefaultAuditLimit = 50

// AuditServiceImpl implements the AuditService interface.
type AuditServiceImpl struct {
	auditRepo secondary.AuditRepository
}

// NewAuditService creates a new AuditService with injected dependencies.
func NewAuditService(auditRepo secondary.AuditRepository) *AuditServiceImpl {
	return &AuditServiceImpl{
		auditRepo: auditRepo,
	}
}

// ListEntries retrieves audit entries matching the given filters.
func (s *AuditServiceImpl) ListEntries(ctx context.Context, filters primary.AuditFilters) ([]*primary.AuditEntry, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultAuditLimit
	}

	records, err := s.auditRepo.List(ctx, secondary.AuditFilters{
		EntityType: filters.EntityType,
		EntityID:   filters.SessionID,
		Actor:      filters.Actor,
		Action:     filters.Action,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*primary.AuditEntry, len(records))
	for i, r := range records {
		entries[i] = recordToAuditEntry(r)
	}
	return entries, nil
}

// PruneEntries deletes audit entries older than the specified number of days.
func (s *AuditServiceImpl) PruneEntries(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays <= 0 {
		return 0, fmt.Errorf("days must be positive, got %d", olderThanDays)
	}
	count, err := s.auditRepo.PruneOlderThan(ctx, olderThanDays)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return count, nil
}

func recordToAuditEntry(r *secondary.AuditRecord) *primary.AuditEntry {
	return &primary.AuditEntry{
		ID:         r.ID,
		Timestamp:  r.Timestamp,
		Actor:      r.Actor,
		EntityType: r.EntityType,
		SessionID:  r.EntityID,
		Action:     r.Action,
		FieldName:  r.FieldName,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
	}
}

// Ensure AuditServiceImpl implements the interface
var _ primary.AuditService = (*AuditServiceImpl)(nil)
