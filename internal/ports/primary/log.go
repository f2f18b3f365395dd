package primary

import "context"

// AuditService defines the primary port for the booking audit trail.
type AuditService interface {
	// ListEntries retrieves audit entries matching the given filters, newest first.
	ListEntries(ctx context.Context, filters AuditFilters) ([]*AuditEntry, error)

	// PruneEntries deletes entries older than the specified number of days.
	PruneEntries(ctx context.Context, olderThanDays int) (int, error)
}

// AuditEntry represents an audit entry at the port boundary.
type AuditEntry struct {
	ID         int64  `json:"id"`
	Timestamp  string `json:"timestamp"`
	Actor      string `json:"actor,omitempty"`
	EntityType string `json:"entity_type"`
	SessionID  string `json:"session_id"`
	Action     string `json:"action"` // 'create', 'update', 'delete'
	FieldName  string `json:"field,omitempty"`
	OldValue   string `json:"old,omitempty"`
	NewValue   string `json:"new,omitempty"`
}

// AuditFilters contains filter options for querying the audit trail.
type AuditFilters struct {
	SessionID  string
	EntityType string
	Actor      string
	Action     string
	Limit      int
}
