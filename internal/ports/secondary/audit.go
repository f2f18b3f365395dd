package secondary

import "context"

// AuditRepository defines the secondary port for the persisted audit trail.
type AuditRepository interface {
	// Create appends an audit entry. ID and Timestamp are assigned by the store.
	Create(ctx context.Context, record *AuditRecord) error

	// List retrieves entries matching the filters, newest first.
	List(ctx context.Context, filters AuditFilters) ([]*AuditRecord, error)

	// PruneOlderThan deletes entries older than the given number of days.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

// AuditRecord is one persisted audit entry.
type AuditRecord struct {
	ID         int64
	Timestamp  string
	Actor      string
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete'
	FieldName  string // For updates only
	OldValue   string
	NewValue   string
}

// AuditFilters contains filter options for querying the audit trail.
type AuditFilters struct {
	EntityType string
	EntityID   string
	Actor      string
	Action     string
	Limit      int
}
