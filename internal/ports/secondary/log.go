package secondary

import "context"

// LogWriter records the audit trail of a booking session.
// entityType is "session" or "booking" and entityID is the session ID.
// Writers take the actor (cli, http) from ctx.
type LogWriter interface {
	// LogCreate records that a session started.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate records one changed field: a booking field, the step, or the
	// booking status. Writers may redact contact details.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete records that a session ended or was replaced.
	LogDelete(ctx context.Context, entityType, entityID string) error
}
