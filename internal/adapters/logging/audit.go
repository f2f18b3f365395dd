package logging

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/skiphire/internal/core/booking"
	"github.com/example/skiphire/internal/ctxutil"
	"github.com/example/skiphire/internal/ports/secondary"
)

// AuditLogWriter implements secondary.LogWriter on top of zap.
type AuditLogWriter struct {
	logger *zap.Logger
}

// NewAuditLogWriter creates a new AuditLogWriter.
func NewAuditLogWriter(logger *zap.Logger) *AuditLogWriter {
	return &AuditLogWriter{logger: logger.Named("audit")}
}

// LogCreate logs a create operation for an entity.
func (w *AuditLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	w.write(ctx, entityType, entityID, "create", "", "", "")
	return nil
}

// LogUpdate logs an update operation for an entity field.
func (w *AuditLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	w.write(ctx, entityType, entityID, "update", fieldName,
		booking.Redact(fieldName, oldValue), booking.Redact(fieldName, newValue))
	return nil
}

// LogDelete logs a delete operation for an entity.
func (w *AuditLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	w.write(ctx, entityType, entityID, "delete", "", "", "")
	return nil
}

func (w *AuditLogWriter) write(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) {
	fields := []zap.Field{
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID),
		zap.String("action", action),
	}
	if actor := ctxutil.ActorFromContext(ctx); actor != "" {
		fields = append(fields, zap.String("actor", actor))
	}
	if fieldName != "" {
		fields = append(fields,
			zap.String("field", fieldName),
			zap.String("old", oldValue),
			zap.String("new", newValue),
		)
	}
	w.logger.Info(entityType+" "+action, fields...)
}

// Ensure AuditLogWriter implements the interface
var _ secondary.LogWriter = (*AuditLogWriter)(nil)
