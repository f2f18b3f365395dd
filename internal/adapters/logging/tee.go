package logging

import (
	"context"
	"errors"

	"github.com/example/skiphire/internal/ports/secondary"
)

// TeeLogWriter forwards every entry to several writers.
// A failing writer does not stop the others.
type TeeLogWriter struct {
	writers []secondary.LogWriter
}

// NewTeeLogWriter creates a TeeLogWriter over writers.
func NewTeeLogWriter(writers ...secondary.LogWriter) *TeeLogWriter {
	return &TeeLogWriter{writers: writers}
}

// LogCreate logs a create operation for an entity.
func (t *TeeLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return t.each(func(w secondary.LogWriter) error {
		return w.LogCreate(ctx, entityType, entityID)
	})
}

// LogUpdate logs an update operation for an entity field.
func (t *TeeLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return t.each(func(w secondary.LogWriter) error {
		return w.LogUpdate(ctx, entityType, entityID, fieldName, oldValue, newValue)
	})
}

// LogDelete logs a delete operation for an entity.
func (t *TeeLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	return t.each(func(w secondary.LogWriter) error {
		return w.LogDelete(ctx, entityType, entityID)
	})
}

func (t *TeeLogWriter) each(fn func(secondary.LogWriter) error) error {
	var errs []error
	for _, w := range t.writers {
		if err := fn(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ensure TeeLogWriter implements the interface
var _ secondary.LogWriter = (*TeeLogWriter)(nil)
