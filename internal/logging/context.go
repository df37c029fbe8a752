package logging

import (
	"context"
	"log/slog"

	"transcriptor/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemIndex is the standardized structured logging key for 1-based batch positions.
	FieldItemIndex = "item_index"
	// FieldProvider is the standardized structured logging key for transcript provider names.
	FieldProvider = "provider"
	// FieldVideoID is the standardized structured logging key for resolved video identifiers.
	FieldVideoID = "video_id"
	// FieldCorrelationID is the standardized structured logging key for batch run identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType labels the kind of event a warning or error describes.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for an operator.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the failure classification of an extraction.
	FieldErrorKind = "error_kind"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if idx, ok := services.ItemIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldItemIndex, idx))
	}
	if provider, ok := services.ProviderFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldProvider, provider))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
