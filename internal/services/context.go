package services

import "context"

type contextKey string

const (
	itemIndexKey contextKey = "item_index"
	providerKey  contextKey = "provider"
	requestIDKey contextKey = "request_id"
)

// WithItemIndex annotates context with the 1-based position of a batch item.
func WithItemIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, itemIndexKey, index)
}

// ItemIndexFromContext extracts the batch item position if present.
func ItemIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(itemIndexKey).(int)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// WithProvider annotates context with the transcript provider currently running.
func WithProvider(ctx context.Context, provider string) context.Context {
	if provider == "" {
		return ctx
	}
	return context.WithValue(ctx, providerKey, provider)
}

// ProviderFromContext returns the provider name if present.
func ProviderFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(providerKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
