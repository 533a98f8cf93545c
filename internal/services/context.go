package services

import "context"

// ctxKey is typed by the value it stores so lookups cannot mix types.
type ctxKey[T comparable] struct{ name string }

var (
	taskIDKey    = ctxKey[int64]{"task_id"}
	userIDKey    = ctxKey[int64]{"user_id"}
	requestIDKey = ctxKey[string]{"request_id"}
)

// withValue leaves ctx untouched for zero values.
func withValue[T comparable](ctx context.Context, key ctxKey[T], v T) context.Context {
	var zero T
	if v == zero {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOf[T comparable](ctx context.Context, key ctxKey[T]) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok && v != zero
}

// WithTaskID annotates ctx with the tagging task being worked on.
func WithTaskID(ctx context.Context, id int64) context.Context {
	return withValue(ctx, taskIDKey, id)
}

// TaskIDFromContext returns the task id set by WithTaskID.
func TaskIDFromContext(ctx context.Context) (int64, bool) {
	return valueOf(ctx, taskIDKey)
}

// WithUserID annotates ctx with the authenticated caller.
func WithUserID(ctx context.Context, id int64) context.Context {
	return withValue(ctx, userIDKey, id)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	return valueOf(ctx, userIDKey)
}

// WithRequestID annotates ctx with the HTTP correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return valueOf(ctx, requestIDKey)
}
