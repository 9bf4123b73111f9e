package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	pathKey  contextKey = "path"
)

// WithRunID annotates context with the identifier of the current run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPath annotates context with the candidate file currently being handled.
func WithPath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, pathKey, path)
}

// PathFromContext returns the candidate path if present.
func PathFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(pathKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
