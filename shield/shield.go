// Package shield provides the HTTP middleware stack for the extraction
// daemon: security headers, request body limits, and per-request structured
// logging with a trace id.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.DefaultStack(logger) {
//		r.Use(mw)
//	}
package shield

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

// loggerKey is the context key for the per-request structured logger.
const loggerKey contextKey = "shield_logger"

// DefaultStack returns the standard middleware stack for the daemon:
// SecurityHeaders, MaxJSONBody, RequestLogger.
func DefaultStack(logger *slog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders(DefaultHeaders()),
		MaxJSONBody(1 << 20),
		RequestLogger(logger),
	}
}

// GetLogger retrieves the per-request logger from the context, falling back
// to slog.Default when no middleware set one.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
