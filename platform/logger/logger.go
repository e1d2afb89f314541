// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ClientIDKey is the context key for the external booking-system client ID
	ClientIDKey contextKey = "client_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and client_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if clientID, ok := ctx.Value(ClientIDKey).(int64); ok && clientID != 0 {
		newLogger = &Logger{
			Logger: newLogger.With(slog.Int64("client_id", clientID)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// ReconcileRun logs the outcome of one reconciliation pass over a client's logs.
func (l *Logger) ReconcileRun(clientID int64, events, groups, dropped int) {
	l.Info("reconcile_run",
		slog.Int64("client_id", clientID),
		slog.Int("events", events),
		slog.Int("groups", groups),
		slog.Int("dropped_items", dropped),
	)
}

// ParseDropped logs malformed raw log items dropped during normalization.
// Dropped items are an expected condition, not an error.
func (l *Logger) ParseDropped(source string, count int) {
	l.Warn("parse_dropped",
		slog.String("source", source),
		slog.Int("count", count),
	)
}

// CampaignTrigger logs the outcome of matching one automation trigger.
func (l *Logger) CampaignTrigger(value string, outcome string, campaignID string) {
	l.Info("campaign_trigger",
		slog.String("value", value),
		slog.String("outcome", outcome),
		slog.String("campaign_id", campaignID),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// CacheError logs display-state cache errors. Cache failures are non-fatal;
// callers fall through to a fresh computation.
func (l *Logger) CacheError(operation string, err error) {
	l.Warn("cache_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
