package logger

import (
	"context"

	"go.uber.org/zap"
)

type requestKey struct{}

type request struct {
	id     string
	logger *zap.Logger
}

// WithRequest tags base with requestID and stores both in ctx.
func WithRequest(ctx context.Context, base *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	if base == nil {
		base = zap.NewNop()
	}
	l := base
	if requestID != "" {
		l = base.With(zap.String("request_id", requestID))
	}
	return context.WithValue(ctx, requestKey{}, request{id: requestID, logger: l}), l
}

// FromContext returns the request logger in ctx, else fallback, else a no-op.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if req, ok := ctx.Value(requestKey{}).(request); ok {
		return req.logger
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

// Tag adds the request id carried by ctx, if any, to l. Components with
// their own named logger use it to keep log lines joinable per request.
func Tag(ctx context.Context, l *zap.Logger) *zap.Logger {
	if req, ok := ctx.Value(requestKey{}).(request); ok && req.id != "" {
		return l.With(zap.String("request_id", req.id))
	}
	return l
}
