package services

import "context"

type contextKey string

const (
	carrierIDKey contextKey = "carrier_id"
	segmentKey   contextKey = "segment"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithCarrierID annotates context with the carrier identifier.
func WithCarrierID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, carrierIDKey, id)
}

// CarrierIDFromContext extracts the carrier identifier if present.
func CarrierIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(carrierIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSegment annotates context with a segment sequence number.
func WithSegment(ctx context.Context, seq int) context.Context {
	return context.WithValue(ctx, segmentKey, seq)
}

// SegmentFromContext extracts the segment sequence number if present.
func SegmentFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(segmentKey).(int); ok {
		return v, true
	}
	return 0, false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
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
