package common

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const contextKeyJobID contextKey = iota

// WithJobID stamps a job ID onto the context. The HTTP shell assigns one
// per request so the response's job_id matches every log line.
func WithJobID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKeyJobID, id)
}

// JobIDFromContext returns the stamped job ID, or false when none was set.
func JobIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKeyJobID).(uuid.UUID)
	return id, ok
}
