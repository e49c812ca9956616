package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const jobIDKey ctxKey = "job_id"

// WithJobID stores the import job ID in the context.
func WithJobID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromCtx extracts the import job ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func JobIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(jobIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
