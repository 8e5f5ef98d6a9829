// Package requestid tags management requests with unique identifiers.
package requestid

import (
	"context"

	"github.com/google/uuid"
	log "go.uber.org/zap"
)

// RequestID is a unique identifier of a management request.
type RequestID string

// HeaderKey is the HTTP header carrying the request ID in both directions.
const HeaderKey = "X-Request-ID"

type contextKey struct{}

// Generate returns a new random request ID.
func Generate() RequestID {
	return RequestID(uuid.NewString())
}

// FromContext returns the RequestID value stored in ctx, if any.
func FromContext(ctx context.Context) (RequestID, bool) {
	id, exists := ctx.Value(contextKey{}).(RequestID)
	return id, exists
}

// NewContext returns a new Context that carries requestID.
func NewContext(ctx context.Context, requestID RequestID) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// Field returns a log field with the request ID stored in ctx, or a no-op
// field.
func Field(ctx context.Context) log.Field {
	id, ok := FromContext(ctx)
	if !ok {
		return log.Skip()
	}
	return log.String("request_id", string(id))
}
