package contextkeys

import "context"

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "recordstore context key " + string(c)
}

// UserIDKey is the key for the authenticated user id in context.Context
const UserIDKey = contextKey("userID")

// ProjectIDKey is the key for the resolved project id in context.Context
const ProjectIDKey = contextKey("projectID")

// TierKey is the key for the resolved permission tier in context.Context
const TierKey = contextKey("tier")

// RequestIDKey is the key for the request id in context.Context
const RequestIDKey = contextKey("requestID")

// ComponentKey is the key for the emitting component in context.Context
const ComponentKey = contextKey("component")

// OperationKey is the key for the current operation name in context.Context
const OperationKey = contextKey("operation")

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithProjectID returns a context carrying the resolved project id.
func WithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, ProjectIDKey, projectID)
}

// WithTier returns a context carrying the resolved permission tier.
func WithTier(ctx context.Context, tier string) context.Context {
	return context.WithValue(ctx, TierKey, tier)
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// UserID extracts the authenticated user id from the context, if present.
func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(UserIDKey).(string)
	return v, ok && v != ""
}

// ProjectID extracts the resolved project id from the context, if present.
func ProjectID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ProjectIDKey).(string)
	return v, ok && v != ""
}

// Tier extracts the resolved permission tier from the context, if present.
func Tier(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(TierKey).(string)
	return v, ok && v != ""
}

// RequestID extracts the request id from the context, if present.
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(RequestIDKey).(string)
	return v, ok && v != ""
}
