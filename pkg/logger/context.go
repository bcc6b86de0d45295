package logger

import "context"

type contextKey string

// Keys under which the HTTP middleware stores request-scoped ids, both in
// the request context and in the echo context.
const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyAdminID   contextKey = "admin_id"
)

func WithRequestIDContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

func WithAdminIDContext(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, ContextKeyAdminID, adminID)
}

func GetRequestID(ctx context.Context) string { return stringValue(ctx, ContextKeyRequestID) }

func GetAdminID(ctx context.Context) string { return stringValue(ctx, ContextKeyAdminID) }

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}
