package logger

import "context"

// fields are the per-request values every log record is tagged with.
type fields struct {
	requestID string
	userID    string
}

type fieldsKey struct{}

func fromContext(ctx context.Context) fields {
	f, _ := ctx.Value(fieldsKey{}).(fields)
	return f
}

// WithRequestID returns a copy of ctx tagged with the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	f := fromContext(ctx)
	f.requestID = id
	return context.WithValue(ctx, fieldsKey{}, f)
}

// RequestID returns the request ID of ctx, or "".
func RequestID(ctx context.Context) string {
	return fromContext(ctx).requestID
}

// WithUserID returns a copy of ctx tagged with the acting user.
func WithUserID(ctx context.Context, id string) context.Context {
	f := fromContext(ctx)
	f.userID = id
	return context.WithValue(ctx, fieldsKey{}, f)
}

// UserID returns the acting user of ctx, or "".
func UserID(ctx context.Context) string {
	return fromContext(ctx).userID
}
