package session

import "context"

type idKey struct{}

// WithID stores the client session id in ctx.
func WithID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, idKey{}, sid)
}

// IDFromContext returns the session id set by the session middleware.
func IDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(idKey{}).(string)
	return sid
}
