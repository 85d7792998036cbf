package auth

import "context"

// Identity is the caller as established by the auth middleware.
type Identity struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
	Token  string `json:"-"`
}

func (i *Identity) IsAuthenticated() bool {
	return i != nil && i.UserID != ""
}

type identityKey struct{}

func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the caller identity, or an unauthenticated guest.
func FromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey{}).(*Identity); ok && id != nil {
		return id
	}
	return &Identity{Role: RoleGuest}
}
