package auth

import "context"

type ctxKey string

const userKey ctxKey = "userClaims"

type Claims struct {
	UserID uint
	Admin  bool
	JWTID  string
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(userKey).(Claims); ok {
		return v
	}
	return Claims{}
}

// UserID returns the authenticated user's id, or zero when unauthenticated.
func UserID(ctx context.Context) uint {
	return FromContext(ctx).UserID
}
