package jwt

import "context"

type contextKey struct{ name string }

var claimsContextKey = &contextKey{name: "jwt_claims"}

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

// ClaimsFrom returns the verified claims stored in ctx.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok && c != nil
}

// UserID returns the authenticated user id from ctx.
func UserID(ctx context.Context) (string, bool) {
	c, ok := ClaimsFrom(ctx)
	if !ok {
		return "", false
	}
	id := c.User()
	return id, id != ""
}
