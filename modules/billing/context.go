package billing

import (
	"net/http"

	"github.com/sakthiswaran2705/NallaAngadi/handler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/jwt"
)

// Context is the handler context for authenticated billing routes.
type Context interface {
	handler.Context
	UserID() string
}

type billingContext struct {
	handler.Context
	userID string
}

func (c billingContext) UserID() string { return c.userID }

func newContext(w http.ResponseWriter, r *http.Request) Context {
	userID, _ := jwt.UserID(r.Context())
	return billingContext{Context: handler.NewContext(w, r), userID: userID}
}

func authenticated[R any](next handler.HandlerFunc[Context, R]) handler.HandlerFunc[Context, R] {
	return func(ctx Context, req R) handler.Response {
		if ctx.UserID() == "" {
			return handler.JSONError(handler.ErrUnauthorized)
		}
		return next(ctx, req)
	}
}
