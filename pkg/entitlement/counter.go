package entitlement

import (
	"context"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
)

// Counter returns how many items of a resource the user owns. A non-nil
// window restricts the count to items created inside it.
type Counter interface {
	Count(ctx context.Context, userID string, r catalog.Resource, w *Window) (int64, error)
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(ctx context.Context, userID string, r catalog.Resource, w *Window) (int64, error)

func (f CounterFunc) Count(ctx context.Context, userID string, r catalog.Resource, w *Window) (int64, error) {
	return f(ctx, userID, r, w)
}
