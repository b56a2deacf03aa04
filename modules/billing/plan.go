package billing

import (
	"errors"

	"github.com/sakthiswaran2705/NallaAngadi/handler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/entitlement"
)

func (m *Module) myPlan(ctx Context, _ noRequest) handler.Response {
	snap, err := m.entitlements.Snapshot(ctx, ctx.UserID())
	if err != nil {
		return m.fail(ctx, "my_plan", err)
	}
	return handler.JSON(snap)
}

// quota reports the decision for one more resource. A denied decision is
// still a successful read.
func (m *Module) quota(ctx Context, req quotaRequest) handler.Response {
	d, err := m.entitlements.CheckQuota(ctx, ctx.UserID(), catalog.Resource(req.Resource))
	if err != nil && !errors.Is(err, entitlement.ErrLimitExceeded) {
		return m.fail(ctx, "check_quota", err)
	}
	return handler.JSON(d)
}
