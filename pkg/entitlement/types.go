package entitlement

import (
	"fmt"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
)

// ActivePlan is the plan a user holds at a point in time.
type ActivePlan struct {
	Plan      catalog.PlanTier
	PaymentID string     // empty for the default tier
	ExpiresAt *time.Time // nil for the default tier
	Autopay   bool
	Default   bool
}

// Decision is the outcome of a quota check.
type Decision struct {
	Resource catalog.Resource `json:"resource"`
	Allowed  bool             `json:"allowed"`
	Used     int64            `json:"used"`
	Limit    int64            `json:"limit"`
}

// String renders the decision as used/limit.
func (d Decision) String() string {
	return fmt.Sprintf("%d/%d", d.Used, d.Limit)
}

// Usage is the per-resource part of a snapshot.
type Usage struct {
	Base      int64          `json:"base"`
	Addon     int64          `json:"addon"`
	Total     int64          `json:"total"`
	Used      int64          `json:"used"`
	Remaining int64          `json:"remaining"`
	Period    catalog.Period `json:"period,omitempty"`
}

// Snapshot is a derived, point-in-time view of a user's entitlements.
type Snapshot struct {
	PlanID    string                     `json:"plan"`
	PlanName  string                     `json:"plan_name"`
	ExpiresAt *time.Time                 `json:"expiry_date,omitempty"`
	Autopay   bool                       `json:"autopay"`
	Features  catalog.Features           `json:"features"`
	Resources map[catalog.Resource]Usage `json:"resources"`
	At        time.Time                  `json:"at"`
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthWindow returns the UTC calendar month containing now.
func MonthWindow(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}
