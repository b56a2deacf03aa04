package catalog

import (
	"maps"
	"time"
)

// PlanTier is one sellable plan.
type PlanTier struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name"`
	Price        Money            `json:"price" yaml:"price"`
	Days         *int             `json:"days,omitempty" yaml:"days,omitempty"` // nil for perpetual tiers
	Quotas       map[Resource]int `json:"quotas" yaml:"quotas"`
	OffersPeriod Period           `json:"offers_period,omitempty" yaml:"offers_period,omitempty"`
	Recurring    *Recurring       `json:"recurring,omitempty" yaml:"recurring,omitempty"`
	Features     Features         `json:"features" yaml:"features"`
	Default      bool             `json:"default,omitempty" yaml:"default,omitempty"`
}

// Recurring describes how a plan is billed through gateway autopay.
type Recurring struct {
	Period         string `json:"period" yaml:"period"`
	Interval       int    `json:"interval" yaml:"interval"`
	ExternalPlanID string `json:"external_plan_id" yaml:"external_plan_id"`
}

// Quota returns the base quota for r, zero when the plan grants none.
func (p PlanTier) Quota(r Resource) int {
	return p.Quotas[r]
}

// PeriodFor returns the reset period for r. Only offers can reset.
func (p PlanTier) PeriodFor(r Resource) Period {
	if r == ResourceOffers {
		return p.OffersPeriod
	}
	return PeriodNone
}

// Perpetual reports whether the plan never expires.
func (p PlanTier) Perpetual() bool {
	return p.Days == nil
}

// Purchasable reports whether the plan can be bought with a one-time order.
func (p PlanTier) Purchasable() bool {
	return p.Price.Amount > 0 && p.Days != nil
}

// ExpiryFrom returns from + Days, or nil for perpetual tiers.
func (p PlanTier) ExpiryFrom(from time.Time) *time.Time {
	if p.Days == nil {
		return nil
	}
	t := from.Add(time.Duration(*p.Days) * 24 * time.Hour)
	return &t
}

// Duration returns the billing period length; zero for perpetual tiers.
func (p PlanTier) Duration() time.Duration {
	if p.Days == nil {
		return 0
	}
	return time.Duration(*p.Days) * 24 * time.Hour
}

func (p PlanTier) clone() PlanTier {
	c := p
	c.Quotas = maps.Clone(p.Quotas)
	if p.Days != nil {
		d := *p.Days
		c.Days = &d
	}
	if p.Recurring != nil {
		r := *p.Recurring
		c.Recurring = &r
	}
	return c
}
