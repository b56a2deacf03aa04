package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Catalog is an immutable, validated set of plans and add-ons.
type Catalog struct {
	version  string
	plans    map[string]PlanTier
	addons   map[string]AddonSKU
	order    []string
	fallback string
}

// New loads and validates src.
func New(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("catalog: source cannot be nil")
	}
	data, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	return FromData(data)
}

// FromData validates data and builds a Catalog from it.
func FromData(data Data) (*Catalog, error) {
	c := &Catalog{
		version: data.Version,
		plans:   make(map[string]PlanTier, len(data.Plans)),
		addons:  make(map[string]AddonSKU, len(data.Addons)),
	}

	for _, p := range data.Plans {
		if err := validatePlan(p); err != nil {
			return nil, err
		}
		if _, dup := c.plans[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan %q", ErrInvalidCatalog, p.ID)
		}
		if p.Default {
			if c.fallback != "" {
				return nil, fmt.Errorf("%w: plans %q and %q are both marked default", ErrInvalidCatalog, c.fallback, p.ID)
			}
			c.fallback = p.ID
		}
		c.plans[p.ID] = p.clone()
		c.order = append(c.order, p.ID)
	}
	if c.fallback == "" {
		return nil, fmt.Errorf("%w: no default plan", ErrInvalidCatalog)
	}

	for _, a := range data.Addons {
		if err := validateAddon(a); err != nil {
			return nil, err
		}
		if _, dup := c.addons[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate addon %q", ErrInvalidCatalog, a.ID)
		}
		c.addons[a.ID] = a
	}

	return c, nil
}

// Version returns the data version the catalog was built from.
func (c *Catalog) Version() string { return c.version }

// Lookup returns the plan with the given id.
func (c *Catalog) Lookup(planID string) (PlanTier, error) {
	p, ok := c.plans[planID]
	if !ok {
		return PlanTier{}, fmt.Errorf("%w: %q", ErrPlanNotFound, planID)
	}
	return p.clone(), nil
}

// LookupAddon returns the add-on SKU with the given id.
func (c *Catalog) LookupAddon(skuID string) (AddonSKU, error) {
	a, ok := c.addons[skuID]
	if !ok {
		return AddonSKU{}, fmt.Errorf("%w: %q", ErrAddonNotFound, skuID)
	}
	return a, nil
}

// Default returns the free tier users hold when no paid plan is active.
func (c *Catalog) Default() PlanTier {
	return c.plans[c.fallback].clone()
}

// RequirePurchasable looks the plan up and checks it can be sold one-time.
func (c *Catalog) RequirePurchasable(planID string) (PlanTier, error) {
	p, err := c.Lookup(planID)
	if err != nil {
		return PlanTier{}, err
	}
	if !p.Purchasable() {
		return PlanTier{}, fmt.Errorf("%w: %q", ErrNotPurchasable, planID)
	}
	return p, nil
}

// RequireRecurring looks the plan up and checks it carries autopay settings.
func (c *Catalog) RequireRecurring(planID string) (PlanTier, error) {
	p, err := c.Lookup(planID)
	if err != nil {
		return PlanTier{}, err
	}
	if p.Recurring == nil || p.Recurring.ExternalPlanID == "" {
		return PlanTier{}, fmt.Errorf("%w: %q", ErrRecurringNotConfigured, planID)
	}
	return p, nil
}

// Plans returns every plan in catalog order.
func (c *Catalog) Plans() []PlanTier {
	out := make([]PlanTier, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id].clone())
	}
	return out
}

// AddonsFor returns the add-ons that grant quota for r, sorted by id.
func (c *Catalog) AddonsFor(r Resource) []AddonSKU {
	var out []AddonSKU
	for _, a := range c.addons {
		if a.Resource == r {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b AddonSKU) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func validatePlan(p PlanTier) error {
	if p.ID == "" {
		return fmt.Errorf("%w: plan without id", ErrInvalidCatalog)
	}
	if p.Price.Amount < 0 {
		return fmt.Errorf("%w: plan %q has negative price", ErrInvalidCatalog, p.ID)
	}
	if p.Days != nil && *p.Days <= 0 {
		return fmt.Errorf("%w: plan %q must have a positive period", ErrInvalidCatalog, p.ID)
	}
	for r, q := range p.Quotas {
		if !r.Valid() {
			return fmt.Errorf("%w: plan %q has unknown resource %q", ErrInvalidCatalog, p.ID, r)
		}
		if q < 0 {
			return fmt.Errorf("%w: plan %q has negative %s quota", ErrInvalidCatalog, p.ID, r)
		}
	}
	switch p.OffersPeriod {
	case PeriodNone, PeriodMonthly:
	default:
		return fmt.Errorf("%w: plan %q has unknown offers period %q", ErrInvalidCatalog, p.ID, p.OffersPeriod)
	}
	if p.Recurring != nil && p.Recurring.Interval <= 0 {
		return fmt.Errorf("%w: plan %q has invalid recurring interval", ErrInvalidCatalog, p.ID)
	}
	return nil
}

func validateAddon(a AddonSKU) error {
	if a.ID == "" {
		return fmt.Errorf("%w: addon without id", ErrInvalidCatalog)
	}
	if !a.Resource.Valid() {
		return fmt.Errorf("%w: addon %q has unknown resource %q", ErrInvalidCatalog, a.ID, a.Resource)
	}
	if !a.Stackable {
		return fmt.Errorf("%w: addon %q must be stackable", ErrInvalidCatalog, a.ID)
	}
	if a.QuotaPerUnit <= 0 || a.ValidityDays <= 0 || a.UnitPrice.Amount <= 0 {
		return fmt.Errorf("%w: addon %q needs positive quota, validity and price", ErrInvalidCatalog, a.ID)
	}
	return nil
}
