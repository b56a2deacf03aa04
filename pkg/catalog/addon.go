package catalog

import "time"

// AddonSKU is a one-time, stackable purchase that raises a single quota.
type AddonSKU struct {
	ID           string   `json:"id" yaml:"id"`
	UnitLabel    string   `json:"unit_label" yaml:"unit_label"`
	Resource     Resource `json:"resource" yaml:"resource"`
	QuotaPerUnit int      `json:"quota_per_unit" yaml:"quota_per_unit"`
	UnitPrice    Money    `json:"unit_price" yaml:"unit_price"`
	Stackable    bool     `json:"stackable" yaml:"stackable"`
	ValidityDays int      `json:"validity_days" yaml:"validity_days"`
	MaxQuantity  int      `json:"max_quantity,omitempty" yaml:"max_quantity,omitempty"`
}

// Validity is the window an add-on stays active after purchase.
func (a AddonSKU) Validity() time.Duration {
	return time.Duration(a.ValidityDays) * 24 * time.Hour
}

// Price returns the total for quantity units.
func (a AddonSKU) Price(quantity int) Money {
	return a.UnitPrice.Times(quantity)
}
