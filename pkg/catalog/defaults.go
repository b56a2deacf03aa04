package catalog

func days(n int) *int { return &n }

// DefaultData is the production table at version 2024-11.
func DefaultData() Data {
	return Data{
		Version: "2024-11",
		Plans: []PlanTier{
			{
				ID:      "starter",
				Name:    "Starter",
				Price:   Money{Amount: 0, Currency: Currency},
				Quotas:  map[Resource]int{ResourceShops: 1, ResourceOffers: 0},
				Default: true,
			},
			{
				ID:           "silver",
				Name:         "Silver",
				Price:        Money{Amount: 20000, Currency: Currency},
				Days:         days(30),
				Quotas:       map[Resource]int{ResourceShops: 2, ResourceOffers: 1},
				OffersPeriod: PeriodMonthly,
				Recurring:    &Recurring{Period: "monthly", Interval: 1, ExternalPlanID: "plan_SCq7atHDxZ81mD"},
				Features:     Features{UnlimitedSearch: true},
			},
			{
				ID:           "gold",
				Name:         "Gold",
				Price:        Money{Amount: 50000, Currency: Currency},
				Days:         days(90),
				Quotas:       map[Resource]int{ResourceShops: 4, ResourceOffers: 2},
				OffersPeriod: PeriodMonthly,
				Recurring:    &Recurring{Period: "monthly", Interval: 3, ExternalPlanID: "plan_SCqFVhp6FLHHi2"},
				Features:     Features{UnlimitedSearch: true, UnlimitedJobs: true},
			},
			{
				ID:           "platinum",
				Name:         "Platinum",
				Price:        Money{Amount: 90000, Currency: Currency},
				Days:         days(210),
				Quotas:       map[Resource]int{ResourceShops: 8, ResourceOffers: 3},
				OffersPeriod: PeriodMonthly,
				Recurring:    &Recurring{Period: "monthly", Interval: 7, ExternalPlanID: "plan_SCqGQxVqpRsbRn"},
				Features:     Features{UnlimitedSearch: true, UnlimitedJobs: true, Reports: true},
			},
		},
		Addons: []AddonSKU{
			{
				ID:           "extra_shop",
				UnitLabel:    "shop",
				Resource:     ResourceShops,
				QuotaPerUnit: 1,
				UnitPrice:    Money{Amount: 10000, Currency: Currency},
				Stackable:    true,
				ValidityDays: 30,
				MaxQuantity:  10,
			},
			{
				ID:           "extra_offer",
				UnitLabel:    "offer",
				Resource:     ResourceOffers,
				QuotaPerUnit: 1,
				UnitPrice:    Money{Amount: 5000, Currency: Currency},
				Stackable:    true,
				ValidityDays: 30,
				MaxQuantity:  10,
			},
		},
	}
}

// NewDefaultSource serves DefaultData.
func NewDefaultSource() Source {
	return NewInMemSource(DefaultData())
}
