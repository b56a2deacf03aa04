package catalog

// Resource is a countable kind of thing a plan grants quota for.
type Resource string

const (
	ResourceShops  Resource = "shops"
	ResourceOffers Resource = "offers"
)

// Resources lists every resource kind in display order.
var Resources = []Resource{ResourceShops, ResourceOffers}

// Valid reports whether r is a known resource kind.
func (r Resource) Valid() bool {
	return r == ResourceShops || r == ResourceOffers
}

// Period describes how a quota resets. The zero value never resets.
type Period string

const (
	PeriodNone    Period = ""
	PeriodMonthly Period = "monthly"
)

// Currency is the single ledger currency; amounts are in paise.
const Currency = "INR"

// Money is an amount in minor units.
type Money struct {
	Amount   int64  `json:"amount" yaml:"amount"`
	Currency string `json:"currency" yaml:"currency"`
}

// Times returns m multiplied by n.
func (m Money) Times(n int) Money {
	return Money{Amount: m.Amount * int64(n), Currency: m.Currency}
}

// Features are boolean plan perks.
type Features struct {
	UnlimitedSearch bool `json:"unlimited_search" yaml:"unlimited_search"`
	UnlimitedJobs   bool `json:"unlimited_jobs" yaml:"unlimited_jobs"`
	Reports         bool `json:"reports" yaml:"reports"`
}
