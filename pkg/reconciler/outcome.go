package reconciler

// Outcome is what applying an event did to the ledger.
type Outcome string

const (
	// OutcomeApplied means the conditional write matched.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the write was already applied earlier.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored means the event was acknowledged without a write.
	OutcomeIgnored Outcome = "ignored"
)
