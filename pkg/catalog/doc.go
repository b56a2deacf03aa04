// Package catalog holds the plan tiers and add-on SKUs the ledger sells.
//
// The catalog is loaded once from a Source (the built-in table, an in-memory
// map or a YAML file) and is read-only afterwards. Every quota or price used
// by the ledger is looked up here; nothing else hardcodes limits.
//
//	cat, err := catalog.New(ctx, catalog.NewFileSource("plans.yaml"))
//	plan, err := cat.Lookup("silver")
//	if errors.Is(err, catalog.ErrPlanNotFound) { ... }
//
// Lookup failures for unknown ids (ErrPlanNotFound, ErrAddonNotFound) are
// distinct from a found plan that cannot serve the request, such as a plan
// without a recurring descriptor asked to set up autopay
// (ErrRecurringNotConfigured).
package catalog
