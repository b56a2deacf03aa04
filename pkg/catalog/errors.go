package catalog

import "errors"

var (
	ErrPlanNotFound           = errors.New("catalog.errors.plan_not_found")
	ErrAddonNotFound          = errors.New("catalog.errors.addon_not_found")
	ErrRecurringNotConfigured = errors.New("catalog.errors.recurring_not_configured")
	ErrNotPurchasable         = errors.New("catalog.errors.not_purchasable")
	ErrInvalidCatalog         = errors.New("catalog.errors.invalid_catalog")
	ErrFailedToLoad           = errors.New("catalog.errors.failed_to_load")
)
