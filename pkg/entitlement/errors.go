package entitlement

import "errors"

var (
	ErrLimitExceeded      = errors.New("entitlement.errors.limit_exceeded")
	ErrInvalidResource    = errors.New("entitlement.errors.invalid_resource")
	ErrFailedToResolve    = errors.New("entitlement.errors.failed_to_resolve_plan")
	ErrFailedToCountUsage = errors.New("entitlement.errors.failed_to_count_resource_usage")
)
