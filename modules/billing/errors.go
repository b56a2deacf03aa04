package billing

import (
	"errors"
	"net/http"

	"github.com/sakthiswaran2705/NallaAngadi/handler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/checkout"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/entitlement"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/reconciler"
)

var (
	errInvalidSignature = handler.NewHTTPError(http.StatusBadRequest, "invalid_signature")
	errInvalidInput     = handler.NewHTTPError(http.StatusBadRequest, "invalid_input")
	errNotPurchasable   = handler.NewHTTPError(http.StatusBadRequest, "plan_not_purchasable")
	errPlanNotFound     = handler.NewHTTPError(http.StatusNotFound, "plan_not_found")
	errAddonNotFound    = handler.NewHTTPError(http.StatusNotFound, "addon_not_found")
	errNoPayments       = handler.NewHTTPError(http.StatusNotFound, "no_payment_found")
	errNoAutopay        = handler.NewHTTPError(http.StatusNotFound, "no_active_autopay")
	errAutopayActive    = handler.NewHTTPError(http.StatusConflict, "autopay_already_active")
	errSamePlan         = handler.NewHTTPError(http.StatusConflict, "same_plan")
	errGateway          = handler.NewHTTPError(http.StatusBadGateway, "gateway_failure")
)

var errorMap = []struct {
	target error
	to     handler.HTTPError
}{
	{reconciler.ErrInvalidSignature, errInvalidSignature},
	{checkout.ErrInvalidPaymentSignature, errInvalidSignature},
	{reconciler.ErrInvalidStatus, errInvalidInput},
	{reconciler.ErrInvalidInput, errInvalidInput},
	{checkout.ErrInvalidInput, errInvalidInput},
	{entitlement.ErrInvalidResource, errInvalidInput},
	{ledger.ErrAddonAutopay, errInvalidInput},
	{catalog.ErrNotPurchasable, errNotPurchasable},
	{catalog.ErrRecurringNotConfigured, errNotPurchasable},
	{catalog.ErrPlanNotFound, errPlanNotFound},
	{catalog.ErrAddonNotFound, errAddonNotFound},
	{checkout.ErrNoPayments, errNoPayments},
	{checkout.ErrNoActiveAutopay, errNoAutopay},
	{checkout.ErrAutopayActive, errAutopayActive},
	{checkout.ErrSamePlan, errSamePlan},
	{checkout.ErrGateway, errGateway},
}

// httpError attaches the matching HTTPError to err. Unmapped errors are
// returned as is and render as 500.
func httpError(err error) error {
	for _, m := range errorMap {
		if errors.Is(err, m.target) {
			return errors.Join(m.to, err)
		}
	}
	return err
}
