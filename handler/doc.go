// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a request context and a bound request value and
// returns a Response. Wrap turns it into an http.HandlerFunc, running the
// configured binders in order and routing binding and render failures to an
// ErrorHandler:
//
//	type createOrderRequest struct {
//		PlanID string `json:"plan_id" validate:"required"`
//	}
//
//	func createOrder(ctx handler.Context, req createOrderRequest) handler.Response {
//		order, err := svc.CreateOrder(ctx, userID, req.PlanID)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(order)
//	}
//
//	r.Post("/create-order", handler.Wrap(createOrder,
//		handler.WithBinders[handler.Context, createOrderRequest](binder.JSON(), binder.Validate()),
//	))
//
// Errors are rendered as a JSON envelope. HTTPError carries a status code and
// a machine-readable key; NewErrorHandler accepts ErrorMappers that translate
// domain sentinels into HTTPErrors with errors.Is.
package handler
