package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/razorpay/razorpay-go"
)

// Client implements Gateway with the official SDK. The SDK is synchronous
// and ignores contexts, so Client checks ctx before each call.
type Client struct {
	api       *sdk.Client
	keySecret string
}

var _ Gateway = (*Client)(nil)

// NewClient builds a gateway client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		api:       sdk.NewClient(cfg.KeyID, cfg.KeySecret),
		keySecret: cfg.KeySecret,
	}, nil
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	if req.Amount <= 0 {
		return Order{}, fmt.Errorf("%w: order amount must be positive", ErrGatewayRequest)
	}
	body, err := c.api.Order.Create(map[string]any{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
		"notes":           map[string]string(req.Notes),
	}, nil)
	if err != nil {
		return Order{}, errors.Join(ErrGatewayRequest, err)
	}
	var order Order
	if err := decode(body, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (c *Client) FetchOrderPayments(ctx context.Context, orderID string) ([]Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := c.api.Order.Payments(orderID, nil, nil)
	if err != nil {
		return nil, errors.Join(ErrGatewayRequest, err)
	}
	var list struct {
		Items []Payment `json:"items"`
	}
	if err := decode(body, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) CreateSubscription(ctx context.Context, req SubscriptionRequest) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return Subscription{}, err
	}
	notify := 0
	if req.CustomerNotify {
		notify = 1
	}
	body, err := c.api.Subscription.Create(map[string]any{
		"plan_id":         req.PlanID,
		"total_count":     req.TotalCount,
		"customer_notify": notify,
		"notes":           map[string]string(req.Notes),
	}, nil)
	if err != nil {
		return Subscription{}, errors.Join(ErrGatewayRequest, err)
	}
	var sub Subscription
	if err := decode(body, &sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Subscription.Cancel(subscriptionID, nil, nil); err != nil {
		return errors.Join(ErrGatewayRequest, err)
	}
	return nil
}

func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(orderID, paymentID, signature, c.keySecret)
}

// decode converts the SDK's generic map response into a typed value.
func decode(body map[string]any, v any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return errors.Join(ErrUnexpectedResponse, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Join(ErrUnexpectedResponse, err)
	}
	return nil
}
