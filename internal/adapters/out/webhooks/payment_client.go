package webhooks

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// HTTPPaymentClient calls the payment service to refund orders.
type HTTPPaymentClient struct {
	client
}

// NewHTTPPaymentClient creates a payment gateway client.
// baseURL is the payment service root, e.g. "http://payments:8080".
func NewHTTPPaymentClient(baseURL string) *HTTPPaymentClient {
	return &HTTPPaymentClient{client: newClient(baseURL)}
}

type refundRequest struct {
	OrderID string `json:"order_id"`
}

// Refund requests a full refund of the order's payment.
// The payment service deduplicates by order id, so retries are safe.
func (c *HTTPPaymentClient) Refund(ctx context.Context, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	return c.postJSON(ctx, "/api/v1/refunds", refundRequest{OrderID: orderID.String()})
}
