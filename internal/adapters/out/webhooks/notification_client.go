package webhooks

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// HTTPNotificationClient calls the notification service to inform customers
// about dispatch outcomes.
type HTTPNotificationClient struct {
	client
}

// NewHTTPNotificationClient creates a notification gateway client.
// baseURL is the notification service root, e.g. "http://notifications:8080".
func NewHTTPNotificationClient(baseURL string) *HTTPNotificationClient {
	return &HTTPNotificationClient{client: newClient(baseURL)}
}

type orderRejectedNotification struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// NotifyOrderRejected tells the customer the order will not be delivered.
func (c *HTTPNotificationClient) NotifyOrderRejected(
	ctx context.Context,
	orderID kernel.UUID,
	status order.Status,
) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := status.Validate(); err != nil {
		return err
	}

	return c.postJSON(ctx, "/api/v1/notifications/order-rejected", orderRejectedNotification{
		OrderID: orderID.String(),
		Reason:  status.String(),
	})
}
