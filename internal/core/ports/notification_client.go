package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// NotificationClient notifies the customer about dispatch outcomes.
type NotificationClient interface {
	// NotifyOrderRejected tells the customer the order will not be
	// delivered and names the rejection reason via the terminal status.
	NotifyOrderRejected(ctx context.Context, orderID kernel.UUID, status order.Status) error
}
