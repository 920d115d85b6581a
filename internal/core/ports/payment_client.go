package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// PaymentClient triggers refunds against the payment service.
type PaymentClient interface {
	// Refund requests a full refund of the order's payment.
	// Idempotent on the payment service side: repeating a refund
	// for the same order is safe.
	Refund(ctx context.Context, orderID kernel.UUID) error
}
