// Package order provides domain entities and business logic for dispatchable
// orders. It implements the Order aggregate root with lifecycle management and
// state transitions.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, pickup location,
//     courier assignment, and lifecycle
//   - Status: A state machine that enforces valid order status transitions
//
// Key business rules:
//   - Orders must have a valid unique identifier and pickup location
//   - Courier assignment is at-most-once: the courier reference only ever
//     transitions from nil to a value
//   - Delivery starts only from the ReadyForPickup status
//   - Delivered and the rejection statuses are terminal
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
