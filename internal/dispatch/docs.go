// Package dispatch runs the per-order courier search.
//
// Every order waiting for a courier gets its own task: a goroutine that
// performs a matching attempt immediately and then on every tick until one
// of four terminal events ends it.
//
//   - Assigned: an attempt claimed the order for a courier.
//   - TimedOut: the deadline expired with no assignment.
//   - Cancelled: CancelDispatch was called for the order.
//   - Shutdown: StopAll stopped the scheduler; no outcome is reported and
//     the recovery sweep restarts the search after the process comes back.
//
// The Registry guarantees at most one task per order id, so matching
// attempts for an order are strictly sequential. Attempt failures are
// logged and skipped; the search only ends on a terminal event.
package dispatch
