// Package courier provides the Courier aggregate considered by the dispatch
// matcher. A courier carries its admin approval flag, its last location ping,
// and the statuses of orders currently assigned to it; those three inputs
// determine dispatch eligibility.
package courier
