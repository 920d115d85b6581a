// Package services provides domain services that orchestrate business
// operations across multiple domain entities in the dispatch system.
//
// The package includes:
//   - NearestCourierSelector: A domain service that picks the closest
//     assignment candidate for a pickup point, with a deterministic
//     first-listed-wins tie-break
//
// Domain services implement business logic that does not naturally belong to
// a single aggregate root, following Domain-Driven Design principles.
package services
