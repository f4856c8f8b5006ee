// Package domain contains the core domain entities and value objects for beaconsync.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (transports, file system, logging)
// and contains only pure business logic.
//
// # Entities
//
//   - [Event]: A decoded beacon frame stamped with its local arrival time
//   - [Fit]: An affine beacon-to-receiver timeline mapping (offset + skew)
//   - [DriftReport]: On-demand sync-quality summary over a batch of events
//   - [State]: Persisted agent status (session id, counters, last fit)
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
