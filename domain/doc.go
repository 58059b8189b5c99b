// Package domain holds the shared domain kernel: the DomainEvent contract
// implemented by every event of every aggregate kind, the Date value type
// used for calendar dates (lease ranges, dates of birth), and the
// ValidationError type returned when a business precondition rejects a
// command.
//
// The package is dependency-free on purpose: aggregate kinds (unit, tenant,
// lease) and the replay runtime build on it without pulling in storage or
// serialization concerns.
package domain
