// Package aggregate provides the generic replay runtime shared by all
// aggregate kinds: deterministic folding of an event history into current
// state, and change tracking for the events a loaded aggregate has produced
// but not yet persisted.
//
// State is always a pure function of the event history. Aggregate roots embed
// a ChangeTracker and route every state change through recorded events; the
// tracker's base version is the optimistic concurrency guard used when the
// pending events are appended.
package aggregate
