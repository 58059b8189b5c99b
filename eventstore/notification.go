package eventstore

import (
	"github.com/google/uuid"
)

// Notifications is an alias type for a slice of Notification.
type Notifications = []Notification

// Notification is one entry of a notification log: a marker that the
// aggregate with AggregateID was created or changed, at OriginatorVersion.
//
// Position is assigned by the log at append time and forms a gapless,
// strictly increasing sequence per log instance, independent of per-aggregate
// versioning. Entries are append-only and never mutated or deleted, which
// makes Position a safe pagination cursor: a client that stores the last-seen
// position and passes it back never misses an entry and never sees one twice.
type Notification struct {
	Position          LogPositionUint64
	AggregateID       uuid.UUID
	OriginatorVersion AggregateVersionUint
}

// ReadSelection holds the resolved range criteria for a notification log read.
// The zero bounds mean unbounded; order is descending by position unless
// Ascending was requested.
type ReadSelection struct {
	AfterPosition LogPositionUint64 // exclusive lower bound (gt), 0 = unbounded
	UpToPosition  LogPositionUint64 // inclusive upper bound (lte), 0 = unbounded
	Limit         int               // 0 = no limit
	Ascending     bool
}

// ReadOption defines a functional option for a notification log read.
type ReadOption func(*ReadSelection)

// WithAfterPosition restricts the read to entries with position > gt.
// This is the resume cursor for ascending pagination.
func WithAfterPosition(gt LogPositionUint64) ReadOption {
	return func(s *ReadSelection) {
		s.AfterPosition = gt
	}
}

// WithUpToPosition restricts the read to entries with position <= lte.
// This is the resume cursor for descending pagination.
func WithUpToPosition(lte LogPositionUint64) ReadOption {
	return func(s *ReadSelection) {
		s.UpToPosition = lte
	}
}

// WithLimit truncates the read to at most limit entries.
func WithLimit(limit int) ReadOption {
	return func(s *ReadSelection) {
		s.Limit = limit
	}
}

// Ascending orders the read by position ascending instead of the default descending.
func Ascending() ReadOption {
	return func(s *ReadSelection) {
		s.Ascending = true
	}
}

// BuildReadSelection resolves the given options into a ReadSelection.
func BuildReadSelection(options ...ReadOption) ReadSelection {
	selection := ReadSelection{}

	for _, option := range options {
		option(&selection)
	}

	return selection
}

// Matches reports whether the position satisfies the selection's range bounds.
func (s ReadSelection) Matches(position LogPositionUint64) bool {
	if s.AfterPosition > 0 && position <= s.AfterPosition {
		return false
	}

	if s.UpToPosition > 0 && position > s.UpToPosition {
		return false
	}

	return true
}
