// Package domain provides core business rules for the clients bounded
// context: the persisted per-client facts and the displayed-state
// resolver computed from them.
package domain

import "time"

// ClientFacts is the per-client record of agreed booking facts. The
// reconciliation engine computes these from visit groups and upserts
// them; the display-state resolver consumes them. Storage is last-writer-
// wins per field — callers that need at-most-one-concurrent-write-per-
// client discipline must provide it themselves, the engine does not.
type ClientFacts struct {
	ClientID        int64
	AltegioClientID *int64

	ConsultationDate     *time.Time
	ConsultationAttended *bool

	PaidDate      *time.Time
	PaidAttended  *bool
	PaidCancelled bool
	PaidCostMinor *int64

	// IsRebooking marks a paid booking made by a client who already had a
	// completed paid visit before it.
	IsRebooking bool

	// FirstPaid marks the current paid record as the first in the
	// client's history.
	FirstPaid bool

	// Visits is the lifetime visit counter reported by the booking system.
	Visits int

	FirstContactAt *time.Time

	// StoredState is the free-text fallback an administrator can set; it
	// is displayed only when no derived state applies.
	StoredState string

	UpdatedAt time.Time
}

// FactsPatch is a field-level update: nil pointer fields leave the stored
// value untouched. The upsert is last-writer-wins per field.
type FactsPatch struct {
	ClientID        int64
	AltegioClientID *int64

	ConsultationDate     *time.Time
	ConsultationAttended *bool

	PaidDate      *time.Time
	PaidAttended  *bool
	PaidCancelled *bool
	PaidCostMinor *int64

	IsRebooking *bool
	FirstPaid   *bool
	Visits      *int

	FirstContactAt *time.Time
}
