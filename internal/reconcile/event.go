// Package reconcile implements the event reconciliation engine: it turns
// the noisy, duplicated raw items of the two integration log streams into
// canonical per-client, per-day visit groups with agreed attendance, staff
// and cost facts. Everything in this package is pure computation over
// in-memory inputs; all I/O lives in the repository and in callers.
package reconcile

import "time"

// Source identifies which log stream a raw item came from.
type Source string

const (
	// SourceRecordsLog is the booking-system record log ("records log").
	SourceRecordsLog Source = "records-log"
	// SourceWebhookLog is the raw webhook delivery log ("webhook log").
	SourceWebhookLog Source = "webhook-log"
)

// Status is the lifecycle operation a raw item described.
type Status string

const (
	StatusCreate  Status = "create"
	StatusUpdate  Status = "update"
	StatusDelete  Status = "delete"
	StatusUnknown Status = "unknown"
)

// Attendance is the resolved attendance of a visit. The ordering of the
// constants is the dominance order: a higher value always wins when events
// for the same visit disagree, which makes the attendance fold commutative.
// Cancellation and attendance are business-terminal; a stray "pending"
// duplicate arriving after a terminal event must not erase it.
type Attendance int

const (
	AttendancePending Attendance = iota
	AttendanceNoShow
	AttendanceAttended
	AttendanceCancelled
)

// String returns the display status for the attendance value.
func (a Attendance) String() string {
	switch a {
	case AttendanceCancelled:
		return "cancelled"
	case AttendanceAttended:
		return "attended"
	case AttendanceNoShow:
		return "no-show"
	default:
		return "pending"
	}
}

// Terminal reports whether the value is business-terminal.
func (a Attendance) Terminal() bool {
	return a != AttendancePending
}

// Raw attendance codes used by the booking system.
const (
	rawAttended  = 1
	rawConfirmed = 2 // unified with attended
	rawNoShow    = -1
	rawCancelled = -2
	rawPending   = 0
)

// attendanceFromRaw maps a raw booking-system code to the resolved enum.
// A nil code means the item carried no attendance fact at all.
func attendanceFromRaw(raw *int) Attendance {
	if raw == nil {
		return AttendancePending
	}
	switch *raw {
	case rawCancelled:
		return AttendanceCancelled
	case rawAttended, rawConfirmed:
		return AttendanceAttended
	case rawNoShow:
		return AttendanceNoShow
	default:
		return AttendancePending
	}
}

// combineAttendance is the merge function for attendance facts within a
// visit group. It is commutative and associative, so the order in which
// duplicate webhook deliveries arrive cannot change the resolved value.
func combineAttendance(current, next Attendance) Attendance {
	if next > current {
		return next
	}
	return current
}

// ServiceLine is one service attached to an event, with its cost in minor
// currency units (kopecks) to avoid floating-point drift.
type ServiceLine struct {
	ID        int64
	Title     string
	CostMinor int64
}

// Event is the canonical, normalized form of one raw log item.
// ClientID and ReceivedAt are always present; every other field may be
// absent and must be treated as unknown, never as a default business value.
type Event struct {
	ClientID      int64
	Source        Source
	ReceivedAt    time.Time
	VisitDatetime *time.Time
	VisitID       *int64
	StaffName     *string
	StaffID       *int64
	Services      []ServiceLine
	AttendanceRaw *int
	Status        Status

	// Visits is the lifetime visit counter the booking system attaches to
	// client snapshots. It covers history older than the log window.
	Visits *int

	// Raw keeps the unwrapped payload for audit; the engine never reads it.
	Raw map[string]interface{}
}

// Attendance returns the resolved attendance fact the event carries.
func (e Event) Attendance() Attendance {
	return attendanceFromRaw(e.AttendanceRaw)
}
