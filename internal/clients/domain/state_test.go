package domain

import (
	"testing"
	"time"

	"salonbridge_backend/internal/civil"
)

var testLoc = civil.Location(2)

// now is mid-day in the business timezone: 2024-03-15 local.
var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func boolPtr(b bool) *bool    { return &b }
func int64Ptr(n int64) *int64 { return &n }

func resolve(t *testing.T, f ClientFacts) Resolution {
	t.Helper()
	res, ok := ResolveDisplayState(f, testNow, testLoc)
	if !ok {
		t.Fatalf("expected a derived state for %+v", f)
	}
	return res
}

func TestResolveDisplayState_PaidPastBeatsEverything(t *testing.T) {
	f := ClientFacts{
		ClientID:             42,
		ConsultationDate:     datePtr(2024, 3, 1),
		ConsultationAttended: boolPtr(true),
		PaidDate:             datePtr(2024, 3, 10),
		FirstPaid:            true,
		IsRebooking:          true,
	}

	res := resolve(t, f)
	if res.State != StatePaidPast || res.Rule != "paid_past" {
		t.Errorf("got %+v, want paid_past", res)
	}
}

func TestResolveDisplayState_SoldFirstPaid(t *testing.T) {
	f := ClientFacts{
		ClientID:             42,
		ConsultationDate:     datePtr(2024, 3, 1),
		ConsultationAttended: boolPtr(true),
		PaidDate:             datePtr(2024, 3, 20),
		FirstPaid:            true,
	}

	res := resolve(t, f)
	if res.State != StateSold || res.Rule != "sold_first_paid" {
		t.Errorf("got %+v, want sold", res)
	}
}

func TestResolveDisplayState_SoldRequiresAttendedConsultation(t *testing.T) {
	f := ClientFacts{
		ClientID:  42,
		PaidDate:  datePtr(2024, 3, 20),
		FirstPaid: true,
	}

	// Without an attended consultation the upcoming first paid booking
	// falls through to waiting.
	res := resolve(t, f)
	if res.State != StateWaiting {
		t.Errorf("got %+v, want waiting", res)
	}
}

func TestResolveDisplayState_RebookToday(t *testing.T) {
	f := ClientFacts{
		ClientID:    42,
		PaidDate:    datePtr(2024, 3, 15),
		IsRebooking: true,
	}

	res := resolve(t, f)
	if res.State != StateRebook || res.Rule != "rebook_today" {
		t.Errorf("got %+v, want rebook (today)", res)
	}
}

func TestResolveDisplayState_RebookFuture(t *testing.T) {
	f := ClientFacts{
		ClientID:    42,
		PaidDate:    datePtr(2024, 3, 25),
		IsRebooking: true,
	}

	res := resolve(t, f)
	if res.State != StateRebook || res.Rule != "rebook_future" {
		t.Errorf("got %+v, want rebook (future)", res)
	}
}

func TestResolveDisplayState_CancelledPaidIsNotRebook(t *testing.T) {
	f := ClientFacts{
		ClientID:      42,
		PaidDate:      datePtr(2024, 3, 25),
		IsRebooking:   true,
		PaidCancelled: true,
	}

	// A cancelled paid booking disqualifies rebook; the booking date
	// still matches the generic waiting rule.
	res := resolve(t, f)
	if res.State != StateWaiting {
		t.Errorf("got %+v, want waiting", res)
	}
}

func TestResolveDisplayState_Waiting(t *testing.T) {
	f := ClientFacts{
		ClientID: 42,
		PaidDate: datePtr(2024, 3, 25),
	}

	res := resolve(t, f)
	if res.State != StateWaiting || res.Rule != "waiting" {
		t.Errorf("got %+v, want waiting", res)
	}
}

func TestResolveDisplayState_BrokenHeart(t *testing.T) {
	f := ClientFacts{
		ClientID:             42,
		ConsultationDate:     datePtr(2024, 3, 1),
		ConsultationAttended: boolPtr(true),
	}

	res := resolve(t, f)
	if res.State != StateBrokenHeart || res.Rule != "broken_heart" {
		t.Errorf("got %+v, want broken_heart", res)
	}
}

func TestResolveDisplayState_BrokenHeartNotWhenPaidQualifies(t *testing.T) {
	f := ClientFacts{
		ClientID:             42,
		ConsultationDate:     datePtr(2024, 3, 1),
		ConsultationAttended: boolPtr(true),
		PaidDate:             datePtr(2024, 3, 25),
	}

	res := resolve(t, f)
	if res.State == StateBrokenHeart {
		t.Error("broken_heart must not fire while a qualifying paid booking exists")
	}
}

func TestResolveDisplayState_ConsultationPast(t *testing.T) {
	f := ClientFacts{
		ClientID:         42,
		ConsultationDate: datePtr(2024, 3, 1),
	}

	// Past consultation with unknown attendance: not broken_heart (that
	// needs a confirmed attendance), but consultation_past.
	res := resolve(t, f)
	if res.State != StateConsultationPast || res.Rule != "consultation_past" {
		t.Errorf("got %+v, want consultation_past", res)
	}
}

func TestResolveDisplayState_ConsultationBooked(t *testing.T) {
	f := ClientFacts{
		ClientID:         42,
		ConsultationDate: datePtr(2024, 3, 20),
	}

	res := resolve(t, f)
	if res.State != StateConsultationBooked || res.Rule != "consultation_booked" {
		t.Errorf("got %+v, want consultation_booked", res)
	}
}

func TestResolveDisplayState_NewLead(t *testing.T) {
	f := ClientFacts{
		ClientID:       42,
		FirstContactAt: datePtr(2024, 3, 15),
	}

	res := resolve(t, f)
	if res.State != StateNewLead || res.Rule != "new_lead" {
		t.Errorf("got %+v, want new_lead", res)
	}
}

func TestResolveDisplayState_NewLeadOnlyOnFirstContactDay(t *testing.T) {
	f := ClientFacts{
		ClientID:       42,
		FirstContactAt: datePtr(2024, 3, 10),
	}

	res := resolve(t, f)
	if res.State != StateMessage || res.Rule != "message" {
		t.Errorf("got %+v, want message", res)
	}
}

func TestResolveDisplayState_MessageRequiresNoBookingHistory(t *testing.T) {
	f := ClientFacts{
		ClientID:        42,
		AltegioClientID: int64Ptr(900),
	}

	// A known booking-system identity without any visit dates matches no
	// rule; the caller falls back to the stored free-text state.
	if _, ok := ResolveDisplayState(f, testNow, testLoc); ok {
		t.Error("expected no derived state for booking identity without dates")
	}
}

// TestResolveDisplayState_ExactlyOneRuleReported spot-checks that the
// resolver reports the rule that fired, for facts where several
// predicates are true at once.
func TestResolveDisplayState_ExactlyOneRuleReported(t *testing.T) {
	f := ClientFacts{
		ClientID:             42,
		ConsultationDate:     datePtr(2024, 3, 1),
		ConsultationAttended: boolPtr(true),
		PaidDate:             datePtr(2024, 3, 15),
		FirstPaid:            true,
		IsRebooking:          true,
	}

	// sold_first_paid, rebook_today and waiting all apply; priority picks
	// sold_first_paid.
	res := resolve(t, f)
	if res.Rule != "sold_first_paid" {
		t.Errorf("rule = %q, want sold_first_paid", res.Rule)
	}
}

func TestResolveDisplayState_DayBoundary(t *testing.T) {
	// 22:30 UTC on the 14th is already the 15th in the business timezone,
	// so a paid visit at that instant is "today", not past.
	paid := time.Date(2024, 3, 14, 22, 30, 0, 0, time.UTC)
	f := ClientFacts{
		ClientID:    42,
		PaidDate:    &paid,
		IsRebooking: true,
	}

	res := resolve(t, f)
	if res.Rule != "rebook_today" {
		t.Errorf("rule = %q, want rebook_today across the UTC midnight boundary", res.Rule)
	}
}
