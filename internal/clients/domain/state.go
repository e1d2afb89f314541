package domain

import (
	"time"

	"salonbridge_backend/internal/civil"
)

// StateID identifies one of the displayed UI states. Exactly zero or one
// applies to any facts record.
type StateID string

const (
	StatePaidPast           StateID = "paid_past"
	StateSold               StateID = "sold"
	StateRebook             StateID = "rebook"
	StateWaiting            StateID = "waiting"
	StateBrokenHeart        StateID = "broken_heart"
	StateConsultationPast   StateID = "consultation_past"
	StateConsultationBooked StateID = "consultation_booked"
	StateNewLead            StateID = "new_lead"
	StateMessage            StateID = "message"
)

// Resolution reports the resolved state and the rule that produced it,
// so "which rule fired" is inspectable instead of implicit control flow.
type Resolution struct {
	State StateID
	Rule  string
}

// factsView is ClientFacts pre-digested into civil-day terms for the
// predicates. All date comparisons are civil-day comparisons in the
// business timezone, never instant comparisons.
type factsView struct {
	facts           ClientFacts
	today           civil.Day
	consultDay      civil.Day
	paidDay         civil.Day
	firstContactDay civil.Day
}

func newFactsView(f ClientFacts, now time.Time, loc *time.Location) factsView {
	v := factsView{facts: f, today: civil.Today(now, loc)}
	if f.ConsultationDate != nil {
		v.consultDay = civil.DayOf(*f.ConsultationDate, loc)
	}
	if f.PaidDate != nil {
		v.paidDay = civil.DayOf(*f.PaidDate, loc)
	}
	if f.FirstContactAt != nil {
		v.firstContactDay = civil.DayOf(*f.FirstContactAt, loc)
	}
	return v
}

func (v factsView) consultationAttended() bool {
	return v.facts.ConsultationAttended != nil && *v.facts.ConsultationAttended
}

// paidQualifying reports whether the paid booking still counts: it exists
// and is neither cancelled nor explicitly marked not-attended. An unknown
// attendance (nil) qualifies — absence of a fact is not a "no".
func (v factsView) paidQualifying() bool {
	if v.facts.PaidDate == nil || v.facts.PaidCancelled {
		return false
	}
	return v.facts.PaidAttended == nil || *v.facts.PaidAttended
}

// stateRule is one (predicate, state) pair of the decision list.
type stateRule struct {
	name    string
	state   StateID
	applies func(v factsView) bool
}

// displayRules is the priority-ordered decision list; the first matching
// rule wins. The order is load-bearing: swapping any two rules changes
// behavior for some constructible input.
var displayRules = []stateRule{
	{
		name:  "paid_past",
		state: StatePaidPast,
		applies: func(v factsView) bool {
			return !v.paidDay.IsZero() && v.paidDay.Before(v.today)
		},
	},
	{
		name:  "sold_first_paid",
		state: StateSold,
		applies: func(v factsView) bool {
			return v.consultationAttended() &&
				!v.paidDay.IsZero() && !v.paidDay.Before(v.today) &&
				v.facts.FirstPaid && v.paidQualifying()
		},
	},
	{
		name:  "rebook_today",
		state: StateRebook,
		applies: func(v factsView) bool {
			return v.paidDay == v.today && v.facts.IsRebooking && v.paidQualifying()
		},
	},
	{
		name:  "rebook_future",
		state: StateRebook,
		applies: func(v factsView) bool {
			return !v.paidDay.IsZero() && v.paidDay.After(v.today) &&
				v.facts.IsRebooking && v.paidQualifying()
		},
	},
	{
		name:  "waiting",
		state: StateWaiting,
		applies: func(v factsView) bool {
			return !v.paidDay.IsZero() && !v.paidDay.Before(v.today)
		},
	},
	{
		name:  "broken_heart",
		state: StateBrokenHeart,
		applies: func(v factsView) bool {
			return v.consultationAttended() &&
				!v.consultDay.IsZero() && v.consultDay.Before(v.today) &&
				!v.paidQualifying()
		},
	},
	{
		name:  "consultation_past",
		state: StateConsultationPast,
		applies: func(v factsView) bool {
			return !v.consultDay.IsZero() && v.consultDay.Before(v.today) &&
				!v.paidQualifying()
		},
	},
	{
		name:  "consultation_booked",
		state: StateConsultationBooked,
		applies: func(v factsView) bool {
			return !v.consultDay.IsZero()
		},
	},
	{
		name:  "new_lead",
		state: StateNewLead,
		applies: func(v factsView) bool {
			return v.noBookingHistory() && v.firstContactDay == v.today
		},
	},
	{
		name:  "message",
		state: StateMessage,
		applies: func(v factsView) bool {
			return v.noBookingHistory()
		},
	},
}

func (v factsView) noBookingHistory() bool {
	return v.facts.AltegioClientID == nil && v.consultDay.IsZero() && v.paidDay.IsZero()
}

// ResolveDisplayState evaluates the decision list top to bottom and
// returns the first matching state. ok is false when no rule applies; the
// caller then falls back to the stored free-text state.
func ResolveDisplayState(f ClientFacts, now time.Time, loc *time.Location) (Resolution, bool) {
	v := newFactsView(f, now, loc)
	for _, rule := range displayRules {
		if rule.applies(v) {
			return Resolution{State: rule.state, Rule: rule.name}, true
		}
	}
	return Resolution{}, false
}
