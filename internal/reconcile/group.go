package reconcile

import (
	"sort"
	"strings"
	"time"

	"salonbridge_backend/internal/civil"
)

// GroupType is the kind of visit a group describes.
type GroupType string

const (
	GroupConsultation GroupType = "consultation"
	GroupPaid         GroupType = "paid"
)

// GroupKey identifies one real-world appointment. Grouping is by calendar
// day rather than by visit id: early webhook payloads often lack the visit
// id, while (client, day, kind) is always derivable, and a client cannot
// have two distinct same-kind visits on one day in this business.
type GroupKey struct {
	ClientID int64
	Day      civil.Day
	Type     GroupType
}

// VisitGroup is the deduplicated aggregate of all events describing one
// appointment. The same physical visit is frequently delivered twice, once
// per staff member ("in 4 hands"); all such deliveries collapse here.
type VisitGroup struct {
	Key    GroupKey
	Events []Event

	// Datetime is the earliest non-nil visit datetime among the events.
	Datetime *time.Time
}

// add merges one event into the group. The merge is commutative and
// associative: Events is an unordered bag and Datetime takes the minimum,
// so arrival order cannot change the final group content.
func (g *VisitGroup) add(event Event) {
	g.Events = append(g.Events, event)
	if event.VisitDatetime != nil {
		if g.Datetime == nil || event.VisitDatetime.Before(*g.Datetime) {
			t := *event.VisitDatetime
			g.Datetime = &t
		}
	}
}

// sortTime orders groups for display: the visit datetime when known,
// otherwise the latest receipt time among the group's events.
func (g *VisitGroup) sortTime() time.Time {
	if g.Datetime != nil {
		return *g.Datetime
	}
	var latest time.Time
	for _, e := range g.Events {
		if e.ReceivedAt.After(latest) {
			latest = e.ReceivedAt
		}
	}
	return latest
}

// consultationTitleKeywords marks a service as a consultation by title.
// The salon's catalog names consultations in Ukrainian; the Latin spelling
// shows up in payloads written by the CRM side.
var consultationTitleKeywords = []string{
	"консульт",
	"consult",
}

func isConsultationTitle(title string) bool {
	t := strings.ToLower(title)
	for _, kw := range consultationTitleKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// Grouper assigns normalized events to visit groups.
type Grouper struct {
	loc *time.Location
}

// NewGrouper creates a grouper using the given business timezone.
func NewGrouper(loc *time.Location) *Grouper {
	return &Grouper{loc: loc}
}

// classify picks the visit kind for an event. Events with no services
// carry no business fact and are excluded from grouping entirely; that
// also covers the bare "deleted" records the booking system emits.
func classify(event Event) (GroupType, bool) {
	for _, svc := range event.Services {
		if isConsultationTitle(svc.Title) {
			return GroupConsultation, true
		}
	}
	if len(event.Services) > 0 {
		return GroupPaid, true
	}
	return "", false
}

// day computes the civil day an event belongs to: the visit datetime when
// present, otherwise the receipt time.
func (g *Grouper) day(event Event) civil.Day {
	if event.VisitDatetime != nil {
		return civil.DayOf(*event.VisitDatetime, g.loc)
	}
	return civil.DayOf(event.ReceivedAt, g.loc)
}

// Group buckets events into visit groups keyed by (client, civil day,
// kind) and returns them per client, newest-first. The per-group merge is
// order-independent; the returned slice order is deterministic regardless
// of input permutation.
func (g *Grouper) Group(events []Event) map[int64][]*VisitGroup {
	byKey := make(map[GroupKey]*VisitGroup)

	for _, event := range events {
		groupType, ok := classify(event)
		if !ok {
			continue
		}
		key := GroupKey{ClientID: event.ClientID, Day: g.day(event), Type: groupType}
		group, ok := byKey[key]
		if !ok {
			group = &VisitGroup{Key: key}
			byKey[key] = group
		}
		group.add(event)
	}

	result := make(map[int64][]*VisitGroup)
	for key, group := range byKey {
		result[key.ClientID] = append(result[key.ClientID], group)
	}

	for _, groups := range result {
		sort.Slice(groups, func(i, j int) bool {
			ti, tj := groups[i].sortTime(), groups[j].sortTime()
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			// Stable order for groups sharing a timestamp.
			if groups[i].Key.Day != groups[j].Key.Day {
				return groups[i].Key.Day > groups[j].Key.Day
			}
			return groups[i].Key.Type < groups[j].Key.Type
		})
	}

	return result
}
