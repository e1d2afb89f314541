package reconcile

import (
	"sort"
	"strconv"
)

// GroupFacts are the agreed facts for one visit group: what every partial,
// duplicated delivery of the same appointment boils down to.
type GroupFacts struct {
	Attendance       Attendance
	AttendanceStatus string

	// Staff is the performing master under the "latest" policy, nil when
	// no non-administrative staff appears anywhere in the group.
	Staff *string

	// StaffNames is every non-administrative staff name seen, sorted.
	StaffNames []string

	// Services is the union of all service lines keyed by service id.
	Services []ServiceLine

	// TotalCostMinor is the summed cost of the service union, in minor
	// currency units.
	TotalCostMinor int64
}

// FactResolver derives GroupFacts from a visit group. All derivations are
// folds with commutative combine functions, so the result is independent
// of event arrival order.
type FactResolver struct {
	admins *AdminMatcher
}

// NewFactResolver creates a resolver using the given admin allow-list.
func NewFactResolver(admins *AdminMatcher) *FactResolver {
	return &FactResolver{admins: admins}
}

// Resolve computes the facts for one group. An empty group yields pending
// attendance, nil staff and zero cost; that is a valid outcome, not an
// error.
func (r *FactResolver) Resolve(g *VisitGroup) GroupFacts {
	facts := GroupFacts{Attendance: AttendancePending}
	if g == nil || len(g.Events) == 0 {
		facts.AttendanceStatus = facts.Attendance.String()
		return facts
	}

	staffSet := make(map[string]struct{})
	var best *Event

	for i := range g.Events {
		event := &g.Events[i]

		facts.Attendance = combineAttendance(facts.Attendance, event.Attendance())

		if event.StaffName == nil || r.admins.IsAdmin(*event.StaffName) {
			continue
		}
		staffSet[*event.StaffName] = struct{}{}
		best = pickLatestStaff(best, event)
	}

	facts.AttendanceStatus = facts.Attendance.String()

	if best != nil {
		name := *best.StaffName
		facts.Staff = &name
	}

	facts.StaffNames = make([]string, 0, len(staffSet))
	for name := range staffSet {
		facts.StaffNames = append(facts.StaffNames, name)
	}
	sort.Strings(facts.StaffNames)

	facts.Services = unionServices(g.Events)
	for _, svc := range facts.Services {
		facts.TotalCostMinor += svc.CostMinor
	}

	return facts
}

// pickLatestStaff is the combine function for the "latest" staff policy:
// the event received most recently wins. Ties break on the staff name so
// that the fold stays commutative when duplicates share a receipt time.
func pickLatestStaff(current, next *Event) *Event {
	if current == nil {
		return next
	}
	if next.ReceivedAt.After(current.ReceivedAt) {
		return next
	}
	if next.ReceivedAt.Equal(current.ReceivedAt) && *next.StaffName > *current.StaffName {
		return next
	}
	return current
}

// unionServices deduplicates service lines by service id across all events
// in the group. When duplicates disagree, the higher cost and the first
// non-empty (lexicographically smallest) title win; both choices are
// order-independent.
func unionServices(events []Event) []ServiceLine {
	byID := make(map[int64]ServiceLine)
	for _, event := range events {
		for _, svc := range event.Services {
			existing, ok := byID[svc.ID]
			if !ok {
				byID[svc.ID] = svc
				continue
			}
			if svc.CostMinor > existing.CostMinor {
				existing.CostMinor = svc.CostMinor
			}
			if existing.Title == "" || (svc.Title != "" && svc.Title < existing.Title) {
				existing.Title = svc.Title
			}
			byID[svc.ID] = existing
		}
	}

	services := make([]ServiceLine, 0, len(byID))
	for _, svc := range byID {
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services
}

// UniqueMastersCost computes the per-master commission aggregation: the
// same service delivered by two different masters for one visit ("in 4
// hands") is attributed once per distinct master, unlike the plain total
// where it counts once. Administrative staff never accrue commission.
// Events with no resolvable staff attribute their services once under an
// anonymous bucket.
func (r *FactResolver) UniqueMastersCost(g *VisitGroup) int64 {
	if g == nil {
		return 0
	}

	type attribution struct {
		serviceID int64
		staffKey  string
	}

	seen := make(map[attribution]int64)
	for _, event := range g.Events {
		key := ""
		if event.StaffName != nil {
			if r.admins.IsAdmin(*event.StaffName) {
				continue
			}
			if event.StaffID != nil {
				key = "id:" + strconv.FormatInt(*event.StaffID, 10)
			} else {
				key = "name:" + normalizeName(*event.StaffName)
			}
		}
		for _, svc := range event.Services {
			attr := attribution{serviceID: svc.ID, staffKey: key}
			if svc.CostMinor > seen[attr] {
				seen[attr] = svc.CostMinor
			}
		}
	}

	var total int64
	for _, cost := range seen {
		total += cost
	}
	return total
}
