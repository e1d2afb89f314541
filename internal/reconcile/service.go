package reconcile

import (
	"context"
	"time"

	clientsdomain "salonbridge_backend/internal/clients/domain"
	"salonbridge_backend/internal/events"
	"salonbridge_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// LogReader supplies the bounded slice of recent raw log items, both
// streams interleaved, newest-appended.
type LogReader interface {
	RecentItems(ctx context.Context, since time.Time) ([]RawItem, error)
}

// FactsStore reads and writes persisted client facts. Implemented by the
// clients repository; the upsert is field-level, last-writer-wins.
type FactsStore interface {
	GetFacts(ctx context.Context, clientID int64) (*clientsdomain.ClientFacts, error)
	UpsertFacts(ctx context.Context, patch clientsdomain.FactsPatch) error
}

// ResolvedGroup is a visit group together with its resolved facts, ready
// for display and for deriving client-facts updates.
type ResolvedGroup struct {
	Key                    GroupKey
	Datetime               *time.Time
	Facts                  GroupFacts
	UniqueMastersCostMinor int64
	EventCount             int
}

// Reconciler runs the normalize → group → resolve pipeline over the
// recent log window and upserts the derived client facts. It holds no
// state between runs: every recompute is a fresh batch read, which makes
// it idempotent and safe to trigger concurrently from the scheduled sweep
// and an on-demand UI refresh.
type Reconciler struct {
	logs    LogReader
	facts   FactsStore
	grouper *Grouper
	resolve *FactResolver
	loc     *time.Location
	window  time.Duration
	bus     events.Bus
	log     *logger.Logger
}

// New creates a reconciler.
func New(logs LogReader, facts FactsStore, admins *AdminMatcher, loc *time.Location, window time.Duration, bus events.Bus, log *logger.Logger) *Reconciler {
	return &Reconciler{
		logs:    logs,
		facts:   facts,
		grouper: NewGrouper(loc),
		resolve: NewFactResolver(admins),
		loc:     loc,
		window:  window,
		bus:     bus,
		log:     log,
	}
}

// snapshot is one batch read of the recent log window, normalized and
// grouped. firstSeen tracks the earliest receipt time per client across
// all parseable events, including ones excluded from grouping.
type snapshot struct {
	groups    map[int64][]*VisitGroup
	firstSeen map[int64]time.Time
	sources   map[int64]map[Source]struct{}
	visits    map[int64]int
	dropped   int
}

func (r *Reconciler) load(ctx context.Context) (*snapshot, error) {
	items, err := r.logs.RecentItems(ctx, time.Now().Add(-r.window))
	if err != nil {
		return nil, err
	}

	normalized, dropped := NormalizeBatch(items)
	if dropped > 0 {
		r.log.ParseDropped("all", dropped)
	}

	snap := &snapshot{
		groups:    r.grouper.Group(normalized),
		firstSeen: make(map[int64]time.Time),
		sources:   make(map[int64]map[Source]struct{}),
		visits:    make(map[int64]int),
		dropped:   dropped,
	}
	for _, event := range normalized {
		if first, ok := snap.firstSeen[event.ClientID]; !ok || event.ReceivedAt.Before(first) {
			snap.firstSeen[event.ClientID] = event.ReceivedAt
		}
		if snap.sources[event.ClientID] == nil {
			snap.sources[event.ClientID] = make(map[Source]struct{})
		}
		snap.sources[event.ClientID][event.Source] = struct{}{}
		// The counter only grows; keep the largest value seen in the window.
		if event.Visits != nil && *event.Visits > snap.visits[event.ClientID] {
			snap.visits[event.ClientID] = *event.Visits
		}
	}
	return snap, nil
}

// VisitGroupsForClient returns the client's resolved visit groups,
// newest-first, recomputed on read from the current log window.
func (r *Reconciler) VisitGroupsForClient(ctx context.Context, clientID int64) ([]ResolvedGroup, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return r.resolveGroups(snap.groups[clientID]), nil
}

func (r *Reconciler) resolveGroups(groups []*VisitGroup) []ResolvedGroup {
	resolved := make([]ResolvedGroup, 0, len(groups))
	for _, g := range groups {
		resolved = append(resolved, ResolvedGroup{
			Key:                    g.Key,
			Datetime:               g.Datetime,
			Facts:                  r.resolve.Resolve(g),
			UniqueMastersCostMinor: r.resolve.UniqueMastersCost(g),
			EventCount:             len(g.Events),
		})
	}
	return resolved
}

// RecomputeClient recomputes and persists one client's derived facts.
func (r *Reconciler) RecomputeClient(ctx context.Context, clientID int64) error {
	snap, err := r.load(ctx)
	if err != nil {
		return err
	}
	return r.apply(ctx, clientID, snap)
}

// RecomputeResult summarizes one sweep over all recently active clients.
type RecomputeResult struct {
	Clients int
	Failed  int
	Dropped int
}

// recomputeConcurrency bounds the fan-out of a sweep. Per-client writes
// are independent, the ceiling just keeps pool pressure sane.
const recomputeConcurrency = 8

// RecomputeAll recomputes facts for every client present in the recent
// log window. One failing client never aborts the sweep.
func (r *Reconciler) RecomputeAll(ctx context.Context) (RecomputeResult, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return RecomputeResult{}, err
	}

	result := RecomputeResult{Dropped: snap.dropped}
	failures := make(chan int64, len(snap.groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeConcurrency)
	for clientID := range snap.groups {
		clientID := clientID
		result.Clients++
		g.Go(func() error {
			if err := r.apply(gctx, clientID, snap); err != nil {
				r.log.Error("client recompute failed", "client_id", clientID, "error", err)
				failures <- clientID
			}
			return nil
		})
	}
	_ = g.Wait()
	close(failures)
	for range failures {
		result.Failed++
	}

	return result, nil
}

// apply derives and persists one client's facts from the snapshot.
func (r *Reconciler) apply(ctx context.Context, clientID int64, snap *snapshot) error {
	groups := r.resolveGroups(snap.groups[clientID])

	stored, err := r.facts.GetFacts(ctx, clientID)
	if err != nil {
		return err
	}

	patch := r.derivePatch(clientID, groups, stored, snap)
	if err := r.facts.UpsertFacts(ctx, patch); err != nil {
		return err
	}

	r.log.ReconcileRun(clientID, countEvents(groups), len(groups), snap.dropped)
	if r.bus != nil {
		r.bus.Publish(ctx, events.ClientFactsRecomputed{
			BaseEvent: events.NewBaseEvent(),
			ClientID:  clientID,
			Groups:    len(groups),
		})
	}
	return nil
}

func countEvents(groups []ResolvedGroup) int {
	total := 0
	for _, g := range groups {
		total += g.EventCount
	}
	return total
}

// derivePatch maps the client's resolved groups onto a field-level facts
// update. Groups arrive newest-first.
func (r *Reconciler) derivePatch(clientID int64, groups []ResolvedGroup, stored *clientsdomain.ClientFacts, snap *snapshot) clientsdomain.FactsPatch {
	patch := clientsdomain.FactsPatch{ClientID: clientID}

	if first, ok := snap.firstSeen[clientID]; ok {
		t := first
		patch.FirstContactAt = &t
	}
	// Items in the records log are keyed by the booking-system client id,
	// so their presence pins the Altegio linkage.
	if _, ok := snap.sources[clientID][SourceRecordsLog]; ok {
		id := clientID
		patch.AltegioClientID = &id
	}

	consultation := latestOfType(groups, GroupConsultation)
	if consultation != nil {
		if consultation.Datetime != nil {
			t := *consultation.Datetime
			patch.ConsultationDate = &t
		}
		patch.ConsultationAttended = attendedFlag(consultation.Facts.Attendance)
	}

	lifetimeVisits := snap.visits[clientID]
	if stored != nil && stored.Visits > lifetimeVisits {
		lifetimeVisits = stored.Visits
	}
	if v, ok := snap.visits[clientID]; ok && v > 0 {
		visits := v
		patch.Visits = &visits
	}

	paid := latestOfType(groups, GroupPaid)
	if paid != nil {
		if paid.Datetime != nil {
			t := *paid.Datetime
			patch.PaidDate = &t
		}
		patch.PaidAttended = attendedFlag(paid.Facts.Attendance)
		cancelled := paid.Facts.Attendance == AttendanceCancelled
		patch.PaidCancelled = &cancelled
		cost := paid.Facts.TotalCostMinor
		patch.PaidCostMinor = &cost

		firstPaid := isFirstPaid(groups, paid, lifetimeVisits)
		patch.FirstPaid = &firstPaid

		rebooking := isRebooking(groups, paid, lifetimeVisits)
		patch.IsRebooking = &rebooking
	}

	return patch
}

// attendedFlag converts a resolved attendance into the tri-state attended
// fact: true for attended, false for the negative terminal states, nil
// (unknown) while still pending.
func attendedFlag(a Attendance) *bool {
	switch a {
	case AttendanceAttended:
		v := true
		return &v
	case AttendanceNoShow, AttendanceCancelled:
		v := false
		return &v
	default:
		return nil
	}
}

func latestOfType(groups []ResolvedGroup, t GroupType) *ResolvedGroup {
	for i := range groups {
		if groups[i].Key.Type == t {
			return &groups[i]
		}
	}
	return nil
}

// isFirstPaid reports whether the given paid group is the first paid
// record in the client's history. A prior paid group is one whose day is
// strictly before the group's day; lifetimeVisits is the booking system's
// counter (the larger of the stored value and the window's payloads) and
// guards against history older than the log window.
func isFirstPaid(groups []ResolvedGroup, paid *ResolvedGroup, lifetimeVisits int) bool {
	for i := range groups {
		g := &groups[i]
		if g.Key.Type != GroupPaid || g == paid {
			continue
		}
		if g.Key.Day.Before(paid.Key.Day) {
			return false
		}
	}
	return lifetimeVisits <= 1
}

// isRebooking reports whether the paid booking follows an earlier
// completed paid visit, either visible in the window or implied by the
// booking system's visit counter.
func isRebooking(groups []ResolvedGroup, paid *ResolvedGroup, lifetimeVisits int) bool {
	for i := range groups {
		g := &groups[i]
		if g.Key.Type != GroupPaid || g == paid {
			continue
		}
		if g.Key.Day.Before(paid.Key.Day) && g.Facts.Attendance == AttendanceAttended {
			return true
		}
	}
	return lifetimeVisits > 1
}
