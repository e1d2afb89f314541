// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"salonbridge_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Ingest Domain Events
// =============================================================================

// LogItemReceived is published when a raw item lands in a log stream.
// ClientID is a best-effort hint (0 when the payload could not be parsed);
// the scheduler uses it to debounce a per-client recompute.
type LogItemReceived struct {
	BaseEvent
	Source   string `json:"source"`
	ClientID int64  `json:"clientId"`
}

func (e LogItemReceived) EventName() string { return "ingest.log_item.received" }

// =============================================================================
// Reconcile Domain Events
// =============================================================================

// ClientFactsRecomputed is published after a reconciliation pass upserts a
// client's derived facts. Subscribers invalidate caches keyed by client.
type ClientFactsRecomputed struct {
	BaseEvent
	ClientID int64 `json:"clientId"`
	Groups   int   `json:"groups"`
}

func (e ClientFactsRecomputed) EventName() string { return "reconcile.client_facts.recomputed" }

// =============================================================================
// Campaign Domain Events
// =============================================================================

// CampaignTriggerMatched is published when an automation trigger resolves
// to a campaign rule. The actual CRM move is performed by the caller; this
// event is the audit trail.
type CampaignTriggerMatched struct {
	BaseEvent
	CampaignID   uuid.UUID `json:"campaignId"`
	RuleSlot     string    `json:"ruleSlot"`
	Value        string    `json:"value"`
	ToPipelineID int64     `json:"toPipelineId"`
	ToStatusID   int64     `json:"toStatusId"`
}

func (e CampaignTriggerMatched) EventName() string { return "campaigns.trigger.matched" }
