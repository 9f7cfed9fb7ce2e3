package model

import "time"

// Event is one append-only audit entry tied to an APR. Events are never
// edited or deleted and always listed in creation order; the event log
// is the sole audit trail.
type Event struct {
	ID        int64
	AprID     int64
	TenantID  string
	Action    string
	ActorSub  string
	ActorName string
	ActorRole string
	Payload   map[string]any
	CreatedAt time.Time
}

// Audit event actions
const (
	EventCreated       = "created"
	EventUpdated       = "updated"
	EventStatusChanged = "status_changed"
	EventArchived      = "archived"
	EventStepAdded     = "step_added"
	EventStepUpdated   = "step_updated"
	EventStepRemoved   = "step_removed"
	EventStepsDrafted  = "steps_drafted"
	EventStepsBulk     = "steps_bulk_added"
	EventItemOverride  = "risk_item_override"
	EventFinalized     = "finalized"
	EventExported      = "exported"
)
