// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"bd_pipeline_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewActorEvent  = events.NewActorEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID   string  `json:"leadId"`
	GroupID  *string `json:"groupId,omitempty"`
	Capacity string  `json:"capacity"`
	Source   string  `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "bd.lead.created" }

// LeadStageChanged is published after a status entry is appended to a lead.
type LeadStageChanged struct {
	BaseEvent
	LeadID   string `json:"leadId"`
	OldStage string `json:"oldStage"`
	NewStage string `json:"newStage"`
	SubStage string `json:"subStage,omitempty"`
}

func (e LeadStageChanged) EventName() string { return "bd.lead.stage_changed" }

// LeadWon is published when a lead enters the won stage. The handover
// module creates the downstream handover sheet in response.
type LeadWon struct {
	BaseEvent
	LeadID string `json:"leadId"`
}

func (e LeadWon) EventName() string { return "bd.lead.won" }

// LeadsAssigned is published after a bulk assignment updated at least one lead.
type LeadsAssigned struct {
	BaseEvent
	UserID  uuid.UUID `json:"userId"`
	LeadIDs []string  `json:"leadIds"`
}

func (e LeadsAssigned) EventName() string { return "bd.leads.assigned" }

// LeadsAttached is published after leads joined a group.
type LeadsAttached struct {
	BaseEvent
	GroupID   string   `json:"groupId"`
	LeadIDs   []string `json:"leadIds"`
	Committed float64  `json:"committed"`
	Ceiling   float64  `json:"ceiling"`
}

func (e LeadsAttached) EventName() string { return "bd.group.leads_attached" }

// =============================================================================
// Group Domain Events
// =============================================================================

// GroupCreated is published when a new group is created.
type GroupCreated struct {
	BaseEvent
	GroupID         string `json:"groupId"`
	CapacityCeiling string `json:"capacityCeiling"`
}

func (e GroupCreated) EventName() string { return "bd.group.created" }

// GroupStageChanged is published after a status entry is appended to a group.
type GroupStageChanged struct {
	BaseEvent
	GroupID  string `json:"groupId"`
	OldStage string `json:"oldStage"`
	NewStage string `json:"newStage"`
}

func (e GroupStageChanged) EventName() string { return "bd.group.stage_changed" }
