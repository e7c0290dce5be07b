// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadboard_backend/platform/events"

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
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	BusinessName string    `json:"businessName"`
	Country      string    `json:"country"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published after a successful edit of lead fields.
type LeadUpdated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Fields []string  `json:"fields"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// LeadDeleted carries the image URLs so stored objects can be cleaned up.
type LeadDeleted struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	ImageURLs []string  `json:"imageUrls"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// LeadStatusChanged is published when a lead moves through the pipeline.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	OldStatus string     `json:"oldStatus"`
	NewStatus string     `json:"newStatus"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }
