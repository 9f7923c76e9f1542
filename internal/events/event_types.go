package events

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "service_ticket_created"
	EventTicketStatusChanged   EventType = "service_ticket_status_changed"
	EventTicketAssigneeChanged EventType = "service_ticket_assignee_changed"
	EventTicketAgentChanged    EventType = "service_ticket_agent_changed"
	EventTicketCustomerChanged EventType = "service_ticket_customer_changed"
	EventTicketUserChanged     EventType = "service_ticket_user_changed"
)

// Event represents a domain event emitted by services.
// Ticket holds the ticket as persisted when the event was published.
type Event struct {
	ID         string               `json:"id"`
	Type       EventType            `json:"type"`
	TicketID   int64                `json:"ticket_id"`
	Actor      string               `json:"actor"`
	Timestamp  time.Time            `json:"timestamp"`
	Ticket     domain.ServiceTicket `json:"ticket"`
	StatusName string               `json:"status_name"`
	Payload    Transition           `json:"payload"`
}

// Transition is the closed set of ticket changes that trigger side effects.
type Transition interface {
	EventType() EventType
}

// TicketCreated is emitted once after a ticket is inserted.
type TicketCreated struct{}

// StatusChanged carries the status the ticket moved into.
type StatusChanged struct {
	OldStatusID int64         `json:"old_status_id"`
	NewStatusID int64         `json:"new_status_id"`
	Status      domain.Status `json:"status"`
}

// AssigneeChanged is emitted when the assigned user changes.
type AssigneeChanged struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// AgentChanged is emitted when the agent changes.
type AgentChanged struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// CustomerChanged is emitted when the customer changes.
type CustomerChanged struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// UserChanged is emitted when the creator user changes.
type UserChanged struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (TicketCreated) EventType() EventType   { return EventTicketCreated }
func (StatusChanged) EventType() EventType   { return EventTicketStatusChanged }
func (AssigneeChanged) EventType() EventType { return EventTicketAssigneeChanged }
func (AgentChanged) EventType() EventType    { return EventTicketAgentChanged }
func (CustomerChanged) EventType() EventType { return EventTicketCustomerChanged }
func (UserChanged) EventType() EventType     { return EventTicketUserChanged }
