package models

import "time"

// Ticket event types published on the event bus.
const (
	EventTicketCreated   = "ticket.created"
	EventTicketUpdated   = "ticket.updated"
	EventTicketDeleted   = "ticket.deleted"
	EventTicketCommented = "ticket.commented"
)

// TicketEvent describes a change to a ticket.
type TicketEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TicketID   int       `json:"ticketId"`
	TicketName string    `json:"ticketName,omitempty"`
	Owner      string    `json:"owner,omitempty"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurredAt"`
}
