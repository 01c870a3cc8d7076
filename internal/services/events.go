package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"helpdesk/internal/models"
	"helpdesk/internal/repositories"

	"github.com/rs/zerolog"
)

// EventPublisher delivers ticket events to the event bus.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// EventNotifier consumes ticket events and notifies ticket owners who have
// notifications enabled.
type EventNotifier struct {
	accounts repositories.AccountRepository
	log      zerolog.Logger
}

// NewEventNotifier creates a new EventNotifier.
func NewEventNotifier(accounts repositories.AccountRepository, log zerolog.Logger) *EventNotifier {
	return &EventNotifier{accounts: accounts, log: log}
}

// Handle processes a single encoded TicketEvent. It reports whether the
// owner was notified.
func (n *EventNotifier) Handle(body []byte) (bool, error) {
	var event models.TicketEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return false, fmt.Errorf("failed to decode ticket event: %w", err)
	}

	n.log.Debug().Str("event", event.Type).Int("ticket", event.TicketID).Str("actor", event.Actor).Msg("ticket event received")

	if event.Owner == "" || event.Owner == event.Actor {
		return false, nil
	}
	owner, err := n.accounts.GetByUsername(event.Owner)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !owner.Notifications {
		return false, nil
	}

	n.log.Info().
		Str("event", event.Type).
		Int("ticket", event.TicketID).
		Str("owner", owner.Username).
		Str("email", owner.Email).
		Str("actor", event.Actor).
		Msg("notifying ticket owner")
	return true, nil
}
