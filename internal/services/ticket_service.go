package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"helpdesk/internal/apperrors"
	"helpdesk/internal/models"
	"helpdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TicketService handles business logic related to tickets.
type TicketService struct {
	repo      repositories.TicketRepository
	publisher EventPublisher
	log       zerolog.Logger
}

// NewTicketService creates a new TicketService. publisher may be nil, in
// which case no events are published.
func NewTicketService(repo repositories.TicketRepository, publisher EventPublisher, log zerolog.Logger) *TicketService {
	return &TicketService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

var errTicketNotFound = apperrors.NotFound("Ticket not found")

type newTicket struct {
	TicketName  string          `json:"ticketName"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	Deadline    models.Deadline `json:"deadline"`
	Owner       *string         `json:"owner"`
	Customer    *string         `json:"customer"`
	Tags        []string        `json:"tags"`
}

// List returns all tickets, or only those owned by owner when it is set.
func (s *TicketService) List(owner string) ([]models.Ticket, error) {
	if owner != "" {
		return s.repo.GetByOwner(owner)
	}
	return s.repo.GetAll()
}

// Get returns a single ticket.
func (s *TicketService) Get(id int) (*models.Ticket, error) {
	ticket, err := s.repo.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errTicketNotFound
	}
	return ticket, err
}

// Create validates fields and stores a new ticket. The owner defaults to
// the caller.
func (s *TicketService) Create(fields models.Fields, caller string) (*models.Ticket, error) {
	check := models.Fields{"ticketName": fields.Raw("ticketName")}
	for _, k := range []string{"status", "priority", "deadline"} {
		if fields.Has(k) && !blank(fields[k]) {
			check[k] = fields[k]
		}
	}
	if errs := repositories.ValidateTicketFields(check); len(errs) > 0 {
		return nil, apperrors.Validation("Validation errors", errs...)
	}

	var req newTicket
	if err := fields.Only(repositories.TicketUpdateFields...).Decode(&req); err != nil {
		return nil, apperrors.Validation("Validation errors", decodeError(err))
	}

	ticket := &models.Ticket{
		TicketName:  req.TicketName,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		Owner:       req.Owner,
		Customer:    req.Customer,
		Tags:        req.Tags,
	}
	if ticket.Owner == nil || *ticket.Owner == "" {
		ticket.Owner = nil
		if caller != "" {
			ticket.Owner = &caller
		}
	}
	if ticket.Customer != nil && *ticket.Customer == "" {
		ticket.Customer = nil
	}

	if err := s.repo.Create(ticket); err != nil {
		return nil, err
	}
	s.publish(models.EventTicketCreated, ticket, caller)
	return ticket, nil
}

// Update validates fields and applies them to an existing ticket.
func (s *TicketService) Update(id int, fields models.Fields, caller string) (*models.Ticket, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if errs := repositories.ValidateTicketFields(fields); len(errs) > 0 {
		return nil, apperrors.Validation("Validation errors", errs...)
	}

	ticket, err := s.repo.Update(id, fields)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	s.publish(models.EventTicketUpdated, ticket, caller)
	return ticket, nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(id int, caller string) error {
	ticket, err := s.Get(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return errTicketNotFound
	}
	s.publish(models.EventTicketDeleted, ticket, caller)
	return nil
}

// AddComment appends a comment authored by author to a ticket.
func (s *TicketService) AddComment(id int, author, content string) (*models.Comment, error) {
	if author == "" {
		author = "Anonymous"
	}
	comment, err := s.repo.AddComment(id, author, content)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if ticket, err := s.repo.GetByID(id); err == nil {
		s.publish(models.EventTicketCommented, ticket, author)
	}
	return comment, nil
}

// decodeError names the offending field without exposing Go type names.
func decodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s has an invalid value", typeErr.Field)
	}
	if errors.Is(err, models.ErrInvalidDeadline) {
		return err.Error()
	}
	return "Invalid ticket fields"
}

// blank reports whether raw is null or the empty string. Blank status and
// priority fall back to their defaults on create.
func blank(raw json.RawMessage) bool {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return s == nil || *s == ""
}

// publish sends a ticket event. Failures are logged and never fail the
// request that triggered them.
func (s *TicketService) publish(eventType string, ticket *models.Ticket, actor string) {
	if s.publisher == nil {
		return
	}
	event := models.TicketEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		TicketID:   ticket.ID,
		TicketName: ticket.TicketName,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
	if ticket.Owner != nil {
		event.Owner = *ticket.Owner
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to encode ticket event")
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Int("ticket", ticket.ID).Msg("failed to publish ticket event")
		return
	}
	s.log.Debug().Str("event", eventType).Int("ticket", ticket.ID).Msg("ticket event published")
}
