package repositories

import (
	"fmt"
	"time"

	"helpdesk/internal/apperrors"
	"helpdesk/internal/models"

	"github.com/go-playground/validator/v10"
)

// TicketUpdateFields is the set of keys Update is allowed to change.
var TicketUpdateFields = []string{"ticketName", "description", "status", "priority", "deadline", "owner", "customer", "tags"}

// TicketRepository defines the interface for ticket data access.
type TicketRepository interface {
	GetAll() ([]models.Ticket, error)
	GetByID(id int) (*models.Ticket, error)
	GetByOwner(owner string) ([]models.Ticket, error)
	Create(ticket *models.Ticket) error
	Update(id int, fields models.Fields) (*models.Ticket, error)
	Delete(id int) (bool, error)
	AddComment(ticketID int, author, content string) (*models.Comment, error)
}

var validate = validator.New()

// The numeric aliases are accepted for compatibility with older clients
// even though nothing in the current UI sends them.
const (
	statusRule   = "oneof=open in-progress resolved"
	priorityRule = "oneof=low medium high 1 2 3"
)

// ValidateTicketFields checks the ticket keys present in fields and returns
// every problem found. An empty result means the fields are valid. A status
// or priority that is present must hold one of the allowed values; callers
// that default blank values drop them before validating.
func ValidateTicketFields(fields models.Fields) []string {
	var errs []string

	if fields.Has("ticketName") {
		var name string
		if err := fields.DecodeField("ticketName", &name); err != nil || name == "" {
			errs = append(errs, "ticketName is required and must be a string")
		}
	}

	if fields.Has("status") {
		var status string
		if err := fields.DecodeField("status", &status); err != nil || validate.Var(status, "required,"+statusRule) != nil {
			errs = append(errs, "status must be one of: open, in-progress, resolved")
		}
	}

	if fields.Has("priority") {
		var priority string
		if err := fields.DecodeField("priority", &priority); err != nil || validate.Var(priority, "required,"+priorityRule) != nil {
			errs = append(errs, "priority must be one of: low, medium, high, 1, 2, 3")
		}
	}

	if fields.Has("deadline") {
		var deadline models.Deadline
		if err := fields.DecodeField("deadline", &deadline); err != nil {
			errs = append(errs, models.ErrInvalidDeadline.Error())
		}
	}

	return errs
}

// applyTicketFields copies the allow-listed keys of fields onto ticket and
// refreshes UpdatedAt. Unknown keys are ignored.
func applyTicketFields(ticket *models.Ticket, fields models.Fields, now time.Time) error {
	var invalid []string
	for _, name := range TicketUpdateFields {
		if !fields.Has(name) {
			continue
		}
		var target any
		switch name {
		case "ticketName":
			target = &ticket.TicketName
		case "description":
			target = &ticket.Description
		case "status":
			target = &ticket.Status
		case "priority":
			target = &ticket.Priority
		case "deadline":
			target = &ticket.Deadline
		case "owner":
			target = &ticket.Owner
		case "customer":
			target = &ticket.Customer
		case "tags":
			target = &ticket.Tags
		}
		if err := fields.DecodeField(name, target); err != nil {
			invalid = append(invalid, fmt.Sprintf("%s has an invalid value", name))
		}
	}
	if len(invalid) > 0 {
		return apperrors.Validation("Validation errors", invalid...)
	}
	if ticket.Tags == nil {
		ticket.Tags = []string{}
	}
	ticket.UpdatedAt = now
	return nil
}

// applyTicketDefaults fills the fields a new ticket must always carry.
func applyTicketDefaults(ticket *models.Ticket, id int, now time.Time) {
	ticket.ID = id
	if ticket.Status == "" {
		ticket.Status = models.StatusOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = models.PriorityLow
	}
	if ticket.Tags == nil {
		ticket.Tags = []string{}
	}
	ticket.Comments = []models.Comment{}
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
}

func nextTicketID(tickets []models.Ticket) int {
	maxID := 0
	for _, t := range tickets {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}

func nextCommentID(comments []models.Comment) int {
	maxID := 0
	for _, c := range comments {
		if c.CommentID > maxID {
			maxID = c.CommentID
		}
	}
	return maxID + 1
}
