package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"helpdesk/internal/models"
)

// JSONTicketRepository stores tickets under the "tickets" key of a JSON
// document. Other top-level keys of the document are preserved on rewrite.
type JSONTicketRepository struct {
	doc *jsonDocument
	now func() time.Time
}

// NewJSONTicketRepository creates a repository backed by the file at path.
func NewJSONTicketRepository(path string) *JSONTicketRepository {
	return &JSONTicketRepository{
		doc: newJSONDocument(path, []byte(`{"tickets": []}`)),
		now: time.Now,
	}
}

// WithClock returns a copy of the repository stamping times from now. The
// copy shares the document and its lock.
func (r *JSONTicketRepository) WithClock(now func() time.Time) *JSONTicketRepository {
	return &JSONTicketRepository{doc: r.doc, now: now}
}

type ticketDocument struct {
	raw     map[string]json.RawMessage
	tickets []models.Ticket
}

func (r *JSONTicketRepository) load() (*ticketDocument, error) {
	doc := &ticketDocument{}
	if err := r.doc.read(&doc.raw); err != nil {
		return nil, err
	}
	if doc.raw == nil {
		doc.raw = map[string]json.RawMessage{}
	}
	if raw, ok := doc.raw["tickets"]; ok {
		if err := json.Unmarshal(raw, &doc.tickets); err != nil {
			return nil, fmt.Errorf("failed to parse tickets: %w", err)
		}
	}
	if doc.tickets == nil {
		doc.tickets = []models.Ticket{}
	}
	return doc, nil
}

func (r *JSONTicketRepository) save(doc *ticketDocument) error {
	raw, err := json.Marshal(doc.tickets)
	if err != nil {
		return fmt.Errorf("failed to encode tickets: %w", err)
	}
	doc.raw["tickets"] = raw
	return r.doc.write(doc.raw)
}

func (d *ticketDocument) index(id int) int {
	for i := range d.tickets {
		if d.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

// GetAll returns all tickets.
func (r *JSONTicketRepository) GetAll() ([]models.Ticket, error) {
	r.doc.mu.RLock()
	defer r.doc.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return doc.tickets, nil
}

// GetByID returns the ticket with the given id or ErrNotFound.
func (r *JSONTicketRepository) GetByID(id int) (*models.Ticket, error) {
	r.doc.mu.RLock()
	defer r.doc.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	i := doc.index(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return &doc.tickets[i], nil
}

// GetByOwner returns the tickets whose owner exactly matches owner.
func (r *JSONTicketRepository) GetByOwner(owner string) ([]models.Ticket, error) {
	r.doc.mu.RLock()
	defer r.doc.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	owned := []models.Ticket{}
	for _, t := range doc.tickets {
		if t.Owner != nil && *t.Owner == owner {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

// Create assigns the next id, stamps timestamps and appends the ticket.
func (r *JSONTicketRepository) Create(ticket *models.Ticket) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	applyTicketDefaults(ticket, nextTicketID(doc.tickets), r.now().UTC())
	doc.tickets = append(doc.tickets, *ticket)
	return r.save(doc)
}

// Update applies the allow-listed fields to the ticket with the given id.
func (r *JSONTicketRepository) Update(id int, fields models.Fields) (*models.Ticket, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	i := doc.index(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if err := applyTicketFields(&doc.tickets[i], fields, r.now().UTC()); err != nil {
		return nil, err
	}
	if err := r.save(doc); err != nil {
		return nil, err
	}
	updated := doc.tickets[i]
	return &updated, nil
}

// Delete removes the ticket and reports whether one was removed.
func (r *JSONTicketRepository) Delete(id int) (bool, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return false, err
	}
	i := doc.index(id)
	if i < 0 {
		return false, nil
	}
	doc.tickets = append(doc.tickets[:i], doc.tickets[i+1:]...)
	return true, r.save(doc)
}

// AddComment appends a comment to the ticket and refreshes its UpdatedAt.
func (r *JSONTicketRepository) AddComment(ticketID int, author, content string) (*models.Comment, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	i := doc.index(ticketID)
	if i < 0 {
		return nil, ErrNotFound
	}
	ticket := &doc.tickets[i]
	now := r.now().UTC()
	comment := models.Comment{
		CommentID: nextCommentID(ticket.Comments),
		Author:    author,
		Content:   content,
		CreatedAt: now,
	}
	ticket.Comments = append(ticket.Comments, comment)
	ticket.UpdatedAt = now
	if err := r.save(doc); err != nil {
		return nil, err
	}
	return &comment, nil
}
