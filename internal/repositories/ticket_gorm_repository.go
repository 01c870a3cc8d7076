package repositories

import (
	"errors"
	"fmt"
	"time"

	"helpdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMTicketRepository is a GORM implementation of TicketRepository.
// Comments live in their own table; tags are stored as a JSON column.
type GORMTicketRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGORMTicketRepository creates a new instance of GORMTicketRepository.
func NewGORMTicketRepository(db *gorm.DB) *GORMTicketRepository {
	return &GORMTicketRepository{
		db:  db,
		now: time.Now,
	}
}

// WithClock returns a copy of the repository stamping times from now.
func (r *GORMTicketRepository) WithClock(now func() time.Time) *GORMTicketRepository {
	return &GORMTicketRepository{db: r.db, now: now}
}

func withComments(db *gorm.DB) *gorm.DB {
	return db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("comment_id")
	})
}

func normalizeTicket(t *models.Ticket) {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
}

func (r *GORMTicketRepository) find(query *gorm.DB) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	if err := withComments(query).Order("id").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	for i := range tickets {
		normalizeTicket(&tickets[i])
	}
	return tickets, nil
}

// GetAll retrieves all tickets with their comments.
func (r *GORMTicketRepository) GetAll() ([]models.Ticket, error) {
	return r.find(r.db)
}

// GetByOwner retrieves the tickets owned by owner.
func (r *GORMTicketRepository) GetByOwner(owner string) ([]models.Ticket, error) {
	return r.find(r.db.Where("owner = ?", owner))
}

func (r *GORMTicketRepository) get(tx *gorm.DB, id int) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := withComments(tx).First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}
	normalizeTicket(&ticket)
	return &ticket, nil
}

// GetByID retrieves a single ticket by its id.
func (r *GORMTicketRepository) GetByID(id int) (*models.Ticket, error) {
	return r.get(r.db, id)
}

// Create assigns the next id, stamps timestamps and inserts the ticket.
func (r *GORMTicketRepository) Create(ticket *models.Ticket) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxID int
		if err := tx.Model(&models.Ticket{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return fmt.Errorf("failed to compute next ticket id: %w", err)
		}
		applyTicketDefaults(ticket, maxID+1, r.now().UTC())
		if err := tx.Omit(clause.Associations).Create(ticket).Error; err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}
		return nil
	})
}

// Update applies the allow-listed fields to the ticket with the given id.
func (r *GORMTicketRepository) Update(id int, fields models.Fields) (*models.Ticket, error) {
	var updated *models.Ticket
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ticket, err := r.get(tx, id)
		if err != nil {
			return err
		}
		if err := applyTicketFields(ticket, fields, r.now().UTC()); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(ticket).Error; err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the ticket and its comments.
func (r *GORMTicketRepository) Delete(id int) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		res := tx.Delete(&models.Ticket{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete ticket: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// AddComment inserts a comment numbered within its ticket and refreshes the
// ticket's UpdatedAt.
func (r *GORMTicketRepository) AddComment(ticketID int, author, content string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Ticket{}).Where("id = ?", ticketID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to get ticket %d: %w", ticketID, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		var maxID int
		if err := tx.Model(&models.Comment{}).Where("ticket_id = ?", ticketID).Select("COALESCE(MAX(comment_id), 0)").Scan(&maxID).Error; err != nil {
			return fmt.Errorf("failed to compute next comment id: %w", err)
		}
		now := r.now().UTC()
		comment = models.Comment{
			TicketID:  ticketID,
			CommentID: maxID + 1,
			Author:    author,
			Content:   content,
			CreatedAt: now,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		if err := tx.Model(&models.Ticket{}).Where("id = ?", ticketID).UpdateColumn("updated_at", now).Error; err != nil {
			return fmt.Errorf("failed to touch ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
