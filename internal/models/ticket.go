package models

import "time"

// Ticket statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
)

// Ticket priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Comment is a note appended to a ticket. CommentID is unique within its
// parent ticket only.
type Comment struct {
	RowID     uint      `json:"-" gorm:"primaryKey"`
	TicketID  int       `json:"-" gorm:"index"`
	CommentID int       `json:"commentId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ticket represents a helpdesk ticket.
type Ticket struct {
	ID          int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	TicketName  string    `json:"ticketName"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
	Deadline    Deadline  `json:"deadline"`
	Owner       *string   `json:"owner" gorm:"index"`
	Customer    *string   `json:"customer"`
	Tags        []string  `json:"tags" gorm:"serializer:json"`
	Comments    []Comment `json:"comments" gorm:"foreignKey:TicketID;references:ID;constraint:OnDelete:CASCADE"`
}
