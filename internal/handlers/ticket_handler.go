package handlers

import (
	"helpdesk/internal/apperrors"
	"helpdesk/internal/middleware"
	"helpdesk/internal/models"
	"helpdesk/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TicketHandler handles HTTP requests for tickets.
type TicketHandler struct {
	service  *services.TicketService
	validate *validator.Validate
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(service *services.TicketService) *TicketHandler {
	return &TicketHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the ticket routes behind requireUser.
func (h *TicketHandler) RegisterRoutes(router fiber.Router, requireUser fiber.Handler) {
	tickets := router.Group("/tickets", requireUser)
	tickets.Get("/", h.HandleGetTickets)
	tickets.Get("/:id", h.HandleGetTicket)
	tickets.Post("/", h.HandleCreateTicket)
	tickets.Put("/:id", h.HandleUpdateTicket)
	tickets.Delete("/:id", h.HandleDeleteTicket)
	tickets.Post("/:id/comments", h.HandleAddComment)
}

// CommentRequest represents the request body for a new comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

var errTicketNotFound = apperrors.NotFound("Ticket not found")

// ticketID parses the :id parameter. Anything that is not an integer
// cannot name a ticket.
func ticketID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, errTicketNotFound
	}
	return id, nil
}

// HandleGetTickets lists tickets, optionally only those of ?owner=.
func (h *TicketHandler) HandleGetTickets(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.Query("owner"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Tickets retrieved successfully",
		"tickets": tickets,
	})
}

// HandleGetTicket retrieves a single ticket by its ID.
func (h *TicketHandler) HandleGetTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": ticket})
}

// HandleCreateTicket creates a new ticket owned by the caller unless the
// body names an owner.
func (h *TicketHandler) HandleCreateTicket(c *fiber.Ctx) error {
	var fields models.Fields
	if err := c.BodyParser(&fields); err != nil {
		return invalidBody(err)
	}

	ticket, err := h.service.Create(fields, middleware.CurrentUsername(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Ticket created successfully",
		"ticket":  ticket,
	})
}

// HandleUpdateTicket applies a partial update to a ticket.
func (h *TicketHandler) HandleUpdateTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var fields models.Fields
	if err := c.BodyParser(&fields); err != nil {
		return invalidBody(err)
	}

	ticket, err := h.service.Update(id, fields, middleware.CurrentUsername(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Ticket updated successfully",
		"ticket":  ticket,
	})
}

// HandleDeleteTicket deletes a ticket.
func (h *TicketHandler) HandleDeleteTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(id, middleware.CurrentUsername(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Ticket deleted successfully"})
}

// HandleAddComment appends a comment by the caller to a ticket.
func (h *TicketHandler) HandleAddComment(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.Validation("Content is required")
	}

	comment, err := h.service.AddComment(id, middleware.CurrentUsername(c), req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment added successfully",
		"comment": comment,
	})
}
