package support

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mechamederoot1/projeto-unipass/internal/api"
	"github.com/mechamederoot1/projeto-unipass/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateTicket godoc
// @Summary      Open a support ticket
// @Tags         support
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "Ticket"
// @Success      201      {object}  Ticket
// @Failure      400      {object}  gin.H
// @Router       /api/support/tickets [post]
func (h *Handler) CreateTicket(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	ticket, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// MyTickets godoc
// @Summary      List my support tickets
// @Tags         support
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Router       /api/support/tickets [get]
func (h *Handler) MyTickets(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tickets, err := h.service.MyTickets(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tickets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// ListTickets godoc
// @Summary      List tickets by status
// @Tags         support
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "open, in_progress, waiting_user or closed"  default(open)
// @Param        limit   query     int     false  "Max entries"                                default(50)
// @Success      200     {object}  gin.H
// @Failure      400     {object}  gin.H
// @Router       /api/admin/support/tickets [get]
func (h *Handler) ListTickets(c *gin.Context) {
	status := c.DefaultQuery("status", StatusOpen)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	tickets, err := h.service.ListByStatus(c.Request.Context(), status, limit)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket status"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tickets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// ResolveTicket godoc
// @Summary      Resolve a ticket
// @Tags         support
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Ticket id"
// @Param        request  body      ResolveRequest  true  "Resolution"
// @Success      200      {object}  Ticket
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /api/admin/support/tickets/{id}/resolve [post]
func (h *Handler) ResolveTicket(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ticketID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	ticket, err := h.service.Resolve(c.Request.Context(), actor, ticketID, req.Resolution, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		case errors.Is(err, ErrTicketClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "Ticket already closed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve ticket"})
		}
		return
	}

	c.JSON(http.StatusOK, ticket)
}
