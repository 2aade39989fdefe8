package checkin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mechamederoot1/projeto-unipass/internal/api"
	"github.com/mechamederoot1/projeto-unipass/internal/auth"
	"github.com/mechamederoot1/projeto-unipass/internal/subscription"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateCheckIn godoc
// @Summary      Check in to a gym
// @Description  Opens a visit when the gym is active, has capacity, the user
// @Description  has no other open visit and their plan allows it.
// @Tags         checkins
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CheckInRequest  true  "Gym to check in to"
// @Success      201      {object}  CheckIn
// @Failure      400      {object}  gin.H
// @Failure      402      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /api/checkins [post]
func (h *Handler) CreateCheckIn(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	checkin, err := h.service.CheckIn(c.Request.Context(), userID, req.GymID)
	if err != nil {
		switch {
		case errors.Is(err, ErrGymNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found or inactive"})
		case errors.Is(err, ErrActiveCheckinExists):
			c.JSON(http.StatusConflict, gin.H{"error": "You already have an active check-in. Please check out first."})
		case errors.Is(err, ErrGymAtCapacity):
			c.JSON(http.StatusConflict, gin.H{"error": "Gym is at full capacity"})
		case errors.Is(err, subscription.ErrNoActiveSubscription):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "An active subscription is required to check in"})
		case errors.Is(err, subscription.ErrQuotaExceeded):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Monthly check-in quota exceeded"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check in"})
		}
		return
	}

	c.JSON(http.StatusCreated, checkin)
}

// Checkout godoc
// @Summary      Check out
// @Tags         checkins
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CheckOutRequest  true  "Check-in to close"
// @Success      200      {object}  CheckIn
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /api/checkins/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	checkin, err := h.service.CheckOut(c.Request.Context(), userID, req.CheckinID)
	if err != nil {
		if errors.Is(err, ErrCheckinNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Active check-in not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check out"})
		return
	}

	c.JSON(http.StatusOK, checkin)
}

// GetActive godoc
// @Summary      Get the current open check-in
// @Tags         checkins
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  CheckIn
// @Failure      404  {object}  gin.H
// @Router       /api/checkins/active [get]
func (h *Handler) GetActive(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	checkin, err := h.service.GetActive(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active check-in found"})
		return
	}

	c.JSON(http.StatusOK, checkin)
}

// History godoc
// @Summary      List the user's check-in history
// @Tags         checkins
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query     int  false  "Max results"
// @Success      200    {array}   CheckInWithGym
// @Failure      500    {object}  gin.H
// @Router       /api/checkins [get]
func (h *Handler) History(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	checkins, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch check-ins"})
		return
	}

	c.JSON(http.StatusOK, checkins)
}
