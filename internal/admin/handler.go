package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mechamederoot1/projeto-unipass/internal/api"
	"github.com/mechamederoot1/projeto-unipass/internal/audit"
	"github.com/mechamederoot1/projeto-unipass/internal/auth"
	"github.com/mechamederoot1/projeto-unipass/internal/checkin"
	"github.com/mechamederoot1/projeto-unipass/internal/gym"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetDashboard godoc
// @Summary      Platform dashboard
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Dashboard
// @Router       /api/admin/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page"      default(1)
// @Param        limit   query     int     false  "Per page"  default(50)
// @Param        search  query     string  false  "Name or email substring"
// @Success      200     {object}  gin.H
// @Router       /api/admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	users, pagination, err := h.service.Users(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "pagination": pagination})
}

// ListGyms godoc
// @Summary      List gyms with usage stats
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page"      default(1)
// @Param        limit   query     int     false  "Per page"  default(50)
// @Param        search  query     string  false  "Name or address substring"
// @Success      200     {object}  gin.H
// @Router       /api/admin/gyms [get]
func (h *Handler) ListGyms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	gyms, pagination, err := h.service.Gyms(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list gyms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gyms": gyms, "pagination": pagination})
}

// ToggleUserStatus godoc
// @Summary      Activate or deactivate a user
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Router       /api/admin/users/{id}/status [patch]
func (h *Handler) ToggleUserStatus(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	active, err := h.service.ToggleUser(c.Request.Context(), actor, userID, c.ClientIP())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "new_status": active})
}

// ToggleGymStatus godoc
// @Summary      Activate or deactivate a gym
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        gymID  path      int  true  "Gym id"
// @Success      200    {object}  gin.H
// @Failure      404    {object}  gin.H
// @Router       /api/admin/gyms/{gymID}/status [patch]
func (h *Handler) ToggleGymStatus(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym id"})
		return
	}

	active, err := h.service.ToggleGym(c.Request.Context(), actor, gymID, c.ClientIP())
	if err != nil {
		if errors.Is(err, ErrGymNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gym status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gym_id": gymID, "new_status": active})
}

// GetAnalytics godoc
// @Summary      Platform analytics time series
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        days  query     int  false  "Period in days"  default(30)
// @Success      200   {object}  Analytics
// @Router       /api/admin/analytics/overview [get]
func (h *Handler) GetAnalytics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	analytics, err := h.service.Analytics(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analytics"})
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// GetAuditLogs godoc
// @Summary      Query the audit log
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        page     query     int     false  "Page"      default(1)
// @Param        limit    query     int     false  "Per page"  default(50)
// @Param        action   query     string  false  "Action filter"
// @Param        user_id  query     int     false  "Actor filter"
// @Success      200      {object}  gin.H
// @Router       /api/admin/audit-logs [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	params := audit.ListParams{
		Page:       page,
		Limit:      limit,
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			params.UserID = &id
		}
	}

	logs, pagination, err := h.service.AuditLogs(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "pagination": pagination})
}

// GetGymDashboard godoc
// @Summary      Gym-scoped dashboard
// @Tags         gym-admin
// @Security     BearerAuth
// @Produce      json
// @Param        gym_id  query     int  false  "Gym id (super admin only)"
// @Success      200     {object}  GymDashboard
// @Failure      400     {object}  gin.H
// @Failure      404     {object}  gin.H
// @Router       /api/gym-admin/dashboard [get]
func (h *Handler) GetGymDashboard(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	gymID, _ := strconv.Atoi(c.Query("gym_id"))

	dashboard, err := h.service.GymDashboard(c.Request.Context(), actor, gymID)
	if err != nil {
		h.gymScopedError(c, err, "Failed to load gym dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetActiveCheckins godoc
// @Summary      Currently open visits at the gym
// @Tags         gym-admin
// @Security     BearerAuth
// @Produce      json
// @Param        gym_id  query     int  false  "Gym id (super admin only)"
// @Success      200     {array}   checkin.ActiveEntry
// @Router       /api/gym-admin/active-checkins [get]
func (h *Handler) GetActiveCheckins(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	gymID, _ := strconv.Atoi(c.Query("gym_id"))

	entries, err := h.service.ActiveCheckins(c.Request.Context(), actor, gymID)
	if err != nil {
		h.gymScopedError(c, err, "Failed to list active check-ins")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ForceCheckout godoc
// @Summary      Force-close an open visit
// @Tags         gym-admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true   "Check-in id"
// @Param        request  body      ForceCheckoutRequest  false  "Reason"
// @Success      200      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /api/gym-admin/force-checkout/{id} [post]
func (h *Handler) ForceCheckout(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	checkinID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-in id"})
		return
	}

	var req ForceCheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			api.BindingError(c, err)
			return
		}
	}

	closed, err := h.service.ForceCheckout(c.Request.Context(), actor, checkinID, req.Reason, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, checkin.ErrCheckinNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Active check-in not found"})
		case errors.Is(err, checkin.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot manage check-ins for other gyms"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to force checkout"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User checked out successfully", "checkin_id": closed.ID})
}

// UpdateCapacity godoc
// @Summary      Update the gym's capacity
// @Tags         gym-admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      UpdateCapacityRequest  true  "New capacity"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /api/gym-admin/update-capacity [patch]
func (h *Handler) UpdateCapacity(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req UpdateCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	gymID := 0
	if req.GymID != nil {
		gymID = *req.GymID
	}

	if err := h.service.UpdateCapacity(c.Request.Context(), actor, gymID, req.NewCapacity, c.ClientIP()); err != nil {
		h.gymScopedError(c, err, "Failed to update capacity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gym capacity updated successfully", "new_capacity": req.NewCapacity})
}

// GetCheckinsReport godoc
// @Summary      Check-ins report for a date range
// @Tags         gym-admin
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  true   "Start date (YYYY-MM-DD)"
// @Param        end_date    query     string  true   "End date (YYYY-MM-DD)"
// @Param        gym_id      query     int     false  "Gym id (super admin only)"
// @Success      200         {object}  Report
// @Failure      400         {object}  gin.H
// @Router       /api/gym-admin/reports/checkins [get]
func (h *Handler) GetCheckinsReport(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	// Make the end date inclusive.
	end = end.Add(24*time.Hour - time.Nanosecond)

	gymID, _ := strconv.Atoi(c.Query("gym_id"))

	report, err := h.service.Report(c.Request.Context(), actor, gymID, start, end)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "End date must not be before start date"})
			return
		}
		h.gymScopedError(c, err, "Failed to build report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) gymScopedError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrGymRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "gym_id parameter required"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot manage this gym"})
	case errors.Is(err, gym.ErrGymNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found"})
	case errors.Is(err, ErrCapacityBelowOccupancy):
		c.JSON(http.StatusConflict, gin.H{"error": "New capacity is below the gym's current occupancy"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
