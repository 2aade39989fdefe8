package gamification

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

// GetPoints godoc
// @Summary      Get my points and level
// @Tags         gamification
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Router       /api/gamification/points [get]
func (h *Handler) GetPoints(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	points, err := h.service.Points(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_points":         points.TotalPoints,
		"level":                points.Level,
		"current_streak":       points.CurrentStreak,
		"longest_streak":       points.LongestStreak,
		"points_to_next_level": points.PointsToNextLevel(),
		"last_checkin_date":    points.LastCheckinDate,
	})
}

// GetAchievements godoc
// @Summary      List achievements with my progress
// @Tags         gamification
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Router       /api/gamification/achievements [get]
func (h *Handler) GetAchievements(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	achievements, err := h.service.Achievements(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load achievements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}

// GetLeaderboard godoc
// @Summary      Points leaderboard
// @Tags         gamification
// @Security     BearerAuth
// @Produce      json
// @Param        period  query     string  false  "all_time, monthly or weekly"  default(all_time)
// @Param        limit   query     int     false  "Max entries"                  default(50)
// @Success      200     {object}  Leaderboard
// @Router       /api/gamification/leaderboard [get]
func (h *Handler) GetLeaderboard(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	period := c.DefaultQuery("period", PeriodAllTime)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	board, err := h.service.Leaderboard(c.Request.Context(), userID, period, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}

	c.JSON(http.StatusOK, board)
}

type awardPointsRequest struct {
	CheckinID int `json:"checkin_id" binding:"required"`
}

// AwardCheckinPoints godoc
// @Summary      Award points for one of my check-ins
// @Tags         gamification
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      awardPointsRequest  true  "Check-in to score"
// @Success      200      {object}  AwardResult
// @Failure      404      {object}  gin.H
// @Router       /api/gamification/checkin-points [post]
func (h *Handler) AwardCheckinPoints(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req awardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	result, err := h.service.AwardForCheckin(c.Request.Context(), userID, req.CheckinID)
	if err != nil {
		if errors.Is(err, ErrCheckinNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Check-in not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to award points"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPointHistory godoc
// @Summary      My point history
// @Tags         gamification
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query     int  false  "Max entries"  default(50)
// @Success      200    {object}  gin.H
// @Router       /api/gamification/point-history [get]
func (h *Handler) GetPointHistory(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	history, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load point history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
