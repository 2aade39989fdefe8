package review

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

// CreateReview godoc
// @Summary      Review a gym
// @Description  One review per user per gym. Rating is 1 to 5 stars.
// @Tags         reviews
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        gymID    path      int            true  "Gym id"
// @Param        request  body      CreateRequest  true  "Review"
// @Success      201      {object}  Review
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /api/gyms/{gymID}/reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym id"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	review, err := h.service.Create(c.Request.Context(), userID, gymID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrReviewExists):
			c.JSON(http.StatusConflict, gin.H{"error": "You already reviewed this gym"})
		case errors.Is(err, ErrGymNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ListReviews godoc
// @Summary      List a gym's reviews
// @Tags         reviews
// @Produce      json
// @Param        gymID  path      int  true   "Gym id"
// @Param        limit  query     int  false  "Max entries"  default(50)
// @Success      200    {object}  gin.H
// @Router       /api/gyms/{gymID}/reviews [get]
func (h *Handler) ListReviews(c *gin.Context) {
	gymID, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	reviews, err := h.service.ListByGym(c.Request.Context(), gymID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
