package gym

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mechamederoot1/projeto-unipass/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func parseCoords(c *gin.Context) (*float64, *float64, float64, bool) {
	var lat, lon *float64
	radius := 0.0

	if latStr := c.Query("lat"); latStr != "" {
		v, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, nil, 0, false
		}
		lat = &v
	}
	if lonStr := c.Query("lon"); lonStr != "" {
		v, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return nil, nil, 0, false
		}
		lon = &v
	}
	if radiusStr := c.Query("radius"); radiusStr != "" {
		v, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || v < 0 {
			return nil, nil, 0, false
		}
		radius = v
	}

	// lat and lon only count as a location together
	if (lat == nil) != (lon == nil) {
		return nil, nil, 0, false
	}

	return lat, lon, radius, true
}

// ListGyms godoc
// @Summary      List gyms
// @Description  Lists active gyms, optionally filtered by proximity.
// @Tags         gyms
// @Produce      json
// @Param        lat     query     number  false  "Latitude"
// @Param        lon     query     number  false  "Longitude"
// @Param        radius  query     number  false  "Radius in km (default 10)"
// @Param        limit   query     int     false  "Max results"
// @Success      200     {array}   GymWithDistance
// @Failure      400     {object}  gin.H
// @Failure      500     {object}  gin.H
// @Router       /api/gyms [get]
func (h *Handler) ListGyms(c *gin.Context) {
	lat, lon, radius, ok := parseCoords(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	gyms, err := h.service.List(c.Request.Context(), ListParams{
		Lat: lat, Lon: lon, RadiusKm: radius, Limit: limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gyms"})
		return
	}

	c.JSON(http.StatusOK, gyms)
}

// SearchGyms godoc
// @Summary      Search gyms
// @Description  Case-insensitive substring search on name and address.
// @Tags         gyms
// @Produce      json
// @Param        q      query     string  true   "Search query"
// @Param        lat    query     number  false  "Latitude"
// @Param        lon    query     number  false  "Longitude"
// @Param        limit  query     int     false  "Max results"
// @Success      200    {array}   GymWithDistance
// @Failure      400    {object}  gin.H
// @Failure      500    {object}  gin.H
// @Router       /api/gyms/search [get]
func (h *Handler) SearchGyms(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter required"})
		return
	}

	lat, lon, radius, ok := parseCoords(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	gyms, err := h.service.Search(c.Request.Context(), ListParams{
		Query: q, Lat: lat, Lon: lon, RadiusKm: radius, Limit: limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search gyms"})
		return
	}

	c.JSON(http.StatusOK, gyms)
}

// GetGym godoc
// @Summary      Get gym
// @Description  Returns a single active gym by id.
// @Tags         gyms
// @Produce      json
// @Param        gymID  path      int  true  "Gym ID"
// @Success      200    {object}  Gym
// @Failure      400    {object}  gin.H
// @Failure      404    {object}  gin.H
// @Router       /api/gyms/{gymID} [get]
func (h *Handler) GetGym(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym ID"})
		return
	}

	gym, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found"})
		return
	}

	c.JSON(http.StatusOK, gym)
}

// CreateGym godoc
// @Summary      Create gym
// @Description  Creates a new gym. Super admin only.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateGymRequest  true  "Gym data"
// @Success      201      {object}  Gym
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /api/admin/gyms [post]
func (h *Handler) CreateGym(c *gin.Context) {
	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	gym, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create gym"})
		return
	}

	c.JSON(http.StatusCreated, gym)
}

// UpdateGym godoc
// @Summary      Update gym
// @Description  Applies a partial update; only provided fields change. Super admin only.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        gymID    path      int               true  "Gym ID"
// @Param        request  body      UpdateGymRequest  true  "Fields to update"
// @Success      200      {object}  Gym
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /api/admin/gyms/{gymID} [patch]
func (h *Handler) UpdateGym(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("gymID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gym ID"})
		return
	}

	var req UpdateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindingError(c, err)
		return
	}

	gym, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrGymNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gym not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gym"})
		return
	}

	c.JSON(http.StatusOK, gym)
}
