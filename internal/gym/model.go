package gym

import (
	"strings"
	"time"
)

type Gym struct {
	ID                int       `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Address           string    `db:"address" json:"address"`
	Phone             string    `db:"phone" json:"phone"`
	Latitude          float64   `db:"latitude" json:"latitude"`
	Longitude         float64   `db:"longitude" json:"longitude"`
	OpenHoursWeekdays string    `db:"open_hours_weekdays" json:"open_hours_weekdays"`
	OpenHoursWeekends string    `db:"open_hours_weekends" json:"open_hours_weekends"`
	Amenities         string    `db:"amenities" json:"-"`
	Description       string    `db:"description" json:"description"`
	MaxCapacity       int       `db:"max_capacity" json:"max_capacity"`
	CurrentOccupancy  int       `db:"current_occupancy" json:"current_occupancy"`
	Rating            float64   `db:"rating" json:"rating"`
	TotalReviews      int       `db:"total_reviews" json:"total_reviews"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// AmenitiesList splits the comma-separated amenities column.
func (g *Gym) AmenitiesList() []string {
	if g.Amenities == "" {
		return []string{}
	}
	parts := strings.Split(g.Amenities, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func (g *Gym) OccupancyPercentage() float64 {
	if g.MaxCapacity == 0 {
		return 0
	}
	return float64(g.CurrentOccupancy) / float64(g.MaxCapacity) * 100
}

// GymWithDistance is a listing entry, distance set only when the caller
// supplied coordinates.
type GymWithDistance struct {
	ID                  int      `json:"id"`
	Name                string   `json:"name"`
	Address             string   `json:"address"`
	Rating              float64  `json:"rating"`
	CurrentOccupancy    int      `json:"current_occupancy"`
	MaxCapacity         int      `json:"max_capacity"`
	OccupancyPercentage float64  `json:"occupancy_percentage"`
	Amenities           []string `json:"amenities"`
	DistanceKm          *float64 `json:"distance_km,omitempty"`
}

type CreateGymRequest struct {
	Name              string  `json:"name" binding:"required"`
	Address           string  `json:"address" binding:"required"`
	Phone             string  `json:"phone" binding:"required"`
	Latitude          float64 `json:"latitude" binding:"required"`
	Longitude         float64 `json:"longitude" binding:"required"`
	OpenHoursWeekdays string  `json:"open_hours_weekdays" binding:"required"`
	OpenHoursWeekends string  `json:"open_hours_weekends" binding:"required"`
	Amenities         string  `json:"amenities"`
	Description       string  `json:"description"`
	MaxCapacity       int     `json:"max_capacity" binding:"required,min=1"`
}

// UpdateGymRequest is a typed partial update: only non-nil fields are applied.
type UpdateGymRequest struct {
	Name              *string  `json:"name,omitempty"`
	Address           *string  `json:"address,omitempty"`
	Phone             *string  `json:"phone,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	OpenHoursWeekdays *string  `json:"open_hours_weekdays,omitempty"`
	OpenHoursWeekends *string  `json:"open_hours_weekends,omitempty"`
	Amenities         *string  `json:"amenities,omitempty"`
	Description       *string  `json:"description,omitempty"`
	MaxCapacity       *int     `json:"max_capacity,omitempty"`
}

// ListParams narrows a gym listing. Radius only applies when coordinates are
// present.
type ListParams struct {
	Query    string
	Lat      *float64
	Lon      *float64
	RadiusKm float64
	Limit    int
}
