package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// Pagination is the standard envelope for paginated admin listings.
type Pagination struct {
	Page  int `json:"page" example:"1"`
	Limit int `json:"limit" example:"50"`
	Total int `json:"total" example:"123"`
	Pages int `json:"pages" example:"3"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := (total + limit - 1) / limit
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
