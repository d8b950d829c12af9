package entity

// CreateReviewRequest - запрос на создание отзыва
// Rating - указатель, чтобы значение 0 проходило проверку required
type CreateReviewRequest struct {
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=5"`
	Review string   `json:"review,omitempty" validate:"omitempty,max=5000"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SearchResponse - ответ полнотекстового поиска по названию
type SearchResponse struct {
	Books []CatalogEntry `json:"books"`
	Total int            `json:"total"`
}
