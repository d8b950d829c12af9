package service

import (
	"errors"
)

var (
	// Ошибки валидации входных данных, в handlers отображаются в 400
	ErrInvalidRating = errors.New("rating must be between 0 and 5")
	ErrInvalidPage   = errors.New("page must be greater than or equal to 1")
	ErrInvalidAmount = errors.New("amount must be greater than or equal to 1")
)
