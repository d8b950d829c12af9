package repository

import (
	"context"

	"gutendexer/internal/app/books/entity"
)

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Insert(ctx context.Context, review *entity.Review) error
	AggregateBookReviews(ctx context.Context, bookID int) (*entity.ReviewAggregate, error)
	AggregateMonthlyAverages(ctx context.Context, bookID int) ([]entity.MonthlyAverage, error)
	AggregateTopBooks(ctx context.Context, amount int) ([]entity.ReviewAggregate, error)
}
