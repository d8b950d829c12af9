package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gutendexer/internal/app/books/entity"
	"gutendexer/pkg/logger"
	"gutendexer/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serviceName = "gutendexer"

var (
	// ErrStorageUnavailable - хранилище отзывов недоступно
	// Обрабатывается в service layer через errors.Is
	ErrStorageUnavailable = errors.New("review storage unavailable")
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов
// Автоматически создает индекс по bookId для быстрой выборки агрегаций
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "bookId", Value: 1},
		},
		Options: options.Index().SetName("bookId_idx"),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create index on bookId")
	}

	return &reviewRepository{
		collection: collection,
	}
}

// Insert сохраняет новый отзыв в MongoDB
// Валидация диапазона оценки выполняется в service layer до вызова
func (r *reviewRepository) Insert(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "reviews")
	defer timer.ObserveDuration()

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("%w: failed to insert review: %v", ErrStorageUnavailable, err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// AggregateBookReviews выполняет агрегацию статистики отзывов по одной книге.
// Отсутствие отзывов - не ошибка: возвращается nil
func (r *reviewRepository) AggregateBookReviews(ctx context.Context, bookID int) (*entity.ReviewAggregate, error) {
	var aggregates []entity.ReviewAggregate
	if err := r.aggregate(ctx, BookReviewsPipeline(bookID), &aggregates); err != nil {
		return nil, err
	}

	if len(aggregates) == 0 {
		return nil, nil
	}

	return &aggregates[0], nil
}

// AggregateMonthlyAverages считает средние оценки книги по месяцам
func (r *reviewRepository) AggregateMonthlyAverages(ctx context.Context, bookID int) ([]entity.MonthlyAverage, error) {
	var averages []entity.MonthlyAverage
	if err := r.aggregate(ctx, MonthlyAveragesPipeline(bookID), &averages); err != nil {
		return nil, err
	}

	return averages, nil
}

// AggregateTopBooks возвращает не более amount книг с лучшей средней оценкой,
// отсортированных по убыванию
func (r *reviewRepository) AggregateTopBooks(ctx context.Context, amount int) ([]entity.ReviewAggregate, error) {
	var aggregates []entity.ReviewAggregate
	if err := r.aggregate(ctx, TopBooksPipeline(amount), &aggregates); err != nil {
		return nil, err
	}

	return aggregates, nil
}

// aggregate выполняет произвольный pipeline над коллекцией отзывов
// и декодирует весь результат в out
func (r *reviewRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpAggregate, "reviews")
	defer timer.ObserveDuration()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpAggregate)
		return fmt.Errorf("%w: failed to run aggregation: %v", ErrStorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpAggregate)
		return fmt.Errorf("%w: failed to decode aggregation result: %v", ErrStorageUnavailable, err)
	}

	return nil
}
