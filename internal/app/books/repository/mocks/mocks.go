package mocks

import (
	"context"

	"gutendexer/internal/app/books/entity"

	"github.com/stretchr/testify/mock"
)

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Insert(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) AggregateBookReviews(ctx context.Context, bookID int) (*entity.ReviewAggregate, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewAggregate), args.Error(1)
}

func (m *MockReviewRepository) AggregateMonthlyAverages(ctx context.Context, bookID int) ([]entity.MonthlyAverage, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MonthlyAverage), args.Error(1)
}

func (m *MockReviewRepository) AggregateTopBooks(ctx context.Context, amount int) ([]entity.ReviewAggregate, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewAggregate), args.Error(1)
}

// MockCatalogClient мок для CatalogClient
type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) FetchByID(ctx context.Context, bookID int) (*entity.CatalogEntry, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CatalogEntry), args.Error(1)
}

func (m *MockCatalogClient) FetchByPath(ctx context.Context, bookID int) (*entity.CatalogEntry, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CatalogEntry), args.Error(1)
}

func (m *MockCatalogClient) FetchPage(ctx context.Context, pageURL string) ([]entity.CatalogEntry, *string, error) {
	args := m.Called(ctx, pageURL)
	var entries []entity.CatalogEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]entity.CatalogEntry)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return entries, next, args.Error(2)
}

func (m *MockCatalogClient) FetchSearchPage(ctx context.Context, title string, page int) (*entity.SearchPage, error) {
	args := m.Called(ctx, title, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SearchPage), args.Error(1)
}

func (m *MockCatalogClient) SearchURL(title string) string {
	args := m.Called(title)
	return args.String(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
