package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gutendexer/internal/app/books/entity"
	"gutendexer/internal/app/books/infrastructure"
	"gutendexer/internal/app/books/repository"
	"gutendexer/pkg/logger"
	"gutendexer/pkg/metrics"
)

// BookService реализует слияние данных каталога Gutendex и статистики отзывов
// Все внешние вызовы внутри одного запроса выполняются строго последовательно
type BookService struct {
	reviewRepo repository.ReviewRepository
	catalog    infrastructure.CatalogClient
	publisher  infrastructure.MessagePublisher
}

// NewBookService создает новый сервис книг с внедрением зависимостей
func NewBookService(
	reviewRepo repository.ReviewRepository,
	catalog infrastructure.CatalogClient,
	publisher infrastructure.MessagePublisher,
) *BookService {
	return &BookService{
		reviewRepo: reviewRepo,
		catalog:    catalog,
		publisher:  publisher,
	}
}

// GetBookInfo собирает карточку книги: запись каталога плюс статистика отзывов
// Отсутствие отзывов - обычное состояние, ошибка каталога фатальна для запроса
func (s *BookService) GetBookInfo(ctx context.Context, bookID int) (*entity.BookView, error) {
	aggregate, err := s.reviewRepo.AggregateBookReviews(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	catalogEntry, err := s.catalog.FetchByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	metrics.BookLookups.Inc()

	return mergeBookView(catalogEntry, aggregate), nil
}

// GetMonthlyAverages считает средние оценки книги по календарным месяцам
// Каталог не участвует: используется только хранилище отзывов
func (s *BookService) GetMonthlyAverages(ctx context.Context, bookID int) (*entity.BookAverageMonthlyRating, error) {
	averages, err := s.reviewRepo.AggregateMonthlyAverages(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly averages: %w", err)
	}

	if averages == nil {
		averages = []entity.MonthlyAverage{}
	}

	return &entity.BookAverageMonthlyRating{
		BookID:          bookID,
		MonthlyAverages: averages,
	}, nil
}

// GetTopBooks возвращает не более amount книг с лучшей средней оценкой,
// обогащенных данными каталога, в порядке убывания оценки.
// Любой сбой обогащения проваливает весь запрос: частичный список не возвращается
func (s *BookService) GetTopBooks(ctx context.Context, amount int) ([]entity.BookView, error) {
	if amount < 1 {
		return nil, ErrInvalidAmount
	}

	aggregates, err := s.reviewRepo.AggregateTopBooks(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top books: %w", err)
	}

	views := make([]entity.BookView, 0, len(aggregates))
	for _, aggregate := range aggregates {
		catalogEntry, err := s.catalog.FetchByPath(ctx, aggregate.BookID)
		if err != nil {
			return nil, err
		}

		views = append(views, *mergeBookView(catalogEntry, &aggregate))
	}

	return views, nil
}

// SearchByTitle обходит все страницы поисковой выдачи каталога
// и фильтрует результат по вхождению всех слов фразы в название.
// Страницы запрашиваются последовательно, глубина обхода не ограничена
func (s *BookService) SearchByTitle(ctx context.Context, title string) ([]entity.CatalogEntry, error) {
	matched := []entity.CatalogEntry{}

	pageURL := s.catalog.SearchURL(title)
	for {
		entries, next, err := s.catalog.FetchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		metrics.SearchPagesTraversed.Inc()

		for _, catalogEntry := range entries {
			if TitleMatches(catalogEntry.Title, title) {
				matched = append(matched, catalogEntry)
			}
		}

		if next == nil {
			return matched, nil
		}
		pageURL = *next
	}
}

// SearchByTitlePaginated возвращает одну страницу поисковой выдачи каталога
// без фильтрации по названию: выдача отдается как есть ради корректной
// постраничной арифметики.
//
// totalPages вычисляется из размера текущей страницы в предположении, что
// все страницы одинаковы, поэтому значение бывает завышено, когда последняя
// страница короче. Известная неточность, сохраняется намеренно
func (s *BookService) SearchByTitlePaginated(ctx context.Context, title string, page int) (*entity.PaginatedBookList, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	searchPage, err := s.catalog.FetchSearchPage(ctx, title, page)
	if err != nil {
		return nil, err
	}

	var nextPage, previousPage *int
	if searchPage.Next != nil {
		n := page + 1
		nextPage = &n
	}
	if searchPage.Previous != nil {
		p := page - 1
		previousPage = &p
	}

	totalPages := page
	if searchPage.Next != nil && len(searchPage.Results) > 0 {
		totalPages = int(math.Ceil(float64(searchPage.Count) / float64(len(searchPage.Results))))
	}

	books := searchPage.Results
	if books == nil {
		books = []entity.CatalogEntry{}
	}

	return &entity.PaginatedBookList{
		TotalCount:   searchPage.Count,
		Page:         page,
		TotalPages:   totalPages,
		NextPage:     nextPage,
		PreviousPage: previousPage,
		Books:        books,
	}, nil
}

// AddReview создает новый отзыв о книге
// Диапазон оценки проверяется до записи в хранилище.
// Существование книги в каталоге не проверяется
func (s *BookService) AddReview(ctx context.Context, bookID int, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if req.Rating == nil || *req.Rating < 0 || *req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	review := &entity.Review{
		BookID:    bookID,
		Rating:    *req.Rating,
		Review:    req.Review,
		CreatedAt: time.Now(),
	}

	if err := s.reviewRepo.Insert(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to add review: %w", err)
	}

	metrics.ReviewsCreated.Inc()

	// Событие публикуется после успешной записи, сбой Kafka не фатален:
	// отзыв уже сохранен
	event := entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID.Hex(),
		BookID:    review.BookID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	if err := s.publishReviewEvent(ctx, event); err != nil {
		logger.Warn().Err(err).Int("book_id", bookID).Msg("Failed to publish review created event")
	}

	return review, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
func (s *BookService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	if err := s.publisher.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

// mergeBookView накладывает агрегат отзывов на запись каталога
func mergeBookView(catalogEntry *entity.CatalogEntry, aggregate *entity.ReviewAggregate) *entity.BookView {
	view := &entity.BookView{CatalogEntry: *catalogEntry}

	if aggregate != nil {
		rating := aggregate.Rating
		view.Rating = &rating
		view.Reviews = aggregate.Reviews
	}

	return view
}
