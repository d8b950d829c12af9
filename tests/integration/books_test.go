//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"gutendexer/internal/app/books/entity"
	"gutendexer/internal/app/books/handler"
	gutendexhttp "gutendexer/internal/app/books/infrastructure/http"
	"gutendexer/internal/app/books/repository"
	"gutendexer/internal/app/books/service"
	"gutendexer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MockKafkaProducer struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockKafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKafkaProducer) Close() error { return nil }

// BooksIntegrationTestSuite гоняет полный стек против настоящей MongoDB
// Каталог Gutendex подменяется httptest сервером
type BooksIntegrationTestSuite struct {
	suite.Suite
	client        *mongo.Client
	db            *mongo.Database
	router        *gin.Engine
	catalogServer *httptest.Server
	kafkaProducer *MockKafkaProducer
}

func TestBooksIntegrationSuite(t *testing.T) {
	suite.Run(t, new(BooksIntegrationTestSuite))
}

func (s *BooksIntegrationTestSuite) SetupSuite() {
	logger.InitWithWriter("gutendexer-test", "error", io.Discard)

	mongoURI := getEnv("TEST_MONGODB_URI", "mongodb://localhost:27017")
	dbName := getEnv("TEST_MONGODB_DATABASE", "gutendexer_test_db")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	s.client, err = mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	s.Require().NoError(err)

	s.db = s.client.Database(dbName)

	s.catalogServer = httptest.NewServer(http.HandlerFunc(s.serveCatalog))

	reviewRepo := repository.NewReviewRepository(s.db)
	catalogClient := gutendexhttp.NewGutendexClient(s.catalogServer.URL, 10, 0)
	s.kafkaProducer = &MockKafkaProducer{Messages: make([][]byte, 0)}
	bookService := service.NewBookService(reviewRepo, catalogClient, s.kafkaProducer)

	gin.SetMode(gin.TestMode)
	bookHandler := handler.NewBookHandler(bookService)
	s.router = handler.SetupRoutes(bookHandler)
}

func (s *BooksIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	s.db.Collection("reviews").Drop(ctx)
	s.kafkaProducer.Messages = make([][]byte, 0)
	s.kafkaProducer.ExpectedCalls = nil
	s.kafkaProducer.Calls = nil
}

func (s *BooksIntegrationTestSuite) TearDownSuite() {
	if s.catalogServer != nil {
		s.catalogServer.Close()
	}
	if s.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.client.Disconnect(ctx)
	}
}

// serveCatalog эмулирует Gutendex: запросы по ids, по пути /<id> и поиск
func (s *BooksIntegrationTestSuite) serveCatalog(w http.ResponseWriter, r *http.Request) {
	writeEntry := func(id int) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    1,
			"next":     nil,
			"previous": nil,
			"results": []entity.CatalogEntry{{
				ID:            id,
				Title:         "test " + strconv.Itoa(id),
				Authors:       []entity.Author{{Name: "author"}},
				Languages:     []string{"en"},
				DownloadCount: 10,
			}},
		})
	}

	if ids := r.URL.Query().Get("ids"); ids != "" {
		id, _ := strconv.Atoi(ids)
		writeEntry(id)
		return
	}

	if search := r.URL.Query().Get("search"); search != "" {
		s.serveSearch(w, r, search)
		return
	}

	if id, err := strconv.Atoi(r.URL.Path[1:]); err == nil {
		writeEntry(id)
		return
	}

	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."})
}

// serveSearch отдает три книги страницами по две: страница 1 содержит
// подходящую и постороннюю запись, страница 2 - еще одну подходящую
func (s *BooksIntegrationTestSuite) serveSearch(w http.ResponseWriter, r *http.Request, search string) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, _ = strconv.Atoi(raw)
	}

	makeEntry := func(id int, title string) entity.CatalogEntry {
		return entity.CatalogEntry{ID: id, Title: title, Languages: []string{"en"}}
	}

	switch page {
	case 1:
		next := fmt.Sprintf("%s/?search=%s&page=2", s.catalogServer.URL, search)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    3,
			"next":     next,
			"previous": nil,
			"results": []entity.CatalogEntry{
				makeEntry(1, "Moby Dick"),
				makeEntry(2, "Unrelated author match"),
			},
		})
	default:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":    3,
			"next":     nil,
			"previous": fmt.Sprintf("%s/?search=%s", s.catalogServer.URL, search),
			"results": []entity.CatalogEntry{
				makeEntry(3, "Moby Dick; Or, The Whale"),
			},
		})
	}
}

func (s *BooksIntegrationTestSuite) seedReviews(docs []entity.Review) {
	ctx := context.Background()
	payload := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		payload = append(payload, doc)
	}
	_, err := s.db.Collection("reviews").InsertMany(ctx, payload)
	s.Require().NoError(err)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *BooksIntegrationTestSuite) TestGetBook_MergesReviewStats() {
	s.seedReviews([]entity.Review{
		{BookID: 1, Rating: 0, Review: "Review", CreatedAt: date(2022, time.October, 1)},
		{BookID: 1, Rating: 5, Review: "Review", CreatedAt: date(2022, time.October, 2)},
	})

	req, _ := http.NewRequest(http.MethodGet, "/books/1", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var book entity.BookView
	s.NoError(json.Unmarshal(w.Body.Bytes(), &book))
	s.Equal(1, book.ID)
	s.Equal("test 1", book.Title)
	s.Require().NotNil(book.Rating)
	s.Equal(2.5, *book.Rating)
	s.Len(book.Reviews, 2)
}

func (s *BooksIntegrationTestSuite) TestGetBook_NoReviews() {
	req, _ := http.NewRequest(http.MethodGet, "/books/7", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.NotContains(w.Body.String(), `"rating"`)
}

func (s *BooksIntegrationTestSuite) TestMonthlyAverages_GroupedByYearMonth() {
	s.seedReviews([]entity.Review{
		{BookID: 3, Rating: 1, Review: "Review", CreatedAt: date(2022, time.October, 2)},
		{BookID: 3, Rating: 3, Review: "Review", CreatedAt: date(2022, time.October, 15)},
		{BookID: 3, Rating: 2, Review: "Review", CreatedAt: date(2022, time.November, 2)},
		// Октябрь другого года не должен слиться с октябрем 2022
		{BookID: 3, Rating: 5, Review: "Review", CreatedAt: date(2021, time.October, 2)},
	})

	req, _ := http.NewRequest(http.MethodGet, "/books/3/reviews/monthly", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var result entity.BookAverageMonthlyRating
	s.NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.Equal(3, result.BookID)
	s.Require().Len(result.MonthlyAverages, 3)
	s.Equal("2021-10", result.MonthlyAverages[0].Month)
	s.Equal(5.0, result.MonthlyAverages[0].Rating)
	s.Equal("2022-10", result.MonthlyAverages[1].Month)
	s.Equal(2.0, result.MonthlyAverages[1].Rating)
	s.Equal("2022-11", result.MonthlyAverages[2].Month)
	s.Equal(2.0, result.MonthlyAverages[2].Rating)
}

func (s *BooksIntegrationTestSuite) TestTopBooks_DescendingOrder() {
	s.seedReviews([]entity.Review{
		{BookID: 1, Rating: 0, Review: "Review", CreatedAt: date(2022, time.October, 1)},
		{BookID: 1, Rating: 5, Review: "Review", CreatedAt: date(2022, time.October, 2)},
		{BookID: 2, Rating: 3, Review: "Review", CreatedAt: date(2022, time.October, 2)},
		{BookID: 3, Rating: 2, Review: "Review", CreatedAt: date(2022, time.October, 2)},
		{BookID: 10, Rating: 5, Review: "Review", CreatedAt: date(2022, time.October, 2)},
	})

	req, _ := http.NewRequest(http.MethodGet, "/books/top", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var books []entity.BookView
	s.NoError(json.Unmarshal(w.Body.Bytes(), &books))
	s.Require().Len(books, 4)
	s.Equal(10, books[0].ID)
	s.Equal(2, books[1].ID)
	s.Equal(1, books[2].ID)
	s.Equal(3, books[3].ID)

	req, _ = http.NewRequest(http.MethodGet, "/books/top?amount=2", nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.NoError(json.Unmarshal(w.Body.Bytes(), &books))
	s.Require().Len(books, 2)
	s.Equal(10, books[0].ID)
	s.Equal(2, books[1].ID)
}

func (s *BooksIntegrationTestSuite) TestAddReview_PersistsAndAggregates() {
	s.kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{"rating": 4, "review": "A review"})
	req, _ := http.NewRequest(http.MethodPost, "/books/5/review", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusCreated, w.Code)
	s.Len(s.kafkaProducer.Messages, 1)

	req, _ = http.NewRequest(http.MethodGet, "/books/5", nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var book entity.BookView
	s.NoError(json.Unmarshal(w.Body.Bytes(), &book))
	s.Require().NotNil(book.Rating)
	s.Equal(4.0, *book.Rating)
	s.Len(book.Reviews, 1)
}

func (s *BooksIntegrationTestSuite) TestAddReview_RatingOutOfRange() {
	body, _ := json.Marshal(map[string]interface{}{"rating": 5.5})
	req, _ := http.NewRequest(http.MethodPost, "/books/5/review", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)

	count, err := s.db.Collection("reviews").CountDocuments(context.Background(), bson.D{})
	s.NoError(err)
	s.Zero(count)
}

func (s *BooksIntegrationTestSuite) TestSearchByTitle_TraversesAndFilters() {
	req, _ := http.NewRequest(http.MethodGet, "/books/search?title=Moby", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var response entity.SearchResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Equal(2, response.Total)
	s.Equal(1, response.Books[0].ID)
	s.Equal(3, response.Books[1].ID)
}

func (s *BooksIntegrationTestSuite) TestSearchPaginated_Arithmetic() {
	req, _ := http.NewRequest(http.MethodGet, "/books/search/paginated?title=Moby&page=1", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var list entity.PaginatedBookList
	s.NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Equal(3, list.TotalCount)
	s.Equal(2, list.TotalPages)
	s.Require().NotNil(list.NextPage)
	s.Equal(2, *list.NextPage)
	s.Nil(list.PreviousPage)
	s.Len(list.Books, 2)

	req, _ = http.NewRequest(http.MethodGet, "/books/search/paginated?title=Moby&page=2", nil)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Equal(2, list.TotalPages)
	s.Nil(list.NextPage)
	s.Require().NotNil(list.PreviousPage)
	s.Equal(1, *list.PreviousPage)
	s.Len(list.Books, 1)
}

func (s *BooksIntegrationTestSuite) TestHealthCheck() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
