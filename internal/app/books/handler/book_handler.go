package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"gutendexer/internal/app/books/entity"
	"gutendexer/internal/app/books/infrastructure"
	"gutendexer/internal/app/books/repository"
	"gutendexer/internal/app/books/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const defaultTopAmount = 10

type BookServiceInterface interface {
	GetBookInfo(ctx context.Context, bookID int) (*entity.BookView, error)
	GetMonthlyAverages(ctx context.Context, bookID int) (*entity.BookAverageMonthlyRating, error)
	GetTopBooks(ctx context.Context, amount int) ([]entity.BookView, error)
	SearchByTitle(ctx context.Context, title string) ([]entity.CatalogEntry, error)
	SearchByTitlePaginated(ctx context.Context, title string, page int) (*entity.PaginatedBookList, error)
	AddReview(ctx context.Context, bookID int, req *entity.CreateReviewRequest) (*entity.Review, error)
}

type BookHandler struct {
	bookService BookServiceInterface
	validator   *validator.Validate
}

func NewBookHandler(bookService BookServiceInterface) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		validator:   validator.New(),
	}
}

// GetBook обрабатывает GET /books/:book_id
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, ok := h.bookIDParam(c)
	if !ok {
		return
	}

	book, err := h.bookService.GetBookInfo(c.Request.Context(), bookID)
	if err != nil {
		h.respondError(c, err, "Failed to get book info")
		return
	}

	c.JSON(http.StatusOK, book)
}

// GetMonthlyAverages обрабатывает GET /books/:book_id/reviews/monthly
func (h *BookHandler) GetMonthlyAverages(c *gin.Context) {
	bookID, ok := h.bookIDParam(c)
	if !ok {
		return
	}

	averages, err := h.bookService.GetMonthlyAverages(c.Request.Context(), bookID)
	if err != nil {
		h.respondError(c, err, "Failed to get monthly averages")
		return
	}

	c.JSON(http.StatusOK, averages)
}

// GetTopBooks обрабатывает GET /books/top?amount=10
func (h *BookHandler) GetTopBooks(c *gin.Context) {
	amount := defaultTopAmount
	if raw := c.Query("amount"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		amount = parsed
	}

	books, err := h.bookService.GetTopBooks(c.Request.Context(), amount)
	if err != nil {
		h.respondError(c, err, "Failed to get top books")
		return
	}

	c.JSON(http.StatusOK, books)
}

// SearchBooks обрабатывает GET /books/search?title=...
// Возвращает плоский список по всем страницам выдачи, отфильтрованный по названию
func (h *BookHandler) SearchBooks(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	books, err := h.bookService.SearchByTitle(c.Request.Context(), title)
	if err != nil {
		h.respondError(c, err, "Failed to search books")
		return
	}

	c.JSON(http.StatusOK, entity.SearchResponse{
		Books: books,
		Total: len(books),
	})
}

// SearchBooksPaginated обрабатывает GET /books/search/paginated?title=...&page=1
func (h *BookHandler) SearchBooksPaginated(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		page = parsed
	}

	list, err := h.bookService.SearchByTitlePaginated(c.Request.Context(), title, page)
	if err != nil {
		h.respondError(c, err, "Failed to search books")
		return
	}

	c.JSON(http.StatusOK, list)
}

// AddReview обрабатывает POST /books/:book_id/review
func (h *BookHandler) AddReview(c *gin.Context) {
	bookID, ok := h.bookIDParam(c)
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, err := h.bookService.AddReview(c.Request.Context(), bookID, &req)
	if err != nil {
		h.respondError(c, err, "Failed to add review")
		return
	}

	c.JSON(http.StatusCreated, review)
}

// bookIDParam извлекает и проверяет параметр пути book_id
func (h *BookHandler) bookIDParam(c *gin.Context) (int, bool) {
	bookID, err := strconv.Atoi(c.Param("book_id"))
	if err != nil || bookID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return 0, false
	}

	return bookID, true
}

// respondError отображает ошибки service layer в HTTP статусы
func (h *BookHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, infrastructure.ErrCatalogFetch):
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error:   "Could not fetch data from Gutendex",
			Message: err.Error(),
		})
	case errors.Is(err, repository.ErrStorageUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Review storage is unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
