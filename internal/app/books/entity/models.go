package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review - отзыв пользователя о книге, хранится в MongoDB
// Отзывы неизменяемы: операций обновления и удаления нет
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookID    int                `json:"bookId" bson:"bookId"` // ID книги в каталоге Gutendex
	Rating    float64            `json:"rating" bson:"rating"` // Оценка от 0 до 5 включительно
	Review    string             `json:"review,omitempty" bson:"review"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ReviewAggregate - результат агрегации отзывов по одной книге
// Вычисляется заново при каждом запросе, нигде не сохраняется
type ReviewAggregate struct {
	BookID  int      `json:"bookId" bson:"bookId"`
	Rating  float64  `json:"rating" bson:"rating"` // Среднее арифметическое оценок
	Reviews []string `json:"reviews" bson:"reviews"`
}

// MonthlyAverage - средняя оценка книги за один календарный месяц
// Ключ группировки - пара (год, месяц), формат метки "YYYY-MM"
type MonthlyAverage struct {
	Month  string  `json:"month" bson:"month"`
	Rating float64 `json:"rating" bson:"rating"`
}

// BookAverageMonthlyRating - помесячная статистика оценок книги
type BookAverageMonthlyRating struct {
	BookID          int              `json:"bookId"`
	MonthlyAverages []MonthlyAverage `json:"monthlyAverages"`
}

// Author - автор книги из каталога Gutendex
type Author struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}

// CatalogEntry - запись каталога Gutendex
// Всегда запрашивается заново, локально не сохраняется и не кешируется
type CatalogEntry struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Authors       []Author `json:"authors"`
	Languages     []string `json:"languages"`
	DownloadCount int      `json:"download_count"`
}

// BookView - книга из каталога, обогащенная статистикой отзывов
// Rating и Reviews отсутствуют в ответе, если отзывов нет
type BookView struct {
	CatalogEntry
	Rating  *float64 `json:"rating,omitempty"`
	Reviews []string `json:"reviews,omitempty"`
}

// SearchPage - сырой ответ каталога на поисковый запрос
// Next и Previous - непрозрачные указатели на соседние страницы или null
type SearchPage struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []CatalogEntry `json:"results"`
}

// PaginatedBookList - одна страница результатов постраничного поиска
type PaginatedBookList struct {
	TotalCount   int            `json:"totalCount"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"totalPages"`
	NextPage     *int           `json:"nextPage"`
	PreviousPage *int           `json:"previousPage"`
	Books        []CatalogEntry `json:"books"`
}

// ReviewEvent - событие о созданном отзыве, публикуется в Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED
	ReviewID  string    `json:"review_id"`
	BookID    int       `json:"book_id"`
	Rating    float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
