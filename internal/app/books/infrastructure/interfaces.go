package infrastructure

import (
	"context"
	"errors"

	"gutendexer/internal/app/books/entity"
)

// ErrCatalogFetch - единая ошибка обращения к внешнему каталогу.
// Сетевые сбои, не-200 статусы и некорректные ответы нормализуются к ней,
// текст причины сохраняется в обертке
var ErrCatalogFetch = errors.New("catalog fetch failed")

// CatalogClient - клиент внешнего каталога книг (Gutendex)
// Клиент никогда не обходит страницы сам: глубину обхода контролирует вызывающий
type CatalogClient interface {
	FetchByID(ctx context.Context, bookID int) (*entity.CatalogEntry, error)
	FetchByPath(ctx context.Context, bookID int) (*entity.CatalogEntry, error)
	FetchPage(ctx context.Context, pageURL string) ([]entity.CatalogEntry, *string, error)
	FetchSearchPage(ctx context.Context, title string, page int) (*entity.SearchPage, error)
	SearchURL(title string) string
}

type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
