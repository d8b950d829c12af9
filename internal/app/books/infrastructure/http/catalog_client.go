package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gutendexer/internal/app/books/entity"
	"gutendexer/internal/app/books/infrastructure"
	"gutendexer/pkg/metrics"

	"golang.org/x/time/rate"
)

const serviceName = "gutendexer"

// resultsEnvelope - обертка ответов каталога
// Gutendex заворачивает в нее и постраничные выборки, и запросы по ids
type resultsEnvelope struct {
	Count    int                   `json:"count"`
	Next     *string               `json:"next"`
	Previous *string               `json:"previous"`
	Results  []entity.CatalogEntry `json:"results"`
}

// errorEnvelope - тело ответа каталога при ошибке
type errorEnvelope struct {
	Detail string `json:"detail"`
}

// GutendexClient - HTTP клиент каталога Gutendex
// Все сбои нормализуются к infrastructure.ErrCatalogFetch, повторов нет:
// политика ретраев, если понадобится, принадлежит вызывающему.
// Limiter ограничивает частоту исходящих запросов к публичному API
type GutendexClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGutendexClient создает новый клиент каталога
// rps ограничивает частоту запросов; rps <= 0 отключает ограничение
func NewGutendexClient(baseURL string, timeoutSec int, rps float64) *GutendexClient {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &GutendexClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// FetchByID получает одну запись каталога запросом с параметром ids
func (c *GutendexClient) FetchByID(ctx context.Context, bookID int) (*entity.CatalogEntry, error) {
	reqURL := fmt.Sprintf("%s?ids=%d", c.baseURL, bookID)
	return c.fetchSingle(ctx, reqURL, metrics.CatalogOpByID)
}

// FetchByPath получает одну запись каталога запросом по пути /<id>
// Каталог отвечает той же оберткой results, что и на запрос с ids
func (c *GutendexClient) FetchByPath(ctx context.Context, bookID int) (*entity.CatalogEntry, error) {
	reqURL := fmt.Sprintf("%s/%d", c.baseURL, bookID)
	return c.fetchSingle(ctx, reqURL, metrics.CatalogOpByID)
}

// FetchPage загружает ровно одну страницу по непрозрачному URL
// Возвращает записи страницы и указатель на следующую страницу (nil в конце)
func (c *GutendexClient) FetchPage(ctx context.Context, pageURL string) ([]entity.CatalogEntry, *string, error) {
	envelope, err := c.fetchEnvelope(ctx, pageURL, metrics.CatalogOpPage)
	if err != nil {
		return nil, nil, err
	}

	return envelope.Results, envelope.Next, nil
}

// FetchSearchPage загружает одну страницу поисковой выдачи каталога
// Возвращает сырой ответ целиком: постраничному поиску нужны count/next/previous
func (c *GutendexClient) FetchSearchPage(ctx context.Context, title string, page int) (*entity.SearchPage, error) {
	reqURL := c.SearchURL(title) + "&page=" + strconv.Itoa(page)

	envelope, err := c.fetchEnvelope(ctx, reqURL, metrics.CatalogOpSearch)
	if err != nil {
		return nil, err
	}

	return &entity.SearchPage{
		Count:    envelope.Count,
		Next:     envelope.Next,
		Previous: envelope.Previous,
		Results:  envelope.Results,
	}, nil
}

// SearchURL возвращает URL первой страницы поисковой выдачи по названию
func (c *GutendexClient) SearchURL(title string) string {
	return c.baseURL + "?search=" + url.QueryEscape(title)
}

func (c *GutendexClient) fetchSingle(ctx context.Context, reqURL string, op metrics.CatalogOperation) (*entity.CatalogEntry, error) {
	envelope, err := c.fetchEnvelope(ctx, reqURL, op)
	if err != nil {
		return nil, err
	}

	if len(envelope.Results) == 0 {
		return nil, fmt.Errorf("%w: empty results for %s", infrastructure.ErrCatalogFetch, reqURL)
	}

	return &envelope.Results[0], nil
}

func (c *GutendexClient) fetchEnvelope(ctx context.Context, reqURL string, op metrics.CatalogOperation) (*resultsEnvelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", infrastructure.ErrCatalogFetch, err)
	}

	timer := metrics.NewCatalogTimer(serviceName, op)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		timer.Error()
		return nil, fmt.Errorf("%w: failed to create request: %v", infrastructure.ErrCatalogFetch, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		timer.Error()
		return nil, fmt.Errorf("%w: %v", infrastructure.ErrCatalogFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		timer.Error()
		return nil, fmt.Errorf("%w: %s", infrastructure.ErrCatalogFetch, upstreamDetail(resp))
	}

	var envelope resultsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		timer.Error()
		return nil, fmt.Errorf("%w: failed to decode response: %v", infrastructure.ErrCatalogFetch, err)
	}

	if envelope.Results == nil {
		timer.Error()
		return nil, fmt.Errorf("%w: malformed response: missing results", infrastructure.ErrCatalogFetch)
	}

	timer.Success()
	return &envelope, nil
}

// upstreamDetail извлекает текст ошибки из ответа каталога
// Gutendex отдает ошибки в формате {"detail": "..."}
func upstreamDetail(resp *http.Response) string {
	body, err := io.ReadAll(resp.Body)
	if err == nil {
		var envelope errorEnvelope
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Detail != "" {
			return envelope.Detail
		}
	}

	return fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
}
