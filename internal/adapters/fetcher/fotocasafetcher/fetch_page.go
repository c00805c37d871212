package fotocasafetcher

import (
	"context"
	"encoding/json"
	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"
	"net/url"
	"strconv"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Структуры для разбора ответа поискового API
type searchResponse struct {
	Listings   []adItem   `json:"listings"`
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}

// FetchPage выполняет один запрос к поисковому API и разбирает ответ.
func (a *FotocasaFetcherAdapter) FetchPage(ctx context.Context, pageURL string) (domain.ListingPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{"component": "FotocasaFetcherAdapter(FetchPage)"})

	// Одноразовый клон: наследует лимиты, но обработчики Clone не копирует,
	// поэтому расширения вешаются здесь
	collector := a.collector.Clone()
	extensions.RandomUserAgent(collector) // На каждый запрос будет подставлен User-Agent реального браузера
	extensions.Referer(collector)         // Автоматически подставляет заголовок Referer, имитируя навигацию

	var page domain.ListingPage
	var responseErr error

	collector.OnRequest(func(r *colly.Request) {
		fetchLogger.Debug("Making request to search API", port.Fields{
			"url": r.URL.String(),
		})
		r.Headers.Set("Accept", "application/json")
	})

	collector.OnResponse(func(r *colly.Response) {
		var data searchResponse
		if jsonErr := json.Unmarshal(r.Body, &data); jsonErr != nil {
			responseErr = &domain.ParseError{
				Source: sourceName,
				URL:    r.Request.URL.String(),
				Reason: "unexpected search response shape",
				Err:    jsonErr,
			}
			return
		}

		operation := operationFromQuery(r.Request.URL.Query())
		for _, item := range data.Listings {
			listing, ok := toDomainListing(item, operation, fetchLogger)
			if !ok {
				continue
			}
			page.Listings = append(page.Listings, listing)
		}

		p := data.Pagination
		if p.Page > 0 && p.PageSize > 0 && p.Page*p.PageSize < p.TotalCount {
			page.NextPageURL = withPage(r.Request.URL, p.Page+1)
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchLogger.Error("Failed to fetch search API page", err, port.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
		})
		responseErr = &domain.FetchError{
			Source:     sourceName,
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Err:        err,
		}
	})

	if err := collector.Visit(pageURL); err != nil {
		// Не-2xx ответ приходит сюда же ошибкой Visit, статус уже в responseErr
		if responseErr != nil {
			return domain.ListingPage{}, responseErr
		}
		fetchLogger.Error("Failed to initiate visit to search API", err, port.Fields{"url": pageURL})
		return domain.ListingPage{}, &domain.FetchError{Source: sourceName, URL: pageURL, Err: err}
	}
	collector.Wait()

	if responseErr != nil {
		return domain.ListingPage{}, responseErr
	}

	fetchLogger.Info("Finished fetching search API page", port.Fields{
		"url":       pageURL,
		"listings":  len(page.Listings),
		"next_page": page.NextPageURL,
	})

	return page, nil
}

func operationFromQuery(q url.Values) string {
	if q.Get("operation") == "alquiler" {
		return domain.OperationRent
	}
	return domain.OperationSale
}

// withPage возвращает копию URL со смещённым номером страницы
func withPage(u *url.URL, page int) string {
	next := *u
	q := next.Query()
	q.Set("page", strconv.Itoa(page))
	next.RawQuery = q.Encode()
	return next.String()
}
