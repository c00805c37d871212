package genericfetcher

import (
	"context"
	"strings"

	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// FetchPage выполняет один сетевой запрос и разбирает страницу выдачи
// селекторами из конфигурации портала.
func (a *GenericFetcherAdapter) FetchPage(ctx context.Context, pageURL string) (domain.ListingPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{
		"component": "GenericFetcherAdapter(FetchPage)",
		"source":    a.config.Name,
	})

	// Одноразовый клон: наследует лимиты, но обработчики Clone не копирует,
	// поэтому расширения вешаются здесь
	collector := a.collector.Clone()
	extensions.RandomUserAgent(collector) // На каждый запрос будет подставлен User-Agent реального браузера
	extensions.Referer(collector)         // Автоматически подставляет заголовок Referer, имитируя навигацию

	var page domain.ListingPage
	var responseErr error
	seen := make(map[string]bool)

	collector.OnRequest(func(r *colly.Request) {
		fetchLogger.Debug("Making request to fetch listings page", port.Fields{
			"url": r.URL.String(),
		})
	})

	collector.OnHTML(a.config.selector("item"), func(e *colly.HTMLElement) {
		listing, ok := a.parseItem(e)
		if !ok {
			return
		}
		// Вложенные карточки могут заматчиться дважды
		if seen[listing.URL] {
			return
		}
		seen[listing.URL] = true
		page.Listings = append(page.Listings, listing)
	})

	collector.OnHTML(a.config.selector("next_page"), func(e *colly.HTMLElement) {
		if page.NextPageURL != "" {
			return
		}
		href := e.Attr("href")
		if href == "" || href == "#" {
			return
		}
		page.NextPageURL = e.Request.AbsoluteURL(href)
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchLogger.Error("Failed to fetch listings page", err, port.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
		})
		responseErr = &domain.FetchError{
			Source:     a.config.Name,
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
		fetchLogger.Error("Failed to initiate visit for listings page", err, port.Fields{"url": pageURL})
		return domain.ListingPage{}, &domain.FetchError{Source: a.config.Name, URL: pageURL, Err: err}
	}
	collector.Wait()

	if responseErr != nil {
		return domain.ListingPage{}, responseErr
	}

	fetchLogger.Info("Finished fetching listings page", port.Fields{
		"url":       pageURL,
		"listings":  len(page.Listings),
		"next_page": page.NextPageURL,
	})

	return page, nil
}

// parseItem извлекает одно объявление из карточки выдачи.
// Карточка без ссылки бесполезна и пропускается.
func (a *GenericFetcherAdapter) parseItem(e *colly.HTMLElement) (domain.Listing, bool) {
	item := e.DOM

	link := item.Find(a.config.selector("link")).First()
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return domain.Listing{}, false
	}
	absURL := e.Request.AbsoluteURL(strings.TrimSpace(href))

	listing := domain.Listing{
		Source:        a.config.Name,
		ExternalID:    domain.ExternalIDFromURL(a.config.Name, absURL),
		URL:           absURL,
		OperationType: a.config.OperationType,
		PropertyType:  a.config.PropertyType,
	}

	if title := item.Find(a.config.selector("title")).First(); title.Length() > 0 {
		listing.Title = strings.TrimSpace(title.Text())
	} else {
		listing.Title = strings.TrimSpace(link.Text())
	}

	if price := item.Find(a.config.selector("price")).First(); price.Length() > 0 {
		listing.Price = domain.CleanPrice(price.Text())
	}

	if loc := item.Find(a.config.selector("location")).First(); loc.Length() > 0 {
		listing.Location.City = strings.TrimSpace(loc.Text())
	}

	if surface := item.Find(a.config.selector("surface")).First(); surface.Length() > 0 {
		listing.SurfaceArea = domain.CleanSurface(surface.Text())
	}

	if rooms := item.Find(a.config.selector("bedrooms")).First(); rooms.Length() > 0 {
		listing.Bedrooms = domain.CleanRoomCount(rooms.Text())
	}

	if bath := item.Find(a.config.selector("bathrooms")).First(); bath.Length() > 0 {
		listing.Bathrooms = domain.CleanRoomCount(bath.Text())
	}

	if img := item.Find(a.config.selector("image")).First(); img.Length() > 0 {
		for _, attr := range []string{"src", "data-src", "data-lazy"} {
			if src, exists := img.Attr(attr); exists && src != "" {
				listing.Images = []string{e.Request.AbsoluteURL(src)}
				break
			}
		}
	}

	return listing, true
}
