package pisosfetcher

import (
	"context"
	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Портал то и дело перевёрстывает карточки, поэтому селекторы матчатся
// по подстроке класса, а не по точному имени
const (
	itemSelector     = `article[class*="property"], article[class*="ad-preview"], article[class*="anuncio"], .property-card, .listing-item`
	nextPageSelector = `a[rel="next"], a[class*="next"], a[class*="siguiente"]`
)

// FetchPage выполняет один сетевой запрос и разбирает страницу выдачи.
func (a *PisosFetcherAdapter) FetchPage(ctx context.Context, pageURL string) (domain.ListingPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{"component": "PisosFetcherAdapter(FetchPage)"})

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

	collector.OnHTML(itemSelector, func(e *colly.HTMLElement) {
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

	collector.OnHTML(nextPageSelector, func(e *colly.HTMLElement) {
		if page.NextPageURL != "" {
			return
		}
		if href := e.Attr("href"); href != "" {
			page.NextPageURL = e.Request.AbsoluteURL(href)
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchLogger.Error("Failed to fetch listings page", err, port.Fields{
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
		fetchLogger.Error("Failed to initiate visit for listings page", err, port.Fields{"url": pageURL})
		return domain.ListingPage{}, &domain.FetchError{Source: sourceName, URL: pageURL, Err: err}
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
func (a *PisosFetcherAdapter) parseItem(e *colly.HTMLElement) (domain.Listing, bool) {
	item := e.DOM

	link := item.Find(`a[class*="ad-title"], a[class*="property-link"], a[class*="anuncio-link"]`).First()
	if link.Length() == 0 {
		link = item.Find(`a[href*="/piso/"], a[href*="/vivienda/"], a[href*="/anuncio/"]`).First()
	}
	if link.Length() == 0 {
		link = item.Find("a[href]").First()
	}

	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return domain.Listing{}, false
	}
	absURL := e.Request.AbsoluteURL(strings.TrimSpace(href))

	listing := domain.Listing{
		Source:     sourceName,
		ExternalID: domain.ExternalIDFromURL(sourceName, absURL),
		URL:        absURL,
	}

	title := item.Find(`[class*="ad-title"], [class*="property-title"], [class*="titulo"]`).First()
	if title.Length() == 0 {
		title = item.Find("h2, h3, h4").First()
	}
	if title.Length() > 0 {
		listing.Title = strings.TrimSpace(title.Text())
	} else {
		listing.Title = strings.TrimSpace(link.Text())
	}

	if price := item.Find(`[class*="price"], [class*="precio"]`).First(); price.Length() > 0 {
		listing.Price = domain.CleanPrice(price.Text())
	}

	if loc := item.Find(`[class*="location"], [class*="ubicacion"], [class*="zona"]`).First(); loc.Length() > 0 {
		listing.Location.City = strings.TrimSpace(loc.Text())
	}

	item.Find(`[class*="feature"], [class*="caracteristica"], [class*="detail"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		switch {
		case strings.Contains(text, "m²") || strings.Contains(text, "m2"):
			if listing.SurfaceArea == nil {
				listing.SurfaceArea = domain.CleanSurface(text)
			}
		case strings.Contains(text, "hab") || strings.Contains(text, "dorm"):
			if listing.Bedrooms == nil {
				listing.Bedrooms = domain.CleanRoomCount(text)
			}
		case strings.Contains(text, "baño") || strings.Contains(text, "bath"):
			if listing.Bathrooms == nil {
				listing.Bathrooms = domain.CleanRoomCount(text)
			}
		}
	})

	// Не у всех карточек характеристики размечены классами,
	// добираем их по тексту целиком
	fillFromText(&listing, item.Text())

	if desc := item.Find(`[class*="description"], [class*="descripcion"]`).First(); desc.Length() > 0 {
		listing.Description = strings.TrimSpace(desc.Text())
	}

	if img := item.Find("img").First(); img.Length() > 0 {
		for _, attr := range []string{"src", "data-src", "data-lazy"} {
			if src, exists := img.Attr(attr); exists && src != "" {
				listing.Images = []string{e.Request.AbsoluteURL(src)}
				break
			}
		}
	}

	listing.OperationType = operationFromPath(e.Request.URL.Path)
	listing.PropertyType = propertyFromPath(e.Request.URL.Path)

	return listing, true
}

func operationFromPath(path string) string {
	if strings.Contains(path, "/alquiler/") {
		return domain.OperationRent
	}
	return domain.OperationSale
}

func propertyFromPath(path string) string {
	switch {
	case strings.Contains(path, "/casas-"):
		return "casa"
	case strings.Contains(path, "/pisos-"):
		return "piso"
	default:
		return ""
	}
}
