package genericfetcher

import (
	"net/url"
	"strconv"
	"strings"

	"monitoring-service/internal/core/domain"
)

// BuildSearchURL собирает поисковый URL портала из шаблона пути и
// маппинга параметров. Локация для таких порталов необязательна:
// без неё запрашивается весь каталог.
func (a *GenericFetcherAdapter) BuildSearchURL(profile domain.SearchProfile) (string, error) {
	searchURL := strings.TrimSuffix(a.config.BaseURL, "/") + a.expandSearchPath(profile)

	query := url.Values{}
	for filter, param := range a.config.Params {
		if param == "" {
			continue
		}
		switch filter {
		case "province":
			if profile.Province != "" {
				query.Set(param, profile.Province)
			}
		case "city":
			if profile.City != "" {
				query.Set(param, profile.City)
			}
		case "price_max":
			if profile.PriceMax != nil {
				query.Set(param, strconv.Itoa(int(*profile.PriceMax)))
			}
		case "bedrooms_min":
			if profile.BedroomsMin != nil {
				query.Set(param, strconv.Itoa(*profile.BedroomsMin))
			}
		case "surface_min":
			if profile.SurfaceMin != nil {
				query.Set(param, strconv.Itoa(int(*profile.SurfaceMin)))
			}
		}
	}

	if len(query) > 0 {
		searchURL += "?" + query.Encode()
	}

	return searchURL, nil
}

// expandSearchPath подставляет слаги локаций профиля в шаблон пути.
// Сегмент с незаполненным плейсхолдером выбрасывается целиком:
// "/comprar/{province}/{city}" без города даёт "/comprar/zaragoza".
func (a *GenericFetcherAdapter) expandSearchPath(profile domain.SearchProfile) string {
	replacer := strings.NewReplacer(
		"{province}", domain.Slugify(profile.Province),
		"{city}", domain.Slugify(profile.City),
	)

	var segments []string
	for _, segment := range strings.Split(a.config.SearchPath, "/") {
		if segment == "" {
			continue
		}
		expanded := replacer.Replace(segment)
		if expanded == "" {
			continue
		}
		segments = append(segments, expanded)
	}

	if len(segments) == 0 {
		return ""
	}
	return "/" + strings.Join(segments, "/")
}
