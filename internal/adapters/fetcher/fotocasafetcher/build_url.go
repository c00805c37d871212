package fotocasafetcher

import (
	"fmt"
	"monitoring-service/internal/core/domain"
	"net/url"
	"strconv"
)

// BuildSearchURL строит URL первой страницы поискового API.
func (a *FotocasaFetcherAdapter) BuildSearchURL(profile domain.SearchProfile) (string, error) {
	location := domain.Slugify(profile.City)
	if location == "" {
		location = domain.Slugify(profile.Province)
	}
	if location == "" {
		return "", &domain.ConfigurationError{
			Source: sourceName,
			Reason: "profile needs a city or a province, search API requires a location",
		}
	}

	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", fmt.Errorf("fotocasa adapter: failed to parse base URL: %w", err)
	}

	operation := "comprar"
	if profile.OperationType == domain.OperationRent {
		operation = "alquiler"
	}

	q := u.Query()
	q.Set("location", location)
	q.Set("operation", operation)
	if profile.PropertyType != "" {
		q.Set("propertyType", profile.PropertyType)
	}
	if profile.PriceMax != nil {
		q.Set("maxPrice", strconv.Itoa(int(*profile.PriceMax)))
	}
	if profile.BedroomsMin != nil {
		q.Set("minRooms", strconv.Itoa(*profile.BedroomsMin))
	}
	if profile.SurfaceMin != nil {
		q.Set("minSurface", strconv.Itoa(int(*profile.SurfaceMin)))
	}
	q.Set("page", "1")
	q.Set("pageSize", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
