package pisosfetcher

import (
	"fmt"
	"monitoring-service/internal/core/domain"
	"net/url"
	"strconv"
)

// BuildSearchURL строит URL первой страницы выдачи.
//
// Формат портала: /venta/pisos-{city}/?preciomax=N&habitacionesmin=N
func (a *PisosFetcherAdapter) BuildSearchURL(profile domain.SearchProfile) (string, error) {
	location := domain.Slugify(profile.City)
	if location == "" {
		location = domain.Slugify(profile.Province)
	}
	if location == "" {
		return "", &domain.ConfigurationError{
			Source: sourceName,
			Reason: "profile needs a city or a province, portal search is location-scoped",
		}
	}

	operationPath := "venta"
	if profile.OperationType == domain.OperationRent {
		operationPath = "alquiler"
	}

	var propertyPath string
	switch profile.PropertyType {
	case "", "piso":
		propertyPath = "pisos"
	case "casa":
		propertyPath = "casas"
	default:
		propertyPath = "viviendas"
	}

	u, err := url.Parse(fmt.Sprintf("%s/%s/%s-%s/", a.baseURL, operationPath, propertyPath, location))
	if err != nil {
		return "", fmt.Errorf("pisos adapter: failed to build search URL: %w", err)
	}

	q := u.Query()
	if profile.PriceMax != nil {
		q.Set("preciomax", strconv.Itoa(int(*profile.PriceMax)))
	}
	if profile.BedroomsMin != nil {
		q.Set("habitacionesmin", strconv.Itoa(*profile.BedroomsMin))
	}
	if profile.SurfaceMin != nil {
		q.Set("superficiemin", strconv.Itoa(int(*profile.SurfaceMin)))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
