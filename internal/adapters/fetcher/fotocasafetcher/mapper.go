package fotocasafetcher

import (
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"
	"strconv"
	"strings"
	"time"
)

// adItem - структура одного объявления в ответе API
type adItem struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        *float64  `json:"price"`
	Surface      *float64  `json:"surface"`
	Rooms        *int      `json:"rooms"`
	Bathrooms    *int      `json:"bathrooms"`
	Floor        *string   `json:"floor"`
	Address      adAddress `json:"address"`
	Coordinates  *adCoords `json:"coordinates"`
	PropertyType string    `json:"property_type"`
	Features     []string  `json:"features"`
	Agency       string    `json:"agency"`
	Images       []string  `json:"images"`
	PublishedAt  string    `json:"published_at"`
}

type adAddress struct {
	Province   string `json:"province"`
	City       string `json:"city"`
	Zone       string `json:"zone"`
	PostalCode string `json:"postal_code"`
}

type adCoords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ключи признаков API в терминах домена. API отдаёт испанские и
// английские варианты в зависимости от возраста объявления.
var featureKeys = map[string]string{
	"elevator":           domain.FeatureElevator,
	"ascensor":           domain.FeatureElevator,
	"parking":            domain.FeatureParking,
	"garaje":             domain.FeatureParking,
	"storage":            domain.FeatureStorage,
	"trastero":           domain.FeatureStorage,
	"pool":               domain.FeaturePool,
	"piscina":            domain.FeaturePool,
	"terrace":            domain.FeatureTerrace,
	"terraza":            domain.FeatureTerrace,
	"air_conditioning":   domain.FeatureAC,
	"aire_acondicionado": domain.FeatureAC,
	"heating":            domain.FeatureHeating,
	"calefaccion":        domain.FeatureHeating,
	"furnished":          domain.FeatureFurnished,
	"amueblado":          domain.FeatureFurnished,
	"exterior":           domain.FeatureExterior,
}

// toDomainListing - главный метод-трансформер
func toDomainListing(item adItem, operation string, logger port.LoggerPort) (domain.Listing, bool) {
	if item.ID == 0 || item.URL == "" {
		logger.Warn("Skipping ad without id or url", port.Fields{
			"ad_id": item.ID,
			"url":   item.URL,
		})
		return domain.Listing{}, false
	}

	listing := domain.Listing{
		Source:      sourceName,
		ExternalID:  strconv.FormatInt(item.ID, 10),
		URL:         item.URL,
		Title:       item.Title,
		Description: item.Description,

		Price:       item.Price,
		SurfaceArea: item.Surface,
		Bedrooms:    item.Rooms,
		Bathrooms:   item.Bathrooms,
		Floor:       item.Floor,

		Location: domain.Location{
			Province:   item.Address.Province,
			City:       item.Address.City,
			Zone:       item.Address.Zone,
			PostalCode: item.Address.PostalCode,
		},

		OperationType: operation,
		PropertyType:  item.PropertyType,
		Agency:        item.Agency,
		Images:        item.Images,
	}

	if item.Coordinates != nil {
		lat, lng := item.Coordinates.Latitude, item.Coordinates.Longitude
		listing.Latitude = &lat
		listing.Longitude = &lng
	}

	if len(item.Features) > 0 {
		listing.Features = make(map[string]bool, len(item.Features))
		for _, raw := range item.Features {
			if key, known := featureKeys[strings.ToLower(strings.TrimSpace(raw))]; known {
				listing.Features[key] = true
			}
		}
	}

	if item.PublishedAt != "" {
		publishedAt, parseErr := time.Parse(time.RFC3339, item.PublishedAt)
		if parseErr != nil {
			logger.Warn("Failed to parse publication date", port.Fields{
				"date_string": item.PublishedAt,
				"ad_id":       item.ID,
				"error":       parseErr.Error(),
			})
		} else {
			listing.PublishedAt = &publishedAt
		}
	}

	return listing, true
}
