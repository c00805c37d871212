package rabbitmq

import (
	"monitoring-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// NewListingsEventDTO - тело события NewListingsEvent/1.0.0.
// Структура зафиксирована схемой schemas/events/new-listings/v1.json.
type NewListingsEventDTO struct {
	RunID      uuid.UUID           `json:"run_id"`
	Profile    string              `json:"profile"`
	OccurredAt time.Time           `json:"occurred_at"`
	Listings   []ListingSummaryDTO `json:"listings"`
}

// ListingSummaryDTO - сокращённое представление объявления в событии.
// Потребителям не нужны описание и фотографии, им достаточно ссылки.
type ListingSummaryDTO struct {
	Source      string   `json:"source"`
	ExternalID  string   `json:"external_id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Price       *float64 `json:"price"`
	SurfaceArea *float64 `json:"surface_area"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	Province    string   `json:"province"`
	City        string   `json:"city"`
	Zone        string   `json:"zone"`
}

func toListingSummaryDTO(l domain.Listing) ListingSummaryDTO {
	return ListingSummaryDTO{ // Маппинг полей
		Source:      l.Source,
		ExternalID:  l.ExternalID,
		URL:         l.URL,
		Title:       l.Title,
		Price:       l.Price,
		SurfaceArea: l.SurfaceArea,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Province:    l.Location.Province,
		City:        l.Location.City,
		Zone:        l.Location.Zone,
	}
}
