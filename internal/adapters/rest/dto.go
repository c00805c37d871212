package rest

import (
	"time"

	"monitoring-service/internal/core/domain"
)

// StatusResponse - DTO состояния сервиса для GET /status
type StatusResponse struct {
	Status           string       `json:"status"`
	LastRun          *string      `json:"last_run"`
	LastRunStats     *RunStatsDTO `json:"last_run_stats"`
	StartTime        string       `json:"start_time"`
	NextScheduledRun *string      `json:"next_scheduled_run"`
}

// RunStatsDTO - сводка последнего прогона в формате дашборда
type RunStatsDTO struct {
	TotalFound  int                               `json:"total_found"`
	NewListings int                               `json:"new_listings"`
	Errors      int                               `json:"errors"`
	Duration    string                            `json:"duration"`
	PortalStats map[string]*domain.SourceRunStats `json:"portal_stats"`
	Error       *string                           `json:"error,omitempty"`
}

// ListingResponse - DTO для ответа с одним объявлением
type ListingResponse struct {
	Source        string          `json:"source"`
	ExternalID    string          `json:"external_id"`
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Price         *float64        `json:"price"`
	SurfaceArea   *float64        `json:"surface_area"`
	Bedrooms      *int            `json:"bedrooms"`
	Bathrooms     *int            `json:"bathrooms"`
	Floor         *string         `json:"floor,omitempty"`
	Province      string          `json:"province,omitempty"`
	City          string          `json:"city,omitempty"`
	Zone          string          `json:"zone,omitempty"`
	OperationType string          `json:"operation_type,omitempty"`
	PropertyType  string          `json:"property_type,omitempty"`
	Features      map[string]bool `json:"features,omitempty"`
	Images        []string        `json:"images,omitempty"`
	FirstSeenAt   string          `json:"first_seen_at"`
	LastSeenAt    string          `json:"last_seen_at"`
}

// RunResponse - DTO для записи истории прогонов
type RunResponse struct {
	ID           string                            `json:"id"`
	Status       string                            `json:"status"`
	StartedAt    string                            `json:"started_at"`
	FinishedAt   string                            `json:"finished_at"`
	TotalFound   int                               `json:"total_found"`
	TotalNew     int                               `json:"total_new"`
	TotalErrors  int                               `json:"total_errors"`
	Duration     string                            `json:"duration"`
	SourceStats  map[string]*domain.SourceRunStats `json:"source_stats"`
	ErrorMessage *string                           `json:"error_message,omitempty"`
}

// toListingResponse - маппер из доменной модели в DTO
func toListingResponse(listing domain.Listing) ListingResponse {
	return ListingResponse{
		Source:        listing.Source,
		ExternalID:    listing.ExternalID,
		URL:           listing.URL,
		Title:         listing.Title,
		Description:   listing.Description,
		Price:         listing.Price,
		SurfaceArea:   listing.SurfaceArea,
		Bedrooms:      listing.Bedrooms,
		Bathrooms:     listing.Bathrooms,
		Floor:         listing.Floor,
		Province:      listing.Location.Province,
		City:          listing.Location.City,
		Zone:          listing.Location.Zone,
		OperationType: listing.OperationType,
		PropertyType:  listing.PropertyType,
		Features:      listing.Features,
		Images:        listing.Images,
		FirstSeenAt:   listing.FirstSeenAt.Format(time.RFC3339),
		LastSeenAt:    listing.LastSeenAt.Format(time.RFC3339),
	}
}

// toRunResponse - маппер результата прогона в DTO
func toRunResponse(run domain.RunResult) RunResponse {
	return RunResponse{
		ID:           run.ID.String(),
		Status:       string(run.Status),
		StartedAt:    run.StartedAt.Format(time.RFC3339),
		FinishedAt:   run.FinishedAt.Format(time.RFC3339),
		TotalFound:   run.TotalFound,
		TotalNew:     run.TotalNew,
		TotalErrors:  run.TotalErrors,
		Duration:     run.ClockDuration(),
		SourceStats:  run.SourceStats,
		ErrorMessage: run.ErrorMessage,
	}
}

// toRunStatsDTO - сводка прогона для блока last_run_stats
func toRunStatsDTO(run *domain.RunResult) *RunStatsDTO {
	if run == nil {
		return nil
	}
	return &RunStatsDTO{
		TotalFound:  run.TotalFound,
		NewListings: run.TotalNew,
		Errors:      run.TotalErrors,
		Duration:    run.ClockDuration(),
		PortalStats: run.SourceStats,
		Error:       run.ErrorMessage,
	}
}
