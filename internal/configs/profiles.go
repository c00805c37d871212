package configs

import (
	"encoding/json"
	"fmt"
	"os"

	"monitoring-service/internal/contracts"
	"monitoring-service/internal/core/domain"
)

// profileDTO - запись файла профилей. Отличается от доменной структуры
// только полем enabled: отсутствие в файле означает включённый профиль.
type profileDTO struct {
	Name             string   `json:"name"`
	Enabled          *bool    `json:"enabled"`
	Province         string   `json:"province"`
	City             string   `json:"city"`
	Zone             string   `json:"zone"`
	PriceMin         *float64 `json:"price_min"`
	PriceMax         *float64 `json:"price_max"`
	SurfaceMin       *float64 `json:"surface_min"`
	SurfaceMax       *float64 `json:"surface_max"`
	BedroomsMin      *int     `json:"bedrooms_min"`
	BedroomsMax      *int     `json:"bedrooms_max"`
	BathroomsMin     *int     `json:"bathrooms_min"`
	RequiredFeatures []string `json:"required_features"`
	OperationType    string   `json:"operation_type"`
	PropertyType     string   `json:"property_type"`
	Sources          []string `json:"sources"`
}

// SourceConfig - описание портала для универсального адаптера:
// адрес, шаблон пути поиска, маппинг параметров и селекторы карточки.
type SourceConfig struct {
	Name          string            `json:"name"`
	BaseURL       string            `json:"base_url"`
	SearchPath    string            `json:"search_path"`
	Params        map[string]string `json:"params"`
	Selectors     map[string]string `json:"selectors"`
	OperationType string            `json:"operation_type"`
	PropertyType  string            `json:"property_type"`
}

// ProfilesDocument - содержимое файла профилей после валидации.
type ProfilesDocument struct {
	Profiles []domain.SearchProfile
	Sources  []SourceConfig
}

type profilesFileDTO struct {
	Profiles []profileDTO   `json:"profiles"`
	Sources  []SourceConfig `json:"sources"`
}

// LoadProfiles читает файл поисковых профилей, проверяет его по схеме
// SearchProfilesConfig и транслирует в доменные структуры.
func LoadProfiles(path string) (ProfilesDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProfilesDocument{}, fmt.Errorf("failed to read profiles file %s: %w", path, err)
	}

	if err := contracts.ValidateConfig("SearchProfilesConfig", "1.0.0", data); err != nil {
		return ProfilesDocument{}, fmt.Errorf("profiles file %s is invalid: %w", path, err)
	}

	var file profilesFileDTO
	if err := json.Unmarshal(data, &file); err != nil {
		return ProfilesDocument{}, fmt.Errorf("failed to unmarshal profiles file %s: %w", path, err)
	}

	doc := ProfilesDocument{
		Profiles: make([]domain.SearchProfile, 0, len(file.Profiles)),
		Sources:  file.Sources,
	}
	for _, dto := range file.Profiles {
		doc.Profiles = append(doc.Profiles, toDomainProfile(dto))
	}

	return doc, nil
}

func toDomainProfile(dto profileDTO) domain.SearchProfile {
	profile := domain.SearchProfile{ // Маппим поля
		Name:             dto.Name,
		Enabled:          true,
		Province:         dto.Province,
		City:             dto.City,
		Zone:             dto.Zone,
		PriceMin:         dto.PriceMin,
		PriceMax:         dto.PriceMax,
		SurfaceMin:       dto.SurfaceMin,
		SurfaceMax:       dto.SurfaceMax,
		BedroomsMin:      dto.BedroomsMin,
		BedroomsMax:      dto.BedroomsMax,
		BathroomsMin:     dto.BathroomsMin,
		RequiredFeatures: dto.RequiredFeatures,
		OperationType:    dto.OperationType,
		PropertyType:     dto.PropertyType,
		Sources:          dto.Sources,
	}

	if dto.Enabled != nil {
		profile.Enabled = *dto.Enabled
	}

	return profile
}
