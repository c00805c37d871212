package domain

import (
	"strings"
	"time"
)

const (
	OperationSale = "sale"
	OperationRent = "rent"
)

// Ключи признаков объявления. Источники маппят свои поля на этот набор,
// профили ссылаются на эти же ключи в required_features.
const (
	FeatureElevator  = "elevator"
	FeatureParking   = "parking"
	FeatureStorage   = "storage"
	FeaturePool      = "pool"
	FeatureTerrace   = "terrace"
	FeatureAC        = "ac"
	FeatureHeating   = "heating"
	FeatureFurnished = "furnished"
	FeatureExterior  = "exterior"
)

// Location - иерархическое местоположение объявления (свободный текст источника)
type Location struct {
	Province   string `json:"province"`
	City       string `json:"city"`
	Zone       string `json:"zone"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// String собирает местоположение в строку для показа человеку
func (loc Location) String() string {
	parts := make([]string, 0, 3)
	if loc.Zone != "" {
		parts = append(parts, loc.Zone)
	}
	if loc.City != "" {
		parts = append(parts, loc.City)
	}
	if loc.Province != "" && loc.Province != loc.City {
		parts = append(parts, loc.Province)
	}
	if len(parts) == 0 {
		return "Ubicación no especificada"
	}
	return strings.Join(parts, ", ")
}

// Listing - одно объявление о недвижимости в нормализованном виде.
// Соответствует таблице `listings`.
// Отсутствующие числовые характеристики всегда nil, никогда не ноль,
// иначе фильтры по нижней границе дают ложные срабатывания.
type Listing struct {
	Source     string `json:"source"`      // имя адаптера-источника
	ExternalID string `json:"external_id"` // нативный ID внутри источника

	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Price       *float64 `json:"price"`        // цена, EUR
	SurfaceArea *float64 `json:"surface_area"` // площадь, м²
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	Floor       *string  `json:"floor,omitempty"`

	Location  Location `json:"location"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	OperationType string `json:"operation_type,omitempty"` // sale | rent
	PropertyType  string `json:"property_type,omitempty"`

	Features map[string]bool `json:"features,omitempty"`

	Agency string   `json:"agency,omitempty"`
	Images []string `json:"images,omitempty"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	FirstSeenAt time.Time  `json:"first_seen_at"`
	LastSeenAt  time.Time  `json:"last_seen_at"`
}

// DedupKey возвращает ключ уникальности объявления на всё время жизни хранилища
func (l Listing) DedupKey() string {
	return l.Source + ":" + l.ExternalID
}

// HasFeature - признак присутствует и равен true; отсутствие равно false
func (l Listing) HasFeature(name string) bool {
	return l.Features[name]
}

// ListingPage - результат разбора одной страницы выдачи источника
type ListingPage struct {
	Listings    []Listing
	NextPageURL string // пустая строка - следующей страницы нет
}

// HasNext сообщает, есть ли у выдачи следующая страница
func (p ListingPage) HasNext() bool {
	return p.NextPageURL != ""
}

// UpsertStatus - результат записи объявления в хранилище
type UpsertStatus string

const (
	UpsertNew  UpsertStatus = "new"  // ключ встречен впервые за время жизни хранилища
	UpsertSeen UpsertStatus = "seen" // ключ уже известен, обновлён только last_seen_at
)
