package domain

// SearchProfile - именованный набор критериев поиска.
// Профиль неизменяем: загружается один раз при старте процесса,
// конвейер его никогда не мутирует.
type SearchProfile struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`

	// Ограничения по местоположению. Пустое поле - без ограничения.
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	Zone     string `json:"zone,omitempty"`

	// Границы включительные; nil - граница не задана
	PriceMin     *float64 `json:"price_min,omitempty"`
	PriceMax     *float64 `json:"price_max,omitempty"`
	SurfaceMin   *float64 `json:"surface_min,omitempty"`
	SurfaceMax   *float64 `json:"surface_max,omitempty"`
	BedroomsMin  *int     `json:"bedrooms_min,omitempty"`
	BedroomsMax  *int     `json:"bedrooms_max,omitempty"`
	BathroomsMin *int     `json:"bathrooms_min,omitempty"`

	// Каждый ключ обязан присутствовать на объявлении со значением true
	RequiredFeatures []string `json:"required_features,omitempty"`

	OperationType string `json:"operation_type,omitempty"` // sale | rent; пустое - sale
	PropertyType  string `json:"property_type,omitempty"`

	// Имена источников для этого профиля; пустой список - все включённые источники
	Sources []string `json:"sources,omitempty"`
}

// UsesSource сообщает, обходит ли профиль данный источник
func (p SearchProfile) UsesSource(name string) bool {
	if len(p.Sources) == 0 {
		return true
	}
	for _, s := range p.Sources {
		if s == name {
			return true
		}
	}
	return false
}
