package domain

// ListingFilters - необязательные условия выборки сохранённых объявлений
// для витрины /api/v1/listings. Нулевые значения не участвуют в запросе.
type ListingFilters struct {
	Source     string
	Province   string
	City       string
	PriceMin   *float64
	PriceMax   *float64
	SurfaceMin *float64
	Limit      int
}
