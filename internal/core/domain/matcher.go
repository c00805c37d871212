package domain

import "strings"

// Matches - чистый предикат соответствия объявления профилю поиска.
//
// Числовые границы: объявление проходит границу, только если поле не nil и
// попадает в диапазон. Незаданная граница профиля пропускает всё. Отсутствующее
// поле объявления при заданной границе - отказ (fail-closed), чтобы пропуски
// данных источника не давали ложных срабатываний.
func Matches(listing Listing, profile SearchProfile) bool {
	if !floatWithin(listing.Price, profile.PriceMin, profile.PriceMax) {
		return false
	}
	if !floatWithin(listing.SurfaceArea, profile.SurfaceMin, profile.SurfaceMax) {
		return false
	}
	if !intWithin(listing.Bedrooms, profile.BedroomsMin, profile.BedroomsMax) {
		return false
	}
	if !intWithin(listing.Bathrooms, profile.BathroomsMin, nil) {
		return false
	}

	if !locationMatches(listing.Location, profile) {
		return false
	}

	// Каждый требуемый признак должен присутствовать и быть true;
	// отсутствующий и false считаются одинаково - не выполнено
	for _, feature := range profile.RequiredFeatures {
		if !listing.Features[feature] {
			return false
		}
	}

	return true
}

func floatWithin(value *float64, min *float64, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	if value == nil {
		return false
	}
	if min != nil && *value < *min {
		return false
	}
	if max != nil && *value > *max {
		return false
	}
	return true
}

func intWithin(value *int, min *int, max *int) bool {
	if min == nil && max == nil {
		return true
	}
	if value == nil {
		return false
	}
	if min != nil && *value < *min {
		return false
	}
	if max != nil && *value > *max {
		return false
	}
	return true
}

// locationMatches - регистронезависимое вхождение по каждому заданному уровню
// иерархии. Совпадение по городу не отменяет проверку провинции: если профиль
// задаёт и город, и провинцию, совпасть должны оба уровня.
func locationMatches(loc Location, profile SearchProfile) bool {
	if profile.Province != "" && !containsFold(loc.Province, profile.Province) {
		return false
	}
	if profile.City != "" && !containsFold(loc.City, profile.City) {
		return false
	}
	if profile.Zone != "" && !containsFold(loc.Zone, profile.Zone) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
