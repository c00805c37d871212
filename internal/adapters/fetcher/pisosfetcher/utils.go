package pisosfetcher

import (
	"monitoring-service/internal/core/domain"
	"regexp"
	"strconv"
)

var (
	surfaceTextRe   = regexp.MustCompile(`(\d+)\s*m[²2]`)
	bedroomsTextRe  = regexp.MustCompile(`(?i)(\d+)\s*hab`)
	bathroomsTextRe = regexp.MustCompile(`(?i)(\d+)\s*baño`)
)

// fillFromText добирает характеристики из сплошного текста карточки,
// когда они не нашлись по селекторам
func fillFromText(listing *domain.Listing, text string) {
	if listing.SurfaceArea == nil {
		if m := surfaceTextRe.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				listing.SurfaceArea = &v
			}
		}
	}
	if listing.Bedrooms == nil {
		if m := bedroomsTextRe.FindStringSubmatch(text); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				listing.Bedrooms = &v
			}
		}
	}
	if listing.Bathrooms == nil {
		if m := bathroomsTextRe.FindStringSubmatch(text); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				listing.Bathrooms = &v
			}
		}
	}
}
