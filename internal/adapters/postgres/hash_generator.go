package postgres_adapter

import (
	"crypto/sha256"
	"fmt"
	"monitoring-service/internal/core/domain"
	"strings"

	"github.com/mmcloughlin/geohash"
)

const geohashPrecision = 5

func normalizeAreaToBucket(area *float64, bucketSize float64) string {
	if area == nil {
		return "null"
	}
	if bucketSize <= 0 {
		bucketSize = 1.0 // Защита от деления на ноль
	}
	bucketIndex := int(*area / bucketSize)
	return fmt.Sprintf("%d", bucketIndex)
}

// buildFingerprintPayload собирает стабильную строку из ключевых полей
// объявления. Один и тот же объект, опубликованный на разных порталах,
// должен давать одинаковую строку, поэтому URL, ID и фотографии сюда
// не входят, а площадь огрубляется до корзины в 2 м².
func buildFingerprintPayload(l domain.Listing) string {
	parts := make([]string, 0, 8)

	addString := func(val string) {
		if val != "" {
			parts = append(parts, strings.ToLower(strings.TrimSpace(val)))
		} else {
			parts = append(parts, "null")
		}
	}

	addInt := func(val *int) {
		if val != nil {
			parts = append(parts, fmt.Sprintf("%d", *val))
		} else {
			parts = append(parts, "null")
		}
	}

	// Координаты дают самый стабильный признак. Без них опираемся
	// на текстовое местоположение.
	if l.Latitude != nil && l.Longitude != nil {
		parts = append(parts, geohash.Encode(*l.Latitude, *l.Longitude)[:geohashPrecision])
	} else {
		parts = append(parts, "null")
		addString(l.Location.Province)
		addString(l.Location.City)
		addString(l.Location.Zone)
	}

	addString(l.OperationType)
	addString(l.PropertyType)
	parts = append(parts, normalizeAreaToBucket(l.SurfaceArea, 2.0))
	addInt(l.Bedrooms)

	return strings.Join(parts, "|")
}

// calculateFingerprint вычисляет SHA256 хэш строки признаков.
func calculateFingerprint(payload string) string {
	h := sha256.New()
	h.Write([]byte(payload))
	return fmt.Sprintf("%x", h.Sum(nil))
}
