package postgres_adapter

import (
	"testing"

	"monitoring-service/internal/core/domain"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestFingerprintStableAcrossSources(t *testing.T) {
	// Один и тот же объект на двух порталах: разные URL, ID и заголовки,
	// площадь отличается на полметра
	pisos := domain.Listing{
		Source:        "pisos",
		ExternalID:    "abc123",
		URL:           "https://www.pisos.com/comprar/piso-1",
		Title:         "Piso reformado en el Centro",
		Latitude:      fptr(41.6518),
		Longitude:     fptr(-0.8763),
		OperationType: domain.OperationSale,
		PropertyType:  "piso",
		SurfaceArea:   fptr(85.3),
		Bedrooms:      iptr(3),
	}
	fotocasa := pisos
	fotocasa.Source = "fotocasa"
	fotocasa.ExternalID = "91882711"
	fotocasa.URL = "https://www.fotocasa.es/vivienda/zaragoza/piso-91882711"
	fotocasa.Title = "PISO REFORMADO ZONA CENTRO"
	fotocasa.SurfaceArea = fptr(84.9)

	left := buildFingerprintPayload(pisos)
	right := buildFingerprintPayload(fotocasa)
	if left != right {
		t.Errorf("payloads differ:\n%s\n%s", left, right)
	}
	if calculateFingerprint(left) != calculateFingerprint(right) {
		t.Error("fingerprints differ for the same physical listing")
	}
}

func TestFingerprintIgnoresTextLocationWhenCoordinatesPresent(t *testing.T) {
	base := domain.Listing{
		Latitude:      fptr(41.6518),
		Longitude:     fptr(-0.8763),
		OperationType: domain.OperationSale,
		PropertyType:  "piso",
		SurfaceArea:   fptr(85),
		Bedrooms:      iptr(3),
		Location:      domain.Location{Province: "Zaragoza", City: "Zaragoza", Zone: "Centro"},
	}
	renamed := base
	renamed.Location = domain.Location{Province: "ZGZ", City: "Casco", Zone: "Viejo"}

	if buildFingerprintPayload(base) != buildFingerprintPayload(renamed) {
		t.Error("text location must not affect the payload when coordinates are present")
	}
}

func TestFingerprintFallsBackToTextLocation(t *testing.T) {
	base := domain.Listing{
		OperationType: domain.OperationSale,
		PropertyType:  "piso",
		SurfaceArea:   fptr(85),
		Bedrooms:      iptr(3),
		Location:      domain.Location{Province: "Zaragoza", City: "Zaragoza", Zone: "Centro"},
	}
	moved := base
	moved.Location.Zone = "Delicias"

	if buildFingerprintPayload(base) == buildFingerprintPayload(moved) {
		t.Error("different zones without coordinates must give different payloads")
	}

	// Регистр и пробелы текстового местоположения не меняют отпечаток
	shouted := base
	shouted.Location = domain.Location{Province: " ZARAGOZA ", City: "Zaragoza", Zone: "CENTRO"}
	if buildFingerprintPayload(base) != buildFingerprintPayload(shouted) {
		t.Error("location text must be compared case-insensitively")
	}
}

func TestFingerprintChangesWithBedrooms(t *testing.T) {
	base := domain.Listing{
		Latitude:      fptr(41.6518),
		Longitude:     fptr(-0.8763),
		OperationType: domain.OperationSale,
		PropertyType:  "piso",
		SurfaceArea:   fptr(85),
		Bedrooms:      iptr(3),
	}
	bigger := base
	bigger.Bedrooms = iptr(4)

	if buildFingerprintPayload(base) == buildFingerprintPayload(bigger) {
		t.Error("bedroom count must be part of the payload")
	}
}

func TestNormalizeAreaToBucket(t *testing.T) {
	tests := []struct {
		area   *float64
		bucket float64
		want   string
	}{
		{nil, 2.0, "null"},
		{fptr(84.9), 2.0, "42"},
		{fptr(85.3), 2.0, "42"},
		{fptr(86.0), 2.0, "43"},
		{fptr(85.3), 0, "85"}, // нулевая корзина заменяется единичной
	}

	for _, tt := range tests {
		got := normalizeAreaToBucket(tt.area, tt.bucket)
		if got != tt.want {
			t.Errorf("normalizeAreaToBucket(%v, %v) = %q; want %q", tt.area, tt.bucket, got, tt.want)
		}
	}
}

func TestCalculateFingerprint(t *testing.T) {
	first := calculateFingerprint("geohash|sale|piso|42|3")
	second := calculateFingerprint("geohash|sale|piso|42|3")
	other := calculateFingerprint("geohash|sale|piso|42|4")

	if first != second {
		t.Error("fingerprint must be deterministic")
	}
	if first == other {
		t.Error("different payloads must give different fingerprints")
	}
	if len(first) != 64 {
		t.Errorf("fingerprint length: got %d, want 64 hex chars", len(first))
	}
}
