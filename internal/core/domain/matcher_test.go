package domain

import "testing"

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func sampleListing() Listing {
	return Listing{
		Source:      "pisos",
		ExternalID:  "1",
		Price:       fptr(180000),
		SurfaceArea: fptr(85),
		Bedrooms:    iptr(3),
		Bathrooms:   iptr(2),
		Location:    Location{Province: "Zaragoza", City: "Zaragoza", Zone: "Centro"},
		Features:    map[string]bool{FeatureElevator: true},
	}
}

func TestMatchesPriceRange(t *testing.T) {
	listing := sampleListing()

	tests := []struct {
		name    string
		profile SearchProfile
		want    bool
	}{
		{"no bounds", SearchProfile{}, true},
		{"inside range", SearchProfile{PriceMin: fptr(100000), PriceMax: fptr(250000)}, true},
		{"above max", SearchProfile{PriceMax: fptr(150000)}, false},
		{"below min", SearchProfile{PriceMin: fptr(200000)}, false},
		{"boundary is inclusive", SearchProfile{PriceMax: fptr(180000)}, true},
	}

	for _, tt := range tests {
		if got := Matches(listing, tt.profile); got != tt.want {
			t.Errorf("%s: Matches = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatchesMissingFieldFailsClosed(t *testing.T) {
	listing := sampleListing()
	listing.Price = nil

	if Matches(listing, SearchProfile{PriceMax: fptr(250000)}) {
		t.Error("listing without price must not pass a price bound")
	}
	if !Matches(listing, SearchProfile{}) {
		t.Error("listing without price must pass when no bound is set")
	}
}

func TestMatchesBedrooms(t *testing.T) {
	listing := sampleListing()

	if !Matches(listing, SearchProfile{BedroomsMin: iptr(2)}) {
		t.Error("3 bedrooms should satisfy min 2")
	}
	if Matches(listing, SearchProfile{BedroomsMin: iptr(4)}) {
		t.Error("3 bedrooms should not satisfy min 4")
	}
	if Matches(listing, SearchProfile{BedroomsMax: iptr(2)}) {
		t.Error("3 bedrooms should not satisfy max 2")
	}
}

func TestMatchesLocation(t *testing.T) {
	listing := sampleListing()

	tests := []struct {
		name    string
		profile SearchProfile
		want    bool
	}{
		{"city match is case-insensitive", SearchProfile{City: "zaragoza"}, true},
		{"substring matches", SearchProfile{City: "zarag"}, true},
		{"wrong city", SearchProfile{City: "Madrid"}, false},
		{"province and city both checked", SearchProfile{Province: "Huesca", City: "Zaragoza"}, false},
		{"zone checked", SearchProfile{Zone: "Centro"}, true},
		{"wrong zone", SearchProfile{Zone: "Delicias"}, false},
	}

	for _, tt := range tests {
		if got := Matches(listing, tt.profile); got != tt.want {
			t.Errorf("%s: Matches = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatchesRequiredFeatures(t *testing.T) {
	listing := sampleListing()

	if !Matches(listing, SearchProfile{RequiredFeatures: []string{FeatureElevator}}) {
		t.Error("present feature should match")
	}
	if Matches(listing, SearchProfile{RequiredFeatures: []string{FeaturePool}}) {
		t.Error("missing feature should not match")
	}

	listing.Features[FeaturePool] = false
	if Matches(listing, SearchProfile{RequiredFeatures: []string{FeaturePool}}) {
		t.Error("explicit false should count as missing")
	}
}

func TestUsesSource(t *testing.T) {
	all := SearchProfile{}
	if !all.UsesSource("pisos") {
		t.Error("profile without sources should use every source")
	}

	limited := SearchProfile{Sources: []string{"pisos", "solvia"}}
	if !limited.UsesSource("solvia") {
		t.Error("listed source should be used")
	}
	if limited.UsesSource("fotocasa") {
		t.Error("unlisted source should be skipped")
	}
}
