package fotocasafetcher

import (
	"errors"
	"testing"

	"monitoring-service/internal/core/domain"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestBuildSearchURL(t *testing.T) {
	adapter, err := NewFotocasaFetcherAdapter("https://api.fotocasa.es/api/v1/search", 0)
	if err != nil {
		t.Fatalf("NewFotocasaFetcherAdapter: %v", err)
	}

	tests := []struct {
		name    string
		profile domain.SearchProfile
		want    string
	}{
		{
			name:    "sale by city",
			profile: domain.SearchProfile{City: "Zaragoza"},
			want:    "https://api.fotocasa.es/api/v1/search?location=zaragoza&operation=comprar&page=1&pageSize=30",
		},
		{
			name:    "rent switches operation",
			profile: domain.SearchProfile{City: "Madrid", OperationType: domain.OperationRent},
			want:    "https://api.fotocasa.es/api/v1/search?location=madrid&operation=alquiler&page=1&pageSize=30",
		},
		{
			name: "bounds and property type become params",
			profile: domain.SearchProfile{
				City:         "Zaragoza",
				PropertyType: "piso",
				PriceMax:     fptr(250000),
				BedroomsMin:  iptr(2),
				SurfaceMin:   fptr(70),
			},
			want: "https://api.fotocasa.es/api/v1/search?location=zaragoza&maxPrice=250000&minRooms=2&minSurface=70&operation=comprar&page=1&pageSize=30&propertyType=piso",
		},
		{
			name:    "province used when city is empty",
			profile: domain.SearchProfile{Province: "Teruel"},
			want:    "https://api.fotocasa.es/api/v1/search?location=teruel&operation=comprar&page=1&pageSize=30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := adapter.BuildSearchURL(tt.profile)
			if err != nil {
				t.Fatalf("BuildSearchURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildSearchURL = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestBuildSearchURLRequiresLocation(t *testing.T) {
	adapter, err := NewFotocasaFetcherAdapter("https://api.fotocasa.es/api/v1/search", 0)
	if err != nil {
		t.Fatalf("NewFotocasaFetcherAdapter: %v", err)
	}

	_, err = adapter.BuildSearchURL(domain.SearchProfile{PriceMax: fptr(100000)})
	if err == nil {
		t.Fatal("profile without location must be rejected")
	}

	var confErr *domain.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("error type: got %T, want *domain.ConfigurationError", err)
	}
	if confErr.Source != "fotocasa" {
		t.Errorf("error source: got %q, want %q", confErr.Source, "fotocasa")
	}
}
