package genericfetcher

import (
	"errors"
	"testing"

	"monitoring-service/internal/core/domain"
)

func fptr(v float64) *float64 { return &v }

func TestBuildSearchURLExpandsTemplate(t *testing.T) {
	adapter, err := NewGenericFetcherAdapter(PortalConfig{
		Name:       "solvia",
		BaseURL:    "https://www.solvia.es/",
		SearchPath: "/es/comprar/viviendas/{province}/{city}",
	}, 0)
	if err != nil {
		t.Fatalf("NewGenericFetcherAdapter: %v", err)
	}

	tests := []struct {
		name    string
		profile domain.SearchProfile
		want    string
	}{
		{
			name:    "full location",
			profile: domain.SearchProfile{Province: "Zaragoza", City: "Zaragoza"},
			want:    "https://www.solvia.es/es/comprar/viviendas/zaragoza/zaragoza",
		},
		{
			name:    "city segment dropped when city is empty",
			profile: domain.SearchProfile{Province: "Zaragoza"},
			want:    "https://www.solvia.es/es/comprar/viviendas/zaragoza",
		},
		{
			name:    "no location falls back to the whole catalog",
			profile: domain.SearchProfile{},
			want:    "https://www.solvia.es/es/comprar/viviendas",
		},
		{
			name:    "accents are slugged away",
			profile: domain.SearchProfile{Province: "Cádiz", City: "Cádiz"},
			want:    "https://www.solvia.es/es/comprar/viviendas/cadiz/cadiz",
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

func TestBuildSearchURLMapsParams(t *testing.T) {
	adapter, err := NewGenericFetcherAdapter(PortalConfig{
		Name:       "bbva-vivienda",
		BaseURL:    "https://www.bbvavivienda.com",
		SearchPath: "/venta",
		Params: map[string]string{
			"city":      "municipio",
			"price_max": "precioMaximo",
		},
	}, 0)
	if err != nil {
		t.Fatalf("NewGenericFetcherAdapter: %v", err)
	}

	got, err := adapter.BuildSearchURL(domain.SearchProfile{City: "Teruel", PriceMax: fptr(150000)})
	if err != nil {
		t.Fatalf("BuildSearchURL: %v", err)
	}

	want := "https://www.bbvavivienda.com/venta?municipio=Teruel&precioMaximo=150000"
	if got != want {
		t.Errorf("BuildSearchURL = %q; want %q", got, want)
	}
}

func TestBuildSearchURLSkipsUnsetFilters(t *testing.T) {
	adapter, err := NewGenericFetcherAdapter(PortalConfig{
		Name:       "bbva-vivienda",
		BaseURL:    "https://www.bbvavivienda.com",
		SearchPath: "/venta",
		Params: map[string]string{
			"city":      "municipio",
			"price_max": "precioMaximo",
		},
	}, 0)
	if err != nil {
		t.Fatalf("NewGenericFetcherAdapter: %v", err)
	}

	got, err := adapter.BuildSearchURL(domain.SearchProfile{})
	if err != nil {
		t.Fatalf("BuildSearchURL: %v", err)
	}

	want := "https://www.bbvavivienda.com/venta"
	if got != want {
		t.Errorf("BuildSearchURL = %q; want %q", got, want)
	}
}

func TestNewGenericFetcherAdapterValidatesConfig(t *testing.T) {
	var confErr *domain.ConfigurationError

	_, err := NewGenericFetcherAdapter(PortalConfig{BaseURL: "https://example.com"}, 0)
	if !errors.As(err, &confErr) {
		t.Errorf("nameless config: got %v, want *domain.ConfigurationError", err)
	}

	_, err = NewGenericFetcherAdapter(PortalConfig{Name: "altamira", BaseURL: "altamira.es"}, 0)
	if !errors.As(err, &confErr) {
		t.Errorf("base URL without scheme: got %v, want *domain.ConfigurationError", err)
	}
}
