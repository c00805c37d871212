package fotocasafetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"monitoring-service/internal/core/domain"
)

const firstPageJSON = `{
  "listings": [
    {
      "id": 91882711,
      "url": "https://www.fotocasa.es/vivienda/zaragoza/piso-91882711",
      "title": "Piso en Calle del Coso",
      "description": "Amplio piso reformado",
      "price": 240000,
      "surface": 95.5,
      "rooms": 3,
      "bathrooms": 2,
      "floor": "4",
      "address": {"province": "Zaragoza", "city": "Zaragoza", "zone": "Casco Antiguo", "postal_code": "50001"},
      "coordinates": {"latitude": 41.6518, "longitude": -0.8763},
      "property_type": "piso",
      "features": ["Ascensor", "terraza", "air_conditioning", "jacuzzi"],
      "agency": "Inmobiliaria Delicias",
      "images": ["https://static.fotocasa.es/images/91882711/1.jpg"],
      "published_at": "2025-03-08T10:30:00Z"
    },
    {
      "id": 0,
      "url": "",
      "title": "Sin identificador"
    },
    {
      "id": 91882712,
      "url": "https://www.fotocasa.es/vivienda/zaragoza/piso-91882712",
      "title": "Estudio centrico",
      "price": 125000,
      "published_at": "not-a-date"
    }
  ],
  "pagination": {"page": 1, "pageSize": 30, "totalCount": 45}
}`

func serveJSON(t *testing.T, path, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestFetchPageMapsAPIResponse(t *testing.T) {
	srv := serveJSON(t, "/api/v1/search", firstPageJSON)
	defer srv.Close()

	adapter, err := NewFotocasaFetcherAdapter(srv.URL+"/api/v1/search", 0)
	if err != nil {
		t.Fatalf("NewFotocasaFetcherAdapter: %v", err)
	}

	searchURL, err := adapter.BuildSearchURL(domain.SearchProfile{City: "Zaragoza"})
	if err != nil {
		t.Fatalf("BuildSearchURL: %v", err)
	}

	page, err := adapter.FetchPage(context.Background(), searchURL)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	// Запись без id и url не проходит в домен
	if len(page.Listings) != 2 {
		t.Fatalf("listings: got %d, want 2", len(page.Listings))
	}

	first := page.Listings[0]
	if first.Source != "fotocasa" {
		t.Errorf("source: got %q, want %q", first.Source, "fotocasa")
	}
	if first.ExternalID != "91882711" {
		t.Errorf("external id: got %q, want %q", first.ExternalID, "91882711")
	}
	if first.Price == nil || *first.Price != 240000 {
		t.Errorf("price: got %v, want 240000", first.Price)
	}
	if first.SurfaceArea == nil || *first.SurfaceArea != 95.5 {
		t.Errorf("surface: got %v, want 95.5", first.SurfaceArea)
	}
	if first.Bedrooms == nil || *first.Bedrooms != 3 {
		t.Errorf("bedrooms: got %v, want 3", first.Bedrooms)
	}
	if first.Floor == nil || *first.Floor != "4" {
		t.Errorf("floor: got %v, want 4", first.Floor)
	}
	if first.Location.Province != "Zaragoza" || first.Location.Zone != "Casco Antiguo" || first.Location.PostalCode != "50001" {
		t.Errorf("location: got %+v", first.Location)
	}
	if first.Latitude == nil || *first.Latitude != 41.6518 {
		t.Errorf("latitude: got %v, want 41.6518", first.Latitude)
	}
	if first.Longitude == nil || *first.Longitude != -0.8763 {
		t.Errorf("longitude: got %v, want -0.8763", first.Longitude)
	}
	if first.OperationType != domain.OperationSale {
		t.Errorf("operation: got %q, want %q", first.OperationType, domain.OperationSale)
	}
	if first.Agency != "Inmobiliaria Delicias" {
		t.Errorf("agency: got %q", first.Agency)
	}

	// Испанские и английские ключи признаков сходятся в одни доменные,
	// неизвестные отбрасываются
	wantFeatures := map[string]bool{
		domain.FeatureElevator: true,
		domain.FeatureTerrace:  true,
		domain.FeatureAC:       true,
	}
	if len(first.Features) != len(wantFeatures) {
		t.Errorf("features: got %v, want %v", first.Features, wantFeatures)
	}
	for key := range wantFeatures {
		if !first.Features[key] {
			t.Errorf("feature %q missing in %v", key, first.Features)
		}
	}

	wantPublished := time.Date(2025, 3, 8, 10, 30, 0, 0, time.UTC)
	if first.PublishedAt == nil || !first.PublishedAt.Equal(wantPublished) {
		t.Errorf("published at: got %v, want %s", first.PublishedAt, wantPublished)
	}

	second := page.Listings[1]
	if second.ExternalID != "91882712" {
		t.Errorf("second external id: got %q, want %q", second.ExternalID, "91882712")
	}
	if second.PublishedAt != nil {
		t.Errorf("unparseable published_at must stay nil, got %v", second.PublishedAt)
	}

	// 30 из 45 объявлений показаны, дальше вторая страница
	wantNext := srv.URL + "/api/v1/search?location=zaragoza&operation=comprar&page=2&pageSize=30"
	if page.NextPageURL != wantNext {
		t.Errorf("next page: got %q, want %q", page.NextPageURL, wantNext)
	}
}

func TestFetchPageStopsOnLastPage(t *testing.T) {
	const lastPageJSON = `{
  "listings": [
    {"id": 7, "url": "https://www.fotocasa.es/vivienda/zaragoza/piso-7", "title": "Ultimo piso"}
  ],
  "pagination": {"page": 2, "pageSize": 30, "totalCount": 45}
}`
	srv := serveJSON(t, "/api/v1/search", lastPageJSON)
	defer srv.Close()

	adapter, err := NewFotocasaFetcherAdapter(srv.URL+"/api/v1/search", 0)
	if err != nil {
		t.Fatalf("NewFotocasaFetcherAdapter: %v", err)
	}

	page, err := adapter.FetchPage(context.Background(), srv.URL+"/api/v1/search?location=zaragoza&operation=comprar&page=2&pageSize=30")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if len(page.Listings) != 1 {
		t.Errorf("listings: got %d, want 1", len(page.Listings))
	}
	if page.NextPageURL != "" {
		t.Errorf("next page after the last one: got %q, want empty", page.NextPageURL)
	}
}

func TestFetchPageReturnsParseErrorOnMalformedBody(t *testing.T) {
	srv := serveJSON(t, "/api/v1/search", `<html>maintenance</html>`)
	defer srv.Close()

	adapter, err := NewFotocasaFetcherAdapter(srv.URL+"/api/v1/search", 0)
	if err != nil {
		t.Fatalf("NewFotocasaFetcherAdapter: %v", err)
	}

	_, err = adapter.FetchPage(context.Background(), srv.URL+"/api/v1/search?location=zaragoza")
	if err == nil {
		t.Fatal("FetchPage must fail on a non-JSON body")
	}

	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type: got %T, want *domain.ParseError", err)
	}
	if parseErr.Source != "fotocasa" {
		t.Errorf("source: got %q, want %q", parseErr.Source, "fotocasa")
	}
}

func TestFetchPageReturnsFetchErrorOnHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	adapter, err := NewFotocasaFetcherAdapter(srv.URL+"/api/v1/search", 0)
	if err != nil {
		t.Fatalf("NewFotocasaFetcherAdapter: %v", err)
	}

	_, err = adapter.FetchPage(context.Background(), srv.URL+"/api/v1/search?location=zaragoza")
	if err == nil {
		t.Fatal("FetchPage must fail on HTTP 403")
	}

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type: got %T, want *domain.FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusForbidden {
		t.Errorf("status code: got %d, want %d", fetchErr.StatusCode, http.StatusForbidden)
	}
}
