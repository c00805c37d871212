package genericfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"monitoring-service/internal/core/domain"
)

func serveHTML(t *testing.T, path, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
}

func TestFetchPageUsesConfiguredSelectors(t *testing.T) {
	const catalogPage = `<html><body>
<div class="inmueble">
  <a class="detalle" href="/inmueble/ALT123">Ver</a>
  <span class="nombre">Piso en Delicias</span>
  <span class="importe">98.000 &euro;</span>
</div>
<div class="inmueble">
  <a class="detalle" href="/inmueble/ALT124">Ver</a>
  <span class="nombre">Piso en Torrero</span>
  <span class="importe">81.500 &euro;</span>
</div>
<a class="paginacion-siguiente" href="/venta?page=2">Siguiente</a>
</body></html>`

	srv := serveHTML(t, "/venta", catalogPage)
	defer srv.Close()

	adapter, err := NewGenericFetcherAdapter(PortalConfig{
		Name:         "altamira",
		BaseURL:      srv.URL,
		PropertyType: "piso",
		Selectors: map[string]string{
			"item":      "div.inmueble",
			"link":      "a.detalle",
			"title":     "span.nombre",
			"price":     "span.importe",
			"next_page": "a.paginacion-siguiente",
		},
	}, 0)
	if err != nil {
		t.Fatalf("NewGenericFetcherAdapter: %v", err)
	}

	page, err := adapter.FetchPage(context.Background(), srv.URL+"/venta")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if len(page.Listings) != 2 {
		t.Fatalf("listings: got %d, want 2", len(page.Listings))
	}

	first := page.Listings[0]
	if first.Source != "altamira" {
		t.Errorf("source: got %q, want %q", first.Source, "altamira")
	}
	wantURL := srv.URL + "/inmueble/ALT123"
	if first.URL != wantURL {
		t.Errorf("url: got %q, want %q", first.URL, wantURL)
	}
	if first.ExternalID != domain.ExternalIDFromURL("altamira", wantURL) {
		t.Errorf("external id: got %q, want hash of source and url", first.ExternalID)
	}
	if first.Title != "Piso en Delicias" {
		t.Errorf("title: got %q", first.Title)
	}
	if first.Price == nil || *first.Price != 98000 {
		t.Errorf("price: got %v, want 98000", first.Price)
	}
	if first.OperationType != domain.OperationSale {
		t.Errorf("operation: got %q, want %q", first.OperationType, domain.OperationSale)
	}
	if first.PropertyType != "piso" {
		t.Errorf("property type: got %q, want %q", first.PropertyType, "piso")
	}

	wantNext := srv.URL + "/venta?page=2"
	if page.NextPageURL != wantNext {
		t.Errorf("next page: got %q, want %q", page.NextPageURL, wantNext)
	}
}

func TestFetchPageFallsBackToDefaultSelectors(t *testing.T) {
	const plainPage = `<html><body>
<article>
  <a href="/prop/1">Chalet con piscina</a>
  <div class="price">320.000 &euro;</div>
</article>
</body></html>`

	srv := serveHTML(t, "/catalogo", plainPage)
	defer srv.Close()

	adapter, err := NewGenericFetcherAdapter(PortalConfig{
		Name:    "aliseda",
		BaseURL: srv.URL,
	}, 0)
	if err != nil {
		t.Fatalf("NewGenericFetcherAdapter: %v", err)
	}

	page, err := adapter.FetchPage(context.Background(), srv.URL+"/catalogo")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if len(page.Listings) != 1 {
		t.Fatalf("listings: got %d, want 1", len(page.Listings))
	}

	got := page.Listings[0]
	// Заголовочного элемента нет, имя берётся из текста ссылки
	if got.Title != "Chalet con piscina" {
		t.Errorf("title: got %q, want %q", got.Title, "Chalet con piscina")
	}
	if got.Price == nil || *got.Price != 320000 {
		t.Errorf("price: got %v, want 320000", got.Price)
	}
	if page.NextPageURL != "" {
		t.Errorf("next page: got %q, want empty", page.NextPageURL)
	}
}

func TestFetchPageReturnsFetchErrorOnHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	adapter, err := NewGenericFetcherAdapter(PortalConfig{
		Name:    "altamira",
		BaseURL: srv.URL,
	}, 0)
	if err != nil {
		t.Fatalf("NewGenericFetcherAdapter: %v", err)
	}

	_, err = adapter.FetchPage(context.Background(), srv.URL+"/venta")
	if err == nil {
		t.Fatal("FetchPage must fail on HTTP 503")
	}

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type: got %T, want *domain.FetchError", err)
	}
	if fetchErr.Source != "altamira" {
		t.Errorf("source: got %q, want %q", fetchErr.Source, "altamira")
	}
	if fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status code: got %d, want %d", fetchErr.StatusCode, http.StatusServiceUnavailable)
	}
}
