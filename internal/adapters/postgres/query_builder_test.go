package postgres_adapter

import (
	"reflect"
	"testing"

	"monitoring-service/internal/core/domain"
)

func TestApplyListingFiltersEmpty(t *testing.T) {
	where, args := applyListingFilters(domain.ListingFilters{})

	if where != "" {
		t.Errorf("where clause: got %q, want empty", where)
	}
	if len(args) != 0 {
		t.Errorf("args: got %v, want none", args)
	}
}

func TestApplyListingFiltersNumbersPlaceholdersSequentially(t *testing.T) {
	filters := domain.ListingFilters{
		Source:     "pisos",
		Province:   "Zaragoza",
		City:       "Zaragoza",
		PriceMin:   fptr(100000),
		PriceMax:   fptr(250000),
		SurfaceMin: fptr(70),
	}

	where, args := applyListingFilters(filters)

	wantWhere := "WHERE source = $1 AND province ILIKE $2 AND city ILIKE $3 AND price >= $4 AND price <= $5 AND surface_area >= $6"
	if where != wantWhere {
		t.Errorf("where clause:\ngot  %q\nwant %q", where, wantWhere)
	}

	wantArgs := []interface{}{"pisos", "Zaragoza", "Zaragoza", 100000.0, 250000.0, 70.0}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args: got %v, want %v", args, wantArgs)
	}
}

func TestApplyListingFiltersPartial(t *testing.T) {
	where, args := applyListingFilters(domain.ListingFilters{City: "Teruel", PriceMax: fptr(90000)})

	wantWhere := "WHERE city ILIKE $1 AND price <= $2"
	if where != wantWhere {
		t.Errorf("where clause: got %q, want %q", where, wantWhere)
	}
	if len(args) != 2 || args[0] != "Teruel" || args[1] != 90000.0 {
		t.Errorf("args: got %v", args)
	}
}

func TestAddFloatFilter(t *testing.T) {
	qb := newQueryBuilder()
	qb.AddFloatFilter("price", nil, fptr(250000))
	where, args := qb.build()

	if where != "WHERE price <= $1" {
		t.Errorf("where clause: got %q, want %q", where, "WHERE price <= $1")
	}
	if len(args) != 1 || args[0] != 250000.0 {
		t.Errorf("args: got %v", args)
	}

	qb = newQueryBuilder()
	qb.AddFloatFilter("surface_area", fptr(70), nil)
	where, _ = qb.build()
	if where != "WHERE surface_area >= $1" {
		t.Errorf("where clause: got %q, want %q", where, "WHERE surface_area >= $1")
	}
}
