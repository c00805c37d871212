package domain

import "testing"

func TestCleanPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"250.000 €", 250000, true},
		{"1.250,50 €", 1250.50, true},
		{"150,000", 150000, true},
		{"99,5", 99.5, true},
		{"1.234.567", 1234567, true},
		{"850 €/mes", 850, true},
		{"1,200.50", 1200.50, true},
		{"", 0, false},
		{"Consultar precio", 0, false},
	}

	for _, tt := range tests {
		got := CleanPrice(tt.raw)
		if !tt.ok {
			if got != nil {
				t.Errorf("CleanPrice(%q) = %v; want nil", tt.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("CleanPrice(%q) = nil; want %.2f", tt.raw, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("CleanPrice(%q) = %.2f; want %.2f", tt.raw, *got, tt.want)
		}
	}
}

func TestCleanSurface(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"85 m²", 85, true},
		{"120m2", 120, true},
		{"95,5 m²", 95.5, true},
		{"Superficie: 70 metros", 70, true},
		{"piso de 3 plantas", 3, true}, // запасной вариант: первое число
		{"", 0, false},
		{"sin datos", 0, false},
	}

	for _, tt := range tests {
		got := CleanSurface(tt.raw)
		if !tt.ok {
			if got != nil {
				t.Errorf("CleanSurface(%q) = %v; want nil", tt.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("CleanSurface(%q) = nil; want %.1f", tt.raw, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("CleanSurface(%q) = %.1f; want %.1f", tt.raw, *got, tt.want)
		}
	}
}

func TestCleanRoomCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"3 hab", 3, true},
		{"2 dormitorios", 2, true},
		{"1 baño", 1, true},
		{"", 0, false},
		{"sin habitaciones definidas", 0, false},
	}

	for _, tt := range tests {
		got := CleanRoomCount(tt.raw)
		if !tt.ok {
			if got != nil {
				t.Errorf("CleanRoomCount(%q) = %v; want nil", tt.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("CleanRoomCount(%q) = nil; want %d", tt.raw, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("CleanRoomCount(%q) = %d; want %d", tt.raw, *got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Zaragoza", "zaragoza"},
		{"Alcalá de Henares", "alcala-de-henares"},
		{"A Coruña", "a-coruna"},
		{"  Madrid  ", "madrid"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.raw); got != tt.want {
			t.Errorf("Slugify(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestExternalIDFromURL(t *testing.T) {
	id := ExternalIDFromURL("pisos", "https://www.pisos.com/piso/123")

	if len(id) != 16 {
		t.Errorf("id length: got %d, want 16", len(id))
	}

	again := ExternalIDFromURL("pisos", "https://www.pisos.com/piso/123")
	if id != again {
		t.Errorf("id is not stable: %q != %q", id, again)
	}

	other := ExternalIDFromURL("solvia", "https://www.pisos.com/piso/123")
	if id == other {
		t.Error("different sources must produce different ids for the same URL")
	}
}
