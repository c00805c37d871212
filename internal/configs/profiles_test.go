package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfilesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profiles file: %v", err)
	}
	return path
}

func TestLoadProfiles(t *testing.T) {
	const content = `{
  "profiles": [
    {
      "name": "piso-zaragoza-centro",
      "city": "Zaragoza",
      "price_max": 250000,
      "bedrooms_min": 2,
      "required_features": ["elevator"],
      "operation_type": "sale",
      "sources": ["pisos", "fotocasa"]
    },
    {
      "name": "alquiler-madrid",
      "enabled": false,
      "city": "Madrid",
      "operation_type": "rent"
    }
  ],
  "sources": [
    {
      "name": "altamira",
      "base_url": "https://www.altamirainmuebles.com",
      "search_path": "/venta-pisos/{province}",
      "selectors": {"item": "div.inmueble"}
    }
  ]
}`

	doc, err := LoadProfiles(writeProfilesFile(t, content))
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}

	if len(doc.Profiles) != 2 {
		t.Fatalf("profiles: got %d, want 2", len(doc.Profiles))
	}

	first := doc.Profiles[0]
	if first.Name != "piso-zaragoza-centro" {
		t.Errorf("name: got %q", first.Name)
	}
	if !first.Enabled {
		t.Error("enabled must default to true when absent")
	}
	if first.PriceMax == nil || *first.PriceMax != 250000 {
		t.Errorf("price_max: got %v, want 250000", first.PriceMax)
	}
	if first.BedroomsMin == nil || *first.BedroomsMin != 2 {
		t.Errorf("bedrooms_min: got %v, want 2", first.BedroomsMin)
	}
	if len(first.RequiredFeatures) != 1 || first.RequiredFeatures[0] != "elevator" {
		t.Errorf("required_features: got %v", first.RequiredFeatures)
	}
	if len(first.Sources) != 2 {
		t.Errorf("sources: got %v, want two entries", first.Sources)
	}

	second := doc.Profiles[1]
	if second.Enabled {
		t.Error("explicit enabled=false must be preserved")
	}

	if len(doc.Sources) != 1 {
		t.Fatalf("portal sources: got %d, want 1", len(doc.Sources))
	}
	src := doc.Sources[0]
	if src.Name != "altamira" || src.BaseURL != "https://www.altamirainmuebles.com" {
		t.Errorf("portal source: got %+v", src)
	}
	if src.SearchPath != "/venta-pisos/{province}" {
		t.Errorf("search_path: got %q", src.SearchPath)
	}
	if src.Selectors["item"] != "div.inmueble" {
		t.Errorf("selectors: got %v", src.Selectors)
	}
}

func TestLoadProfilesRejectsInvalidDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "profile without name",
			content: `{"profiles": [{"city": "Zaragoza"}]}`,
		},
		{
			name:    "unknown profile field",
			content: `{"profiles": [{"name": "x", "colour": "green"}]}`,
		},
		{
			name:    "unknown operation type",
			content: `{"profiles": [{"name": "x", "operation_type": "swap"}]}`,
		},
		{
			name:    "portal source without base_url",
			content: `{"profiles": [], "sources": [{"name": "altamira"}]}`,
		},
		{
			name:    "not json at all",
			content: `profiles: []`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadProfiles(writeProfilesFile(t, tt.content)); err == nil {
				t.Error("invalid document must be rejected")
			}
		})
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	if _, err := LoadProfiles(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing file must produce an error")
	}
}
