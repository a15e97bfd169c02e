package describe

import (
	"context"
	"strings"
	"testing"

	"server/internal/domain"
)

func TestStaticDescriberUsesBundleFields(t *testing.T) {
	res, err := NewStaticDescriber().Describe(context.Background(), domain.PropertyBundle{
		"title":         "Helle Altbauwohnung",
		"city":          "Hamburg",
		"property_type": "wohnung",
		"rooms":         4,
		"area":          120,
	})
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if res.Provider != "static" {
		t.Fatalf("Provider = %q, want static", res.Provider)
	}
	for _, want := range []string{"Helle Altbauwohnung", "Hamburg", "Wohnung", "4 Zimmern", "120 m²"} {
		if !strings.Contains(res.Description, want) {
			t.Fatalf("Description missing %q: %s", want, res.Description)
		}
	}
	if !strings.Contains(res.LocationDescription, "Hamburg") {
		t.Fatalf("LocationDescription missing city: %s", res.LocationDescription)
	}
}

func TestStaticDescriberDefaults(t *testing.T) {
	res, err := NewStaticDescriber().Describe(context.Background(), domain.PropertyBundle{})
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	for _, want := range []string{"Attraktive Immobilie", "Wohnung", "3 Zimmern", "80 m²"} {
		if !strings.Contains(res.Description, want) {
			t.Fatalf("Description missing default %q: %s", want, res.Description)
		}
	}
}

func TestStaticDescriberDeterministic(t *testing.T) {
	bundle := domain.PropertyBundle{"title": "Haus", "city": "Berlin"}
	a, _ := NewStaticDescriber().Describe(context.Background(), bundle)
	b, _ := NewStaticDescriber().Describe(context.Background(), bundle)
	if a.Description != b.Description || a.LocationDescription != b.LocationDescription {
		t.Fatalf("static output must be deterministic")
	}
}

func TestStaticDescriberAreaSqmFallback(t *testing.T) {
	res, _ := NewStaticDescriber().Describe(context.Background(), domain.PropertyBundle{
		"area_sqm": 95,
	})
	if !strings.Contains(res.Description, "95 m²") {
		t.Fatalf("Description should pick up area_sqm: %s", res.Description)
	}
}
