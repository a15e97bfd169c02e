package describe

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"server/internal/domain"
)

// Template strings are placeholder business content, kept as data so they
// can be swapped without touching the pipeline.
const (
	descriptionTemplateDE = "%s in %s: Diese %s mit %d Zimmern und ca. %d m² Wohnfläche überzeugt durch eine durchdachte Aufteilung und viel Tageslicht. Die Immobilie befindet sich in einer erstklassigen Lage mit ausgezeichneter Verkehrsanbindung und vollständigen Einrichtungen und ist eine ideale Wohnwahl."

	locationTemplateDE = "Die Umgebung von %s bietet eine gewachsene Wohngegend mit guter Anbindung an den öffentlichen Nahverkehr, Einkaufsmöglichkeiten des täglichen Bedarfs sowie Schulen, Ärzten und Grünanlagen in unmittelbarer Nähe."
)

// StaticDescriber produces deterministic template-based texts. It never
// fails, which makes it the terminal fallback of every describer chain.
type StaticDescriber struct{}

// NewStaticDescriber returns the template-based describer.
func NewStaticDescriber() *StaticDescriber {
	return &StaticDescriber{}
}

func (s *StaticDescriber) Describe(ctx context.Context, bundle domain.PropertyBundle) (*Result, error) {
	c := cases.Title(language.German)

	title := bundle.String("title", "Attraktive Immobilie")
	city := bundle.String("city", bundle.String("address", "zentraler Lage"))
	propertyType := c.String(bundle.String("property_type", "Wohnung"))
	rooms := bundle.Int("rooms")
	if rooms <= 0 {
		rooms = 3
	}
	area := bundle.Int("area")
	if area <= 0 {
		area = bundle.Int("area_sqm")
	}
	if area <= 0 {
		area = 80
	}

	return &Result{
		Description:         fmt.Sprintf(descriptionTemplateDE, title, city, strings.TrimSpace(propertyType), rooms, area),
		LocationDescription: fmt.Sprintf(locationTemplateDE, city),
		Provider:            staticProviderName,
	}, nil
}

var _ Describer = (*StaticDescriber)(nil)
