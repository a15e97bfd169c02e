package expose

import (
	"fmt"
	"time"

	"server/internal/domain"
)

// Field keys mirror what the listing frontend submits; the projection keeps
// their original spelling on the wire.
const (
	defaultDescriptionDE = "Dies ist eine professionelle Exposé in einer erstklassigen Lage mit ausgezeichneter Verkehrsanbindung, vollständigen Einrichtungen und ist eine ideale Wohnwahl."
	defaultImageCategory = "wohnzimmer"
)

// Preview is the display-ready projection of draft, images and completed
// job. It is a view: derived fresh on every request, never stored.
type Preview struct {
	Title               string         `json:"title"`
	Address             string         `json:"address"`
	Price               float64        `json:"price"`
	Rooms               int            `json:"rooms"`
	Bedrooms            int            `json:"bedrooms"`
	Bathrooms           int            `json:"bathrooms"`
	Area                float64        `json:"area"`
	YearBuilt           int            `json:"yearBuilt"`
	HeatingSystem       string         `json:"heating_system"`
	EnergySource        string         `json:"energy_source"`
	EnergyCertificate   string         `json:"energy_certificate"`
	Parking             string         `json:"parking"`
	RenovationQuality   string         `json:"renovation_quality"`
	FloorType           string         `json:"floor_type"`
	Description         string         `json:"description"`
	LocationDescription string         `json:"locationDescription"`
	ContactPerson       string         `json:"contact_person"`
	ContactPhone        string         `json:"contact_phone"`
	ContactEmail        string         `json:"contact_email"`
	ContactPerson2      string         `json:"contact_person2"`
	ContactPhone2       string         `json:"contact_phone2"`
	ContactEmail2       string         `json:"contact_email2"`
	AgentInfo           any            `json:"agentInfo"`
	PDFURL              string         `json:"pdfUrl"`
	Images              []PreviewImage `json:"images"`
	FloorPlanDetails    []string       `json:"floorPlanDetails"`
}

// PreviewImage is the trimmed image shape the document templates consume.
type PreviewImage struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Alt       string    `json:"alt"`
	Category  string    `json:"category"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

// Fixed descriptive bullets; the first two are parameterized by bedroom and
// bathroom counts. Placeholder business content, kept as data.
var floorPlanTemplatesDE = []string{
	"%d Schlafzimmer, Hauptschlafzimmer mit eigenem Bad",
	"%d Badezimmer, Trocken- und Nassbereich getrennt",
	"Offene Küche, Essbereich integriert",
	"Wohnzimmer geräumig, viel Tageslicht",
	"Balkon verbindet Wohnzimmer und Hauptschlafzimmer",
	"Abstellraum und Kleiderschrank vorhanden",
}

// BuildPreview projects the three sources into the display shape. Every
// expected field is present with an explicit default; a missing field never
// surfaces as an error. Pure function of its inputs.
func BuildPreview(job *domain.ExposeJob, bundle domain.PropertyBundle, images []domain.CachedImage) *Preview {
	p := &Preview{
		Title:               bundle.String("title", defaultTitle(job.PropertyID)),
		Address:             bundle.String("address", "Adressinformationen"),
		Price:               bundle.Number("price"),
		Rooms:               bundle.Int("rooms"),
		Bedrooms:            bundle.Int("bedrooms"),
		Bathrooms:           bundle.Int("bathrooms"),
		Area:                bundle.Number("area"),
		YearBuilt:           bundle.Int("yearBuilt"),
		HeatingSystem:       bundle.String("heating_system", ""),
		EnergySource:        bundle.String("energy_source", ""),
		EnergyCertificate:   bundle.String("energy_certificate", ""),
		Parking:             bundle.String("parking", ""),
		RenovationQuality:   bundle.String("renovation_quality", ""),
		FloorType:           bundle.String("floor_type", ""),
		Description:         bundle.String("description", firstNonEmpty(job.GeneratedDescription, defaultDescriptionDE)),
		LocationDescription: bundle.String("locationDescription", job.GeneratedLocation),
		ContactPerson:       bundle.String("contact_person", "Kontaktperson"),
		ContactPhone:        bundle.String("contact_phone", "Telefonnummer"),
		ContactEmail:        bundle.String("contact_email", "E-Mail-Adresse"),
		ContactPerson2:      bundle.String("contact_person2", ""),
		ContactPhone2:       bundle.String("contact_phone2", ""),
		ContactEmail2:       bundle.String("contact_email2", ""),
		AgentInfo:           bundle["agentInfo"],
		PDFURL:              job.PDFURL,
		Images:              make([]PreviewImage, 0, len(images)),
		FloorPlanDetails:    floorPlanDetails(bundle.Int("bedrooms"), bundle.Int("bathrooms")),
	}

	for _, img := range images {
		category := img.Category
		if category == "" {
			category = defaultImageCategory
		}
		p.Images = append(p.Images, PreviewImage{
			ID:        img.ID,
			URL:       img.URL,
			Alt:       img.Alt,
			Category:  category,
			IsPrimary: img.IsPrimary,
			CreatedAt: img.CreatedAt,
		})
	}
	return p
}

func defaultTitle(propertyID string) string {
	short := propertyID
	if len(short) > 8 {
		short = short[:8]
	}
	return "Professionelle Exposé - " + short
}

func floorPlanDetails(bedrooms, bathrooms int) []string {
	out := make([]string, 0, len(floorPlanTemplatesDE))
	for i, tmpl := range floorPlanTemplatesDE {
		switch i {
		case 0:
			out = append(out, fmt.Sprintf(tmpl, bedrooms))
		case 1:
			out = append(out, fmt.Sprintf(tmpl, bathrooms))
		default:
			out = append(out, tmpl)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
