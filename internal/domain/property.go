package domain

import "time"

// PropertyBundle is the loosely typed field set a client stages before
// generation. Keys mirror whatever the listing form submits; readers pull
// individual fields with a default instead of validating the shape.
type PropertyBundle map[string]any

// String returns the string value under key, or fallback when the key is
// absent or holds a non-string.
func (b PropertyBundle) String(key, fallback string) string {
	if v, ok := b[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Number returns the numeric value under key. JSON decoding produces
// float64, but staged bundles may also carry native ints.
func (b PropertyBundle) Number(key string) float64 {
	switch v := b[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int returns the value under key truncated to an int.
func (b PropertyBundle) Int(key string) int {
	return int(b.Number(key))
}

// Clone returns a shallow copy so cached bundles never alias caller maps.
func (b PropertyBundle) Clone() PropertyBundle {
	if b == nil {
		return PropertyBundle{}
	}
	out := make(PropertyBundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Property is the durable listing entity persisted by the relational store.
// It is independent of the transient generation pipeline.
type Property struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	PropertyType string     `json:"property_type"`
	Status       string     `json:"status"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	Country      string     `json:"country"`
	Price        float64    `json:"price"`
	PriceType    string     `json:"price_type"`
	AreaSqm      float64    `json:"area_sqm"`
	Rooms        int        `json:"rooms"`
	Bedrooms     int        `json:"bedrooms"`
	Bathrooms    int        `json:"bathrooms"`
	Floors       int        `json:"floors"`
	YearBuilt    int        `json:"year_built"`
	EnergyClass  string     `json:"energy_class"`
	Features     string     `json:"features"`
	Description  string     `json:"description"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}
