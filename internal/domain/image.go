package domain

import "time"

// CachedImage is the transient record of one uploaded image file tied to a
// staged property draft. Records are immutable after ingestion.
type CachedImage struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Alt        string    `json:"alt"`
	Category   string    `json:"category,omitempty"`
	IsPrimary  bool      `json:"isPrimary"`
	CreatedAt  time.Time `json:"createdAt"`
}
