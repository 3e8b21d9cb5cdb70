package models

// Category is the semantic grouping used to balance recommendations.
type Category string

const (
	CategoryActivity Category = "ACTIVITY"
	CategoryDining   Category = "DINING"
	CategoryCafe     Category = "CAFE"
)

// AllCategories lists categories in display order.
func AllCategories() []Category {
	return []Category{CategoryActivity, CategoryDining, CategoryCafe}
}

// CandidatePlace is a place record returned by the external search provider.
// Category is overwritten during classification; Score and AIReason are
// attached during scoring. Candidates are ephemeral and never persisted by
// the pipeline itself.
type CandidatePlace struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Category    Category `json:"category"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	Score       float64  `json:"-"`
	AIReason    *string  `json:"ai_reason,omitempty"`
}

// PlaceDetail is the public view of an assembled candidate, served by the
// place-detail endpoint from the session-scoped store.
type PlaceDetail struct {
	CandidatePlace
	AlsoSaved []string `json:"also_saved,omitempty"`
}
