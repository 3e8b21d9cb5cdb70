package models

import "time"

// ProfileType describes who the recommendation is for.
type ProfileType string

const (
	ProfileAlone  ProfileType = "ALONE"
	ProfileCouple ProfileType = "COUPLE"
	ProfileFamily ProfileType = "FAMILY"
)

// TransportMethod is how the user travels to the venue.
type TransportMethod string

const (
	TransportWalk   TransportMethod = "WALK"
	TransportCar    TransportMethod = "CAR"
	TransportBus    TransportMethod = "BUS"
	TransportSubway TransportMethod = "SUBWAY"
)

type RecommendationRequest struct {
	VenueName        string          `json:"venue_name" validate:"required"`
	ProfileType      ProfileType     `json:"profile_type" validate:"required,oneof=ALONE COUPLE FAMILY"`
	TransportMethod  TransportMethod `json:"transport_method" validate:"required,oneof=WALK CAR BUS SUBWAY"`
	CustomConditions string          `json:"custom_conditions" validate:"required,max=50"`
}

// CategoryRecommendations holds exactly K places for one category. Categories
// that could not be filled to K are omitted from the response entirely.
type CategoryRecommendations struct {
	Category Category         `json:"category"`
	Label    string           `json:"label"`
	Places   []CandidatePlace `json:"places"`
}

type RecommendationResponse struct {
	Greeting    string                    `json:"greeting"`
	Subtitle    string                    `json:"subtitle"`
	Categories  []CategoryRecommendations `json:"categories"`
	GeneratedAt time.Time                 `json:"generated_at"`
	CacheHit    bool                      `json:"cache_hit"`
}
