package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/insertapp/insert/pkg/models"
)

// PlaceSearchGateway is the external local-search provider. Both methods may
// return an empty slice; callers treat that as zero candidates, not an error.
type PlaceSearchGateway interface {
	SearchNear(ctx context.Context, venueName string, count int) ([]models.CandidatePlace, error)
	SearchNearByCategory(ctx context.Context, venueName string, category models.Category, count int) ([]models.CandidatePlace, error)
}

// RankingSignal is the optional remote text-ranking enrichment. It returns
// candidate indices in preference order. Failures are always tolerated.
type RankingSignal interface {
	Rank(ctx context.Context, candidates []models.CandidatePlace, profile models.ProfileType, transport models.TransportMethod, conditions string) ([]int, error)
}

// UserDirectory resolves a user's display name for the response greeting.
type UserDirectory interface {
	GetDisplayName(ctx context.Context, userID uuid.UUID) (string, error)
}

// AuthServiceInterface issues, validates and revokes bearer tokens.
type AuthServiceInterface interface {
	GenerateToken(ctx context.Context, userID uuid.UUID, nickname string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error)
	RevokeToken(ctx context.Context, userID uuid.UUID) error
}

// RecommendationServiceInterface is the surface consumed by the HTTP layer.
type RecommendationServiceInterface interface {
	GenerateRecommendations(ctx context.Context, req *models.RecommendationRequest, userID uuid.UUID) (*models.RecommendationResponse, error)
	GetPlaceDetail(ctx context.Context, userID uuid.UUID, placeID string) (*models.PlaceDetail, error)
}

// ScheduleServiceInterface manages a user's saved-place schedule.
type ScheduleServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req *models.ScheduleCreateRequest) (*models.ScheduleEntry, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.ScheduleEntry, error)
	Delete(ctx context.Context, userID, entryID uuid.UUID) error
}

// ReviewServiceInterface manages reviews of visited places.
type ReviewServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req *models.ReviewCreateRequest) (*models.Review, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error)
}
