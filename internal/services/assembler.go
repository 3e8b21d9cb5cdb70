package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/pkg/models"
)

const responseSubtitle = "행사장 주변에서 즐길 수 있는 장소를 모았어요"

var categoryLabels = map[models.Category]string{
	models.CategoryActivity: "액티비티 추천",
	models.CategoryDining:   "맛집 추천",
	models.CategoryCafe:     "카페 추천",
}

// RecommendationAssembler packages the balanced per-category lists into the
// response: a personalized greeting, a fixed subtitle and fixed category
// labels. Assembled candidates are cached per user session so the detail
// endpoint can serve them by id without re-running the pipeline; the store
// is keyed by user and expires, never shared across users.
type RecommendationAssembler struct {
	store  *redis.Client
	cfg    *config.RecommendationConfig
	logger *logrus.Logger
}

func NewRecommendationAssembler(
	store *redis.Client,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationAssembler {
	return &RecommendationAssembler{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Assemble builds the final response. The caller resolves displayName; the
// assembler only formats and stores.
func (a *RecommendationAssembler) Assemble(
	ctx context.Context,
	userID uuid.UUID,
	displayName string,
	balanced map[models.Category][]models.CandidatePlace,
) (*models.RecommendationResponse, error) {

	var categories []models.CategoryRecommendations
	for _, category := range models.AllCategories() {
		places, ok := balanced[category]
		if !ok {
			continue
		}

		for i := range places {
			if places[i].ID == "" {
				places[i].ID = uuid.NewString()
			}
			a.cacheDetail(ctx, userID, places[i])
		}

		categories = append(categories, models.CategoryRecommendations{
			Category: category,
			Label:    categoryLabels[category],
			Places:   places,
		})
	}

	return &models.RecommendationResponse{
		Greeting:    fmt.Sprintf("%s님을 위한 맞춤 추천이에요", displayName),
		Subtitle:    responseSubtitle,
		Categories:  categories,
		GeneratedAt: time.Now(),
	}, nil
}

// LoadDetail fetches a previously assembled candidate from the session
// store.
func (a *RecommendationAssembler) LoadDetail(ctx context.Context, userID uuid.UUID, placeID string) (*models.CandidatePlace, error) {
	if a.store == nil {
		return nil, fmt.Errorf("detail store not available")
	}

	data, err := a.store.Get(ctx, detailKey(userID, placeID)).Bytes()
	if err != nil {
		return nil, err
	}

	var place models.CandidatePlace
	if err := json.Unmarshal(data, &place); err != nil {
		return nil, fmt.Errorf("failed to decode cached place: %w", err)
	}
	return &place, nil
}

func (a *RecommendationAssembler) cacheDetail(ctx context.Context, userID uuid.UUID, place models.CandidatePlace) {
	if a.store == nil {
		return
	}

	data, err := json.Marshal(place)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to marshal place for detail store")
		return
	}

	if err := a.store.Set(ctx, detailKey(userID, place.ID), data, a.cfg.DetailTTL).Err(); err != nil {
		a.logger.WithError(err).Warn("Failed to cache place detail")
	}
}

func detailKey(userID uuid.UUID, placeID string) string {
	return fmt.Sprintf("place_detail:%s:%s", userID.String(), placeID)
}
