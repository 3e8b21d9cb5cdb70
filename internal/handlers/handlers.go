package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Recommendation *RecommendationHandler
	Schedule       *ScheduleHandler
	Review         *ReviewHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Auth:           NewAuthHandler(services.Auth, services.Users, logger),
		Recommendation: NewRecommendationHandler(services.Recommendation, logger),
		Schedule:       NewScheduleHandler(services.Schedule, logger),
		Review:         NewReviewHandler(services.Review, logger),
	}
}
