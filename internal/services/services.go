package services

import (
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/internal/database"
	"github.com/insertapp/insert/internal/messaging"
	"github.com/insertapp/insert/internal/validation"
)

type Services struct {
	Auth            *AuthService
	Users           UserDirectory
	Health          *HealthService
	RateLimit       *RateLimitService
	MessageBus      *messaging.MessageBus
	PlaceGateway    PlaceSearchGateway
	Recommendation  *RecommendationService
	Schedule        *ScheduleService
	Review          *ReviewService
	PointsProcessor *PointsProcessor
	PlaceGraph      *PlaceGraphService
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	authService := NewAuthService(cfg, logger, db.Redis.Hot)
	healthService := NewHealthService(cfg, logger, db)
	rateLimitService := NewRateLimitService(cfg, logger, db.Redis.Hot)

	messageBus, err := messaging.NewMessageBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	schemaValidator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, err
	}

	placeGateway := NewKakaoPlaceGateway(&cfg.Places, schemaValidator, logger)

	var rankingSignal RankingSignal
	if cfg.Ranking.Enabled {
		rankingSignal = NewTextRankingSignal(&cfg.Ranking, schemaValidator, logger)
	}

	placeGraph := NewPlaceGraphService(db.Neo4j, logger)

	dedup := NewDeduplicator(logger)
	classifier := NewCategoryClassifier(&cfg.Recommendation.Rules, logger)
	scorer := NewConditionScorer(&cfg.Recommendation.Scoring, &cfg.Recommendation.Rules, logger)
	balancer := NewCategoryBalancer(placeGateway, classifier, scorer, dedup, &cfg.Recommendation, logger)

	userDirectory := NewPgUserDirectory(db.PG, logger)
	assembler := NewRecommendationAssembler(db.Redis.Warm, &cfg.Recommendation, logger)

	recommendationService := NewRecommendationService(
		placeGateway, rankingSignal, userDirectory, dedup, classifier, scorer,
		balancer, assembler, placeGraph, db.Redis.Warm, cfg, logger,
	)

	scheduleService := NewScheduleService(db.PG, placeGraph, logger)
	reviewService := NewReviewService(db.PG, messageBus, logger)
	pointsProcessor := NewPointsProcessor(db.PG, logger)

	return &Services{
		Auth:            authService,
		Users:           userDirectory,
		Health:          healthService,
		RateLimit:       rateLimitService,
		MessageBus:      messageBus,
		PlaceGateway:    placeGateway,
		Recommendation:  recommendationService,
		Schedule:        scheduleService,
		Review:          reviewService,
		PointsProcessor: pointsProcessor,
		PlaceGraph:      placeGraph,
	}, nil
}
