package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/pkg/models"
)

var (
	// ErrNoCandidates means every search round across the whole request
	// yielded nothing; the request fails as a service error.
	ErrNoCandidates = errors.New("no candidates found for any category")

	// ErrPlaceNotFound means the requested place id is not in the caller's
	// session store (expired or never assembled for this user).
	ErrPlaceNotFound = errors.New("place not found")
)

// forbiddenConditionChars are rejected in the free-text condition.
const forbiddenConditionChars = `<>"'&`

// ValidationError lists every violation found in a request.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid recommendation request: " + strings.Join(e.Violations, "; ")
}

// RecommendationService runs the full pipeline: search, deduplicate,
// classify, score, balance, assemble. Each call is a single synchronous
// flow; the only cross-request state is the response cache and the
// session-scoped detail store, both in Redis.
type RecommendationService struct {
	gateway    PlaceSearchGateway
	ranking    RankingSignal
	users      UserDirectory
	dedup      *Deduplicator
	classifier *CategoryClassifier
	scorer     *ConditionScorer
	balancer   *CategoryBalancer
	assembler  *RecommendationAssembler
	graph      *PlaceGraphService
	redis      *redis.Client
	cfg        *config.Config
	logger     *logrus.Logger
	validate   *validator.Validate
}

func NewRecommendationService(
	gateway PlaceSearchGateway,
	ranking RankingSignal,
	users UserDirectory,
	dedup *Deduplicator,
	classifier *CategoryClassifier,
	scorer *ConditionScorer,
	balancer *CategoryBalancer,
	assembler *RecommendationAssembler,
	graph *PlaceGraphService,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *logrus.Logger,
) *RecommendationService {
	return &RecommendationService{
		gateway:    gateway,
		ranking:    ranking,
		users:      users,
		dedup:      dedup,
		classifier: classifier,
		scorer:     scorer,
		balancer:   balancer,
		assembler:  assembler,
		graph:      graph,
		redis:      redisClient,
		cfg:        cfg,
		logger:     logger,
		validate:   validator.New(),
	}
}

// GenerateRecommendations produces the per-category place lists for a
// request. Every category present in the result holds exactly K places;
// categories that could not be filled are absent.
func (s *RecommendationService) GenerateRecommendations(
	ctx context.Context,
	req *models.RecommendationRequest,
	userID uuid.UUID,
) (*models.RecommendationResponse, error) {

	startTime := time.Now()

	if err := s.validateRequest(req); err != nil {
		recommendationRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}

	// Resolve the user before any provider round-trip: an unknown user is a
	// not-found, never a no-candidates outcome.
	displayName, err := s.users.GetDisplayName(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			recommendationRequests.WithLabelValues("unknown_user").Inc()
			return nil, err
		}
		recommendationRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if cached := s.getCachedResponse(ctx, req, userID); cached != nil {
		recommendationCacheHits.Inc()
		recommendationRequests.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	seeded := s.searchAndScore(ctx, req)

	balanced, stats := s.balancer.Balance(ctx, req, seeded)
	backfillRoundsTotal.Add(float64(stats.BackfillRounds))
	backfillEscalationsTotal.Add(float64(stats.Escalations))
	emptyCategoriesTotal.Add(float64(stats.EmptyCategories))

	if len(balanced) == 0 {
		recommendationRequests.WithLabelValues("no_candidates").Inc()
		return nil, ErrNoCandidates
	}

	response, err := s.assembler.Assemble(ctx, userID, displayName, balanced)
	if err != nil {
		recommendationRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to assemble response: %w", err)
	}

	s.cacheResponse(ctx, req, userID, response)

	outcome := "full"
	if len(response.Categories) < len(models.AllCategories()) {
		outcome = "partial"
	}
	recommendationRequests.WithLabelValues(outcome).Inc()
	recommendationDuration.Observe(time.Since(startTime).Seconds())

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"venue":      req.VenueName,
		"categories": len(response.Categories),
		"backfills":  stats.BackfillRounds,
		"latency":    time.Since(startTime),
	}).Info("Recommendations generated")

	return response, nil
}

// GetPlaceDetail serves an assembled candidate from the caller's session
// store, enriched with co-saved places from the graph when available.
func (s *RecommendationService) GetPlaceDetail(ctx context.Context, userID uuid.UUID, placeID string) (*models.PlaceDetail, error) {
	place, err := s.assembler.LoadDetail(ctx, userID, placeID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("failed to load place detail: %w", err)
	}

	detail := &models.PlaceDetail{CandidatePlace: *place}

	if s.graph != nil {
		alsoSaved, err := s.graph.AlsoSaved(ctx, place.Name, 5)
		if err != nil {
			s.logger.WithError(err).Debug("Graph enrichment unavailable")
		} else {
			detail.AlsoSaved = alsoSaved
		}
	}

	return detail, nil
}

// searchAndScore is the shared seeding pass: one broad provider search,
// deduplication, classification and scoring, then per-category selection of
// full matches with the partial-match fallback.
func (s *RecommendationService) searchAndScore(ctx context.Context, req *models.RecommendationRequest) map[models.Category][]models.CandidatePlace {
	raw, err := s.gateway.SearchNear(ctx, req.VenueName, s.cfg.Recommendation.InitialSearchCount)
	if err != nil {
		// Provider failure counts as zero candidates for this round; the
		// balancer's backfill may still recover per category.
		s.logger.WithError(err).WithField("venue", req.VenueName).Warn("Initial place search failed")
		raw = nil
	}

	deduped := s.dedup.Deduplicate(raw)

	var classified []models.CandidatePlace
	for _, c := range deduped {
		category, ok := s.classifier.Classify(c)
		if !ok || category == "" {
			continue
		}
		c.Category = category
		classified = append(classified, c)
	}

	rankOf := s.rankingPositions(ctx, req, classified)

	for i := range classified {
		rank := -1
		if pos, ok := rankOf[i]; ok {
			rank = pos
		}
		classified[i].Score = s.scorer.Score(classified[i], req, rank)
		reason := s.scorer.Reason(classified[i], req)
		classified[i].AIReason = &reason
	}

	return s.seedCategories(classified, req)
}

// rankingPositions maps candidate index to its 0-based rank from the
// optional external signal. Failures degrade to heuristic-only scoring.
func (s *RecommendationService) rankingPositions(ctx context.Context, req *models.RecommendationRequest, candidates []models.CandidatePlace) map[int]int {
	positions := make(map[int]int)
	if !s.cfg.Ranking.Enabled || s.ranking == nil || len(candidates) == 0 {
		return positions
	}

	ranking, err := s.ranking.Rank(ctx, candidates, req.ProfileType, req.TransportMethod, req.CustomConditions)
	if err != nil {
		s.logger.WithError(err).Debug("Ranking signal failed, proceeding heuristic-only")
		return positions
	}

	for pos, idx := range ranking {
		if _, seen := positions[idx]; !seen {
			positions[idx] = pos
		}
	}
	return positions
}

// seedCategories picks each category's initial candidates: full matches
// ranked by score, then partial matches clearing the word-overlap threshold
// ranked by overlap then distance, up to K.
func (s *RecommendationService) seedCategories(classified []models.CandidatePlace, req *models.RecommendationRequest) map[models.Category][]models.CandidatePlace {
	k := s.cfg.Recommendation.PlacesPerCategory
	threshold := s.cfg.Recommendation.Scoring.PartialMatchThreshold

	type fallback struct {
		place   models.CandidatePlace
		overlap float64
	}

	fullByCategory := make(map[models.Category][]models.CandidatePlace)
	partialByCategory := make(map[models.Category][]fallback)

	for _, c := range classified {
		if s.scorer.IsFullMatch(c, req) {
			fullByCategory[c.Category] = append(fullByCategory[c.Category], c)
			continue
		}
		if !s.scorer.ProfileCompatible(c, req.ProfileType) {
			continue
		}
		if overlap := s.scorer.WordOverlap(c, req.CustomConditions); overlap >= threshold {
			partialByCategory[c.Category] = append(partialByCategory[c.Category], fallback{place: c, overlap: overlap})
		}
	}

	seeded := make(map[models.Category][]models.CandidatePlace)
	for _, category := range models.AllCategories() {
		full := fullByCategory[category]
		sort.SliceStable(full, func(i, j int) bool {
			return full[i].Score > full[j].Score
		})

		held := full
		if len(held) < k {
			partials := partialByCategory[category]
			sort.SliceStable(partials, func(i, j int) bool {
				if partials[i].overlap != partials[j].overlap {
					return partials[i].overlap > partials[j].overlap
				}
				di, dj := partials[i].place.DistanceKm, partials[j].place.DistanceKm
				if (di == nil) != (dj == nil) {
					return di != nil
				}
				if di != nil && dj != nil {
					return *di < *dj
				}
				return false
			})

			for _, p := range partials {
				if len(held) >= k {
					break
				}
				held = append(held, p.place)
			}
		}

		if len(held) > 0 {
			seeded[category] = held
		}
	}

	return seeded
}

func (s *RecommendationService) validateRequest(req *models.RecommendationRequest) error {
	var violations []string

	if err := s.validate.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				violations = append(violations, describeFieldError(fe))
			}
		} else {
			violations = append(violations, err.Error())
		}
	}

	if strings.ContainsAny(req.CustomConditions, forbiddenConditionChars) {
		violations = append(violations, "custom_conditions contains forbidden characters")
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Cache operations

func (s *RecommendationService) getCachedResponse(ctx context.Context, req *models.RecommendationRequest, userID uuid.UUID) *models.RecommendationResponse {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, s.buildCacheKey(req, userID)).Bytes()
	if err != nil {
		return nil
	}

	var response models.RecommendationResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil
	}

	response.CacheHit = true
	return &response
}

func (s *RecommendationService) cacheResponse(ctx context.Context, req *models.RecommendationRequest, userID uuid.UUID, response *models.RecommendationResponse) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to marshal response for cache")
		return
	}

	if err := s.redis.Set(ctx, s.buildCacheKey(req, userID), data, s.cfg.Recommendation.CacheTTL).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to cache recommendation response")
	}
}

func (s *RecommendationService) buildCacheKey(req *models.RecommendationRequest, userID uuid.UUID) string {
	return fmt.Sprintf("recommendation:%s:%s:%s:%s:%s",
		userID.String(),
		normalizeText(req.VenueName),
		req.ProfileType,
		req.TransportMethod,
		normalizeText(req.CustomConditions),
	)
}
