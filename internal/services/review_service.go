package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/messaging"
	"github.com/insertapp/insert/pkg/models"
)

// ReviewEventPublisher decouples the service from the concrete bus so
// tests can capture published events.
type ReviewEventPublisher interface {
	PublishReviewEvent(event messaging.ReviewEvent) error
}

// ReviewService stores place reviews and emits events for point awards.
type ReviewService struct {
	db        DatabaseQuerier
	publisher ReviewEventPublisher
	logger    *logrus.Logger
}

func NewReviewService(db DatabaseQuerier, publisher ReviewEventPublisher, logger *logrus.Logger) *ReviewService {
	return &ReviewService{db: db, publisher: publisher, logger: logger}
}

func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, req *models.ReviewCreateRequest) (*models.Review, error) {
	query := `
		INSERT INTO reviews (id, user_id, place_name, rating, content, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, place_name, rating, content, created_at`

	var review models.Review
	err := s.db.QueryRow(ctx, query,
		uuid.New(), userID, req.PlaceName, req.Rating, req.Content,
	).Scan(
		&review.ID, &review.UserID, &review.PlaceName,
		&review.Rating, &review.Content, &review.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	// Points are awarded asynchronously; a bus outage loses the award but
	// never fails the review itself.
	if s.publisher != nil {
		event := messaging.ReviewEvent{
			ReviewID:   review.ID,
			UserID:     review.UserID,
			PlaceName:  review.PlaceName,
			Rating:     review.Rating,
			HasContent: review.Content != nil && *review.Content != "",
			Timestamp:  time.Now(),
		}
		if err := s.publisher.PublishReviewEvent(event); err != nil {
			s.logger.WithError(err).WithField("review_id", review.ID).Error("Failed to publish review event")
		}
	}

	return &review, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	query := `
		SELECT id, user_id, place_name, rating, content, created_at
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID, &review.UserID, &review.PlaceName,
			&review.Rating, &review.Content, &review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}
