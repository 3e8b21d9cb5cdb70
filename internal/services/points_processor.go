package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/messaging"
	"github.com/insertapp/insert/pkg/models"
)

const (
	reviewBasePoints    = 10
	reviewContentPoints = 5
	maxUserLevel        = 10
	pointsPerLevel      = 100
)

// PointsProcessor consumes review events and awards points. Levels derive
// from lifetime points: one level per hundred points, capped at ten.
type PointsProcessor struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPointsProcessor(db DatabaseQuerier, logger *logrus.Logger) *PointsProcessor {
	return &PointsProcessor{db: db, logger: logger}
}

// Run blocks consuming review events until ctx is cancelled.
func (p *PointsProcessor) Run(ctx context.Context, bus *messaging.MessageBus) error {
	return bus.ConsumeReviewEvents(ctx, p.HandleReviewEvent)
}

// HandleReviewEvent awards points for one review. It is idempotent per
// event only at the bus level; replays after a DLQ recovery re-award.
func (p *PointsProcessor) HandleReviewEvent(ctx context.Context, event messaging.ReviewEvent) error {
	award := reviewBasePoints
	if event.HasContent {
		award += reviewContentPoints
	}

	query := `
		UPDATE users
		SET points = points + $1,
			level = LEAST(((points + $1) / $2) + 1, $3),
			updated_at = NOW()
		WHERE id = $4
		RETURNING id, points, level`

	var summary models.PointsSummary
	err := p.db.QueryRow(ctx, query,
		award, pointsPerLevel, maxUserLevel, event.UserID,
	).Scan(&summary.UserID, &summary.Points, &summary.Level)
	if err != nil {
		return fmt.Errorf("failed to award points for review %s: %w", event.ReviewID, err)
	}

	p.logger.WithFields(logrus.Fields{
		"user_id": summary.UserID,
		"award":   award,
		"points":  summary.Points,
		"level":   summary.Level,
	}).Info("Points awarded for review")

	return nil
}
