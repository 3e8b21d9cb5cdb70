package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insertapp/insert/internal/messaging"
)

func TestPointsProcessor_HandleReviewEvent(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	userID := uuid.New()

	tests := []struct {
		name          string
		hasContent    bool
		expectedAward int
	}{
		{"rating only", false, 10},
		{"rating with content", true, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mockDB.Close()

			processor := NewPointsProcessor(mockDB, logger)

			mockDB.ExpectQuery("UPDATE users").
				WithArgs(tt.expectedAward, pointsPerLevel, maxUserLevel, userID).
				WillReturnRows(pgxmock.NewRows([]string{"id", "points", "level"}).
					AddRow(userID, 120+tt.expectedAward, 2))

			event := messaging.ReviewEvent{
				ReviewID:   uuid.New(),
				UserID:     userID,
				PlaceName:  "와인 브런치 카페",
				Rating:     5,
				HasContent: tt.hasContent,
				Timestamp:  time.Now(),
			}

			assert.NoError(t, processor.HandleReviewEvent(context.Background(), event))
			require.NoError(t, mockDB.ExpectationsWereMet())
		})
	}
}

func TestPointsProcessor_HandleReviewEventDatabaseError(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	processor := NewPointsProcessor(mockDB, logger)

	mockDB.ExpectQuery("UPDATE users").
		WillReturnError(assert.AnError)

	event := messaging.ReviewEvent{
		ReviewID: uuid.New(),
		UserID:   uuid.New(),
		Rating:   3,
	}

	assert.Error(t, processor.HandleReviewEvent(context.Background(), event))
}
