package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insertapp/insert/pkg/models"
)

func newTestAssembler(t *testing.T) *RecommendationAssembler {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewRecommendationAssembler(nil, testRecommendationConfig(), logger)
}

func TestRecommendationAssembler_Assemble(t *testing.T) {
	userID := uuid.New()

	t.Run("greeting and labels", func(t *testing.T) {
		assembler := newTestAssembler(t)

		balanced := map[models.Category][]models.CandidatePlace{
			models.CategoryCafe:   seededPlaces(models.CategoryCafe, "카페1", "카페2", "카페3"),
			models.CategoryDining: seededPlaces(models.CategoryDining, "식당1", "식당2", "식당3"),
		}

		response, err := assembler.Assemble(context.Background(), userID, "지수", balanced)
		require.NoError(t, err)

		assert.Equal(t, "지수님을 위한 맞춤 추천이에요", response.Greeting)
		assert.Equal(t, "행사장 주변에서 즐길 수 있는 장소를 모았어요", response.Subtitle)
		require.Len(t, response.Categories, 2)

		// Display order follows the fixed category order, not map order
		assert.Equal(t, models.CategoryDining, response.Categories[0].Category)
		assert.Equal(t, "맛집 추천", response.Categories[0].Label)
		assert.Equal(t, models.CategoryCafe, response.Categories[1].Category)
		assert.Equal(t, "카페 추천", response.Categories[1].Label)
		assert.False(t, response.GeneratedAt.IsZero())
	})

	t.Run("blank ids are assigned", func(t *testing.T) {
		assembler := newTestAssembler(t)

		balanced := map[models.Category][]models.CandidatePlace{
			models.CategoryActivity: seededPlaces(models.CategoryActivity, "공원1", "공원2", "공원3"),
		}

		response, err := assembler.Assemble(context.Background(), userID, "민준", balanced)
		require.NoError(t, err)

		seen := make(map[string]bool)
		for _, place := range response.Categories[0].Places {
			assert.NotEmpty(t, place.ID)
			assert.False(t, seen[place.ID])
			seen[place.ID] = true
		}
	})
}
