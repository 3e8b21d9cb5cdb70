package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/insertapp/insert/internal/services"
	"github.com/insertapp/insert/pkg/models"
)

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) GenerateRecommendations(ctx context.Context, req *models.RecommendationRequest, userID uuid.UUID) (*models.RecommendationResponse, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecommendationResponse), args.Error(1)
}

func (m *MockRecommendationService) GetPlaceDetail(ctx context.Context, userID uuid.UUID, placeID string) (*models.PlaceDetail, error) {
	args := m.Called(ctx, userID, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlaceDetail), args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// withUser injects the authenticated user the way the auth middleware does.
func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func validRequestBody() []byte {
	body, _ := json.Marshal(models.RecommendationRequest{
		VenueName:        "인스파이어 아레나",
		ProfileType:      models.ProfileCouple,
		TransportMethod:  models.TransportWalk,
		CustomConditions: "데이트 코스",
	})
	return body
}

func TestRecommendationHandler_Generate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()

	tests := []struct {
		name           string
		serviceResult  *models.RecommendationResponse
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "success",
			serviceResult: &models.RecommendationResponse{
				Greeting:    "지수님을 위한 맞춤 추천이에요",
				GeneratedAt: time.Now(),
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "validation failure",
			serviceErr:     &services.ValidationError{Violations: []string{"custom_conditions contains forbidden characters"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "unknown user",
			serviceErr:     services.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "USER_NOT_FOUND",
		},
		{
			name:           "no candidates",
			serviceErr:     services.ErrNoCandidates,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "NO_CANDIDATES",
		},
		{
			name:           "unexpected failure",
			serviceErr:     assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "RECOMMENDATION_GENERATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockRecommendationService)
			service.On("GenerateRecommendations", mock.Anything, mock.Anything, userID).
				Return(tt.serviceResult, tt.serviceErr)

			handler := NewRecommendationHandler(service, testLogger())

			router := gin.New()
			router.POST("/recommendations", withUser(userID), handler.Generate)

			req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader(validRequestBody()))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedCode != "" {
				var body map[string]map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedCode, body["error"]["code"])
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		service := new(MockRecommendationService)
		handler := NewRecommendationHandler(service, testLogger())

		router := gin.New()
		router.POST("/recommendations", withUser(userID), handler.Generate)

		req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader([]byte("not json")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		service.AssertNotCalled(t, "GenerateRecommendations", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing user context", func(t *testing.T) {
		service := new(MockRecommendationService)
		handler := NewRecommendationHandler(service, testLogger())

		router := gin.New()
		router.POST("/recommendations", handler.Generate)

		req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader(validRequestBody()))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRecommendationHandler_GetPlaceDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		detail := &models.PlaceDetail{
			CandidatePlace: models.CandidatePlace{
				ID:       "place-1",
				Name:     "와인 브런치 카페",
				Category: models.CategoryCafe,
			},
			AlsoSaved: []string{"산책로 북카페"},
		}

		service := new(MockRecommendationService)
		service.On("GetPlaceDetail", mock.Anything, userID, "place-1").Return(detail, nil)

		handler := NewRecommendationHandler(service, testLogger())

		router := gin.New()
		router.GET("/places/:placeId", withUser(userID), handler.GetPlaceDetail)

		req := httptest.NewRequest(http.MethodGet, "/places/place-1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body models.PlaceDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "와인 브런치 카페", body.Name)
		assert.Equal(t, []string{"산책로 북카페"}, body.AlsoSaved)
	})

	t.Run("expired or unknown place", func(t *testing.T) {
		service := new(MockRecommendationService)
		service.On("GetPlaceDetail", mock.Anything, userID, "gone").Return(nil, services.ErrPlaceNotFound)

		handler := NewRecommendationHandler(service, testLogger())

		router := gin.New()
		router.GET("/places/:placeId", withUser(userID), handler.GetPlaceDetail)

		req := httptest.NewRequest(http.MethodGet, "/places/gone", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
