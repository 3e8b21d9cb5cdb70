package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/insertapp/insert/internal/services"
	"github.com/insertapp/insert/pkg/models"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) GenerateToken(ctx context.Context, userID uuid.UUID, nickname string) (string, error) {
	args := m.Called(ctx, userID, nickname)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JWTClaims), args.Error(1)
}

func (m *MockAuthService) RevokeToken(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetDisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func tokenRequestBody(userID uuid.UUID) []byte {
	body, _ := json.Marshal(map[string]string{"user_id": userID.String()})
	return body
}

func TestAuthHandler_IssueToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()

	tests := []struct {
		name           string
		directoryErr   error
		generateErr    error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "success",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown user",
			directoryErr:   services.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "USER_NOT_FOUND",
		},
		{
			name:           "directory failure",
			directoryErr:   assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "TOKEN_ISSUE_FAILED",
		},
		{
			name:           "signing failure",
			generateErr:    assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "TOKEN_ISSUE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := new(MockAuthService)
			mockUsers := new(MockUserDirectory)

			if tt.directoryErr != nil {
				mockUsers.On("GetDisplayName", mock.Anything, userID).Return("", tt.directoryErr)
			} else {
				mockUsers.On("GetDisplayName", mock.Anything, userID).Return("지수", nil)
				if tt.generateErr != nil {
					mockAuth.On("GenerateToken", mock.Anything, userID, "지수").Return("", tt.generateErr)
				} else {
					mockAuth.On("GenerateToken", mock.Anything, userID, "지수").Return("signed-token", nil)
				}
			}

			handler := NewAuthHandler(mockAuth, mockUsers, testLogger())

			router := gin.New()
			router.POST("/auth/tokens", handler.IssueToken)

			req := httptest.NewRequest(http.MethodPost, "/auth/tokens", bytes.NewReader(tokenRequestBody(userID)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

			if tt.expectedCode != "" {
				errObj := body["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedCode, errObj["code"])
			} else {
				assert.Equal(t, "signed-token", body["token"])
				assert.Equal(t, "Bearer", body["token_type"])
			}
		})
	}
}

func TestAuthHandler_IssueToken_InvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockAuth := new(MockAuthService)
	mockUsers := new(MockUserDirectory)
	handler := NewAuthHandler(mockAuth, mockUsers, testLogger())

	router := gin.New()
	router.POST("/auth/tokens", handler.IssueToken)

	req := httptest.NewRequest(http.MethodPost, "/auth/tokens", bytes.NewReader([]byte(`{"user_id": "not-a-uuid"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUsers.AssertNotCalled(t, "GetDisplayName")
}

func TestAuthHandler_RevokeToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.New()

	mockAuth := new(MockAuthService)
	mockAuth.On("RevokeToken", mock.Anything, userID).Return(nil)

	handler := NewAuthHandler(mockAuth, new(MockUserDirectory), testLogger())

	router := gin.New()
	router.DELETE("/auth/tokens", withUser(userID), handler.RevokeToken)

	req := httptest.NewRequest(http.MethodDelete, "/auth/tokens", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_RevokeToken_MissingUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewAuthHandler(new(MockAuthService), new(MockUserDirectory), testLogger())

	router := gin.New()
	router.DELETE("/auth/tokens", handler.RevokeToken)

	req := httptest.NewRequest(http.MethodDelete, "/auth/tokens", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
