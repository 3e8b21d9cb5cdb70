package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/middleware"
	"github.com/insertapp/insert/internal/services"
	"github.com/insertapp/insert/pkg/models"
)

type RecommendationHandler struct {
	service services.RecommendationServiceInterface
	logger  *logrus.Logger
}

func NewRecommendationHandler(service services.RecommendationServiceInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		logger:  logger,
	}
}

// Generate handles POST /api/v1/recommendations.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "MISSING_USER_CONTEXT",
				"message": "Authentication required",
			},
		})
		return
	}

	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Invalid request body format",
			},
		})
		return
	}

	response, err := h.service.GenerateRecommendations(c.Request.Context(), &req, userID)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "VALIDATION_FAILED",
					"message": "Request validation failed",
					"details": validationErr.Violations,
				},
			})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
		case errors.Is(err, services.ErrNoCandidates):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"code":    "NO_CANDIDATES",
					"message": "No places could be found near the venue",
				},
			})
		default:
			h.logger.WithError(err).WithField("user_id", userID).Error("Failed to generate recommendations")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "RECOMMENDATION_GENERATION_FAILED",
					"message": "Failed to generate recommendations",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetPlaceDetail handles GET /api/v1/places/:placeId.
func (h *RecommendationHandler) GetPlaceDetail(c *gin.Context) {
	userID, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"code":    "MISSING_USER_CONTEXT",
				"message": "Authentication required",
			},
		})
		return
	}

	placeID := c.Param("placeId")
	if placeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_PLACE_ID",
				"message": "Place ID is required",
			},
		})
		return
	}

	detail, err := h.service.GetPlaceDetail(c.Request.Context(), userID, placeID)
	if err != nil {
		if errors.Is(err, services.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "PLACE_NOT_FOUND",
					"message": "Place not found or detail expired",
				},
			})
			return
		}

		h.logger.WithError(err).WithField("place_id", placeID).Error("Failed to load place detail")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "PLACE_DETAIL_FAILED",
				"message": "Failed to load place detail",
			},
		})
		return
	}

	c.JSON(http.StatusOK, detail)
}
