package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/middleware"
	"github.com/insertapp/insert/internal/services"
	"github.com/insertapp/insert/pkg/models"
)

type ReviewHandler struct {
	service services.ReviewServiceInterface
	logger  *logrus.Logger
}

func NewReviewHandler(service services.ReviewServiceInterface, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /api/v1/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
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

	var req models.ReviewCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Invalid request body format",
			},
		})
		return
	}

	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_RATING",
				"message": "Rating must be between 1 and 5",
			},
		})
		return
	}

	review, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to create review")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "REVIEW_CREATE_FAILED",
				"message": "Failed to create review",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, review)
}

// List handles GET /api/v1/reviews.
func (h *ReviewHandler) List(c *gin.Context) {
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

	reviews, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to list reviews")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "REVIEW_LIST_FAILED",
				"message": "Failed to list reviews",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
