package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/middleware"
	"github.com/insertapp/insert/internal/services"
	"github.com/insertapp/insert/pkg/models"
)

type ScheduleHandler struct {
	service services.ScheduleServiceInterface
	logger  *logrus.Logger
}

func NewScheduleHandler(service services.ScheduleServiceInterface, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /api/v1/schedules.
func (h *ScheduleHandler) Create(c *gin.Context) {
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

	var req models.ScheduleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Invalid request body format",
			},
		})
		return
	}

	entry, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to create schedule entry")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "SCHEDULE_CREATE_FAILED",
				"message": "Failed to create schedule entry",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// List handles GET /api/v1/schedules.
func (h *ScheduleHandler) List(c *gin.Context) {
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

	entries, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to list schedule entries")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "SCHEDULE_LIST_FAILED",
				"message": "Failed to list schedule entries",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": entries})
}

// Delete handles DELETE /api/v1/schedules/:entryId.
func (h *ScheduleHandler) Delete(c *gin.Context) {
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

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_ENTRY_ID",
				"message": "Invalid schedule entry ID format",
			},
		})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, entryID); err != nil {
		if errors.Is(err, services.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "SCHEDULE_NOT_FOUND",
					"message": "Schedule entry not found",
				},
			})
			return
		}

		h.logger.WithError(err).WithField("entry_id", entryID).Error("Failed to delete schedule entry")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "SCHEDULE_DELETE_FAILED",
				"message": "Failed to delete schedule entry",
			},
		})
		return
	}

	c.Status(http.StatusNoContent)
}
