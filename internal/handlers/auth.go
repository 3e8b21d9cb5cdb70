package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/middleware"
	"github.com/insertapp/insert/internal/services"
)

type AuthHandler struct {
	service services.AuthServiceInterface
	users   services.UserDirectory
	logger  *logrus.Logger
}

func NewAuthHandler(service services.AuthServiceInterface, users services.UserDirectory, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		users:   users,
		logger:  logger,
	}
}

type tokenRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// IssueToken handles POST /api/v1/auth/tokens. The upstream login flow
// (social OAuth) lives outside this service; this endpoint exchanges a known
// user id for a session-backed bearer token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Invalid request body format",
			},
		})
		return
	}

	nickname, err := h.users.GetDisplayName(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
			return
		}

		h.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to resolve user for token issuance")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "TOKEN_ISSUE_FAILED",
				"message": "Failed to issue token",
			},
		})
		return
	}

	token, err := h.service.GenerateToken(c.Request.Context(), req.UserID, nickname)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "TOKEN_ISSUE_FAILED",
				"message": "Failed to issue token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"token_type": "Bearer",
	})
}

// RevokeToken handles DELETE /api/v1/auth/tokens for the authenticated user.
func (h *AuthHandler) RevokeToken(c *gin.Context) {
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

	if err := h.service.RevokeToken(c.Request.Context(), userID); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to revoke token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "TOKEN_REVOKE_FAILED",
				"message": "Failed to revoke token",
			},
		})
		return
	}

	c.Status(http.StatusNoContent)
}
