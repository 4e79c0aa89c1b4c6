package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/models"
)

// UserHandler serves the profile of the signed-in user.
type UserHandler struct {
	profiles core.ProfileService
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(profiles core.ProfileService, logger *zap.Logger) *UserHandler {
	return &UserHandler{profiles: profiles, logger: logger}
}

// GetCurrentUserProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}

	res := h.profiles.GetUserData(c.Request.Context(), user.UID)
	if !res.Success {
		respondFailure(c, res)
		return
	}
	c.JSON(http.StatusOK, res.Data)
}

// UpdateCurrentUserProfile handles PATCH /api/v1/users/me.
func (h *UserHandler) UpdateCurrentUserProfile(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	fields := req.Fields()
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:        "No changes provided",
			Notification: notify(models.NotificationInfo, "Nothing to update."),
		})
		return
	}

	ctx := c.Request.Context()
	if res := h.profiles.UpdateUserDocument(ctx, user.UID, fields); !res.Success {
		respondFailure(c, res)
		return
	}

	updated := h.profiles.GetUserData(ctx, user.UID)
	if !updated.Success {
		respondFailure(c, updated)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Data:         updated.Data,
		Notification: notify(models.NotificationSuccess, "Profile updated successfully!"),
	})
}
