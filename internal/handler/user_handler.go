package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"productify/internal/apperr"
	"productify/internal/identity"
	"productify/internal/service"
)

// UserHandler handles profile sync.
type UserHandler struct {
	svc    service.UserService
	logger zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// SyncUserRequest carries the identity-provider profile fields.
type SyncUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=20"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

// Sync godoc
// @Summary Create or refresh the caller's local profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SyncUserRequest true "Profile fields"
// @Success 200 {object} dataResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 401 {object} apperr.ErrorResponse
// @Router /users/sync [post]
func (h *UserHandler) Sync(c echo.Context) error {
	subject := identity.Subject(c)
	if subject == "" {
		return respondError(c, h.logger, apperr.ErrUnauthenticated, "failed to sync user")
	}

	var req SyncUserRequest
	if err := bindStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body", map[string]string{"body": err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "invalid request body", fieldErrors(err))
	}

	user, err := h.svc.Sync(c.Request().Context(), subject, req.Email, req.Name, req.ImageURL)
	if err != nil {
		return respondError(c, h.logger, err, "failed to sync user")
	}
	return c.JSON(http.StatusOK, dataResponse{Data: user})
}
