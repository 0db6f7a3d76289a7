package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"productify/internal/identity"
	"productify/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	svc      service.CommentService
	resolver *identity.Resolver
	logger   zerolog.Logger
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(svc service.CommentService, resolver *identity.Resolver, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, resolver: resolver, logger: logger}
}

// CommentRequest carries a comment body for create and update alike.
type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// Create godoc
// @Summary Comment on a product
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param request body CommentRequest true "Comment body"
// @Success 201 {object} dataResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /comments/{productId} [post]
func (h *CommentHandler) Create(c echo.Context) error {
	actor, err := h.resolver.Resolve(c.Request().Context(), identity.Subject(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create comment")
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return badRequest(c, "invalid params", map[string]string{"productId": "must be a valid id"})
	}

	var req CommentRequest
	if err := bindStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body", map[string]string{"body": err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "invalid request body", fieldErrors(err))
	}

	comment, err := h.svc.Create(c.Request().Context(), actor.SubjectID, productID, req.Content)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create comment")
	}
	return c.JSON(http.StatusCreated, dataResponse{Data: comment})
}

// Update godoc
// @Summary Update a comment (owner or site owner)
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Param request body CommentRequest true "New comment body"
// @Success 200 {object} dataResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 403 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /comments/{commentId} [put]
func (h *CommentHandler) Update(c echo.Context) error {
	actor, err := h.resolver.Resolve(c.Request().Context(), identity.Subject(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update comment")
	}

	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		return badRequest(c, "invalid params", map[string]string{"commentId": "must be a valid id"})
	}

	var req CommentRequest
	if err := bindStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body", map[string]string{"body": err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "invalid request body", fieldErrors(err))
	}

	comment, err := h.svc.Update(c.Request().Context(), actor, commentID, req.Content)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update comment")
	}
	return c.JSON(http.StatusOK, dataResponse{Data: comment})
}

// Delete godoc
// @Summary Delete a comment (owner or site owner)
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Success 200 {object} messageResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 403 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /comments/{commentId} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	actor, err := h.resolver.Resolve(c.Request().Context(), identity.Subject(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to delete comment")
	}

	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		return badRequest(c, "invalid params", map[string]string{"commentId": "must be a valid id"})
	}

	if err := h.svc.Delete(c.Request().Context(), actor, commentID); err != nil {
		return respondError(c, h.logger, err, "failed to delete comment")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Comment deleted successfully"})
}
