package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"productify/internal/identity"
	"productify/internal/service"
)

// ProductHandler handles product endpoints.
type ProductHandler struct {
	svc      service.ProductService
	resolver *identity.Resolver
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.ProductService, resolver *identity.Resolver, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, resolver: resolver, logger: logger}
}

// CreateProductRequest is the strict create payload.
type CreateProductRequest struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description" validate:"required,min=1"`
	ImageURL    string `json:"imageUrl" validate:"required,url"`
}

// UpdateProductRequest is the strict partial-update payload. At least one
// field must be present.
type UpdateProductRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	ImageURL    *string `json:"imageUrl" validate:"omitnil,url"`
}

// List godoc
// @Summary List all products, newest first
// @Tags products
// @Produce json
// @Success 200 {object} dataResponse
// @Router /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err, "failed to get products")
	}
	return c.JSON(http.StatusOK, dataResponse{Data: products})
}

// ListMine godoc
// @Summary List the caller's products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dataResponse
// @Failure 401 {object} apperr.ErrorResponse
// @Failure 403 {object} apperr.ErrorResponse
// @Router /products/my [get]
func (h *ProductHandler) ListMine(c echo.Context) error {
	actor, err := h.resolver.Resolve(c.Request().Context(), identity.Subject(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to get user products")
	}

	products, err := h.svc.ListMine(c.Request().Context(), actor.SubjectID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to get user products")
	}
	return c.JSON(http.StatusOK, dataResponse{Data: products})
}

// Get godoc
// @Summary Get a product with its owner and comments
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dataResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid params", map[string]string{"id": "must be a valid id"})
	}

	product, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to get product")
	}
	return c.JSON(http.StatusOK, dataResponse{Data: product})
}

// Create godoc
// @Summary Create a product owned by the caller
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProductRequest true "Product fields"
// @Success 201 {object} dataResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 401 {object} apperr.ErrorResponse
// @Failure 403 {object} apperr.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	actor, err := h.resolver.Resolve(c.Request().Context(), identity.Subject(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create product")
	}

	var req CreateProductRequest
	if err := bindStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body", map[string]string{"body": err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "invalid request body", fieldErrors(err))
	}

	product, err := h.svc.Create(c.Request().Context(), actor.SubjectID, req.Title, req.Description, req.ImageURL)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create product")
	}
	return c.JSON(http.StatusCreated, dataResponse{Data: product})
}

// Update godoc
// @Summary Update a product (owner or site owner)
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body UpdateProductRequest true "Fields to change"
// @Success 200 {object} dataResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 403 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	actor, err := h.resolver.Resolve(c.Request().Context(), identity.Subject(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update product")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid params", map[string]string{"id": "must be a valid id"})
	}

	var req UpdateProductRequest
	if err := bindStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body", map[string]string{"body": err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "invalid request body", fieldErrors(err))
	}

	patch := service.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if patch.IsEmpty() {
		return badRequest(c, "at least one field is required to update", nil)
	}

	product, err := h.svc.Update(c.Request().Context(), actor, id, patch)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update product")
	}
	return c.JSON(http.StatusOK, dataResponse{Data: product})
}

// Delete godoc
// @Summary Delete a product (owner or site owner)
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} messageResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 403 {object} apperr.ErrorResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	actor, err := h.resolver.Resolve(c.Request().Context(), identity.Subject(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to delete product")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid params", map[string]string{"id": "must be a valid id"})
	}

	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, h.logger, err, "failed to delete product")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}
