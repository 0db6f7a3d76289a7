package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"productify/internal/apperr"
)

// dataResponse is the success envelope for every read and create.
type dataResponse struct {
	Data interface{} `json:"data"`
}

// messageResponse is the success envelope for deletes.
type messageResponse struct {
	Message string `json:"message"`
}

// bindStrict decodes the JSON body into v, rejecting unrecognized fields.
func bindStrict(c echo.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// fieldErrors flattens validator failures into field -> rule detail.
func fieldErrors(err error) map[string]string {
	details := map[string]string{}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		details["body"] = err.Error()
		return details
	}
	for _, fe := range invalid {
		details[fe.Field()] = fe.Tag()
	}
	return details
}

// respondError maps the error to its HTTP shape. Unexpected failures are
// logged with full detail and surfaced only as the fixed internal message.
func respondError(c echo.Context, logger zerolog.Logger, err error, fallback string) error {
	httpErr := apperr.Map(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Path()).Msg(fallback)
	}
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(c echo.Context, message string, details interface{}) error {
	return c.JSON(http.StatusBadRequest, apperr.ErrorResponse{Error: message, Details: details})
}
