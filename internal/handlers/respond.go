package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/city-lottery/internal/errors"
	"github.com/stwalsh4118/city-lottery/internal/services"
)

// bindError renders a request binding failure. Validation failures keep
// their per field messages, anything else is a malformed request.
func bindError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	apierrors.BadRequest(c, message, nil)
}

// serviceError maps a city service error onto the API error envelope.
// fallback is the client message for unexpected failures.
func serviceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNoCity), errors.Is(err, services.ErrCityOpen):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrSaveNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCorruptSave):
		apierrors.CorruptSave(c, "Save data could not be restored", map[string]interface{}{
			"reason": err.Error(),
		})
	case errors.Is(err, services.ErrNotActive):
		apierrors.ServiceUnavailable(c, apierrors.ErrUnavailable, err.Error())
	case errors.Is(err, services.ErrInvalidRequest):
		apierrors.BadRequest(c, err.Error(), nil)
	default:
		apierrors.InternalServerError(c, fallback, err)
	}
}
