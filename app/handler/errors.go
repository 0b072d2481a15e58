package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"swasthyaflow/internal/service"
	"swasthyaflow/pkg/apperrors"
	"swasthyaflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report JSON field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindingError converts a gin binding failure into per-field messages.
func bindingError(err error) *apperrors.ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("body", "request body must be a valid JSON object")
	}

	verr := &apperrors.ValidationError{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			verr.Add(fe.Field(), fe.Field()+" is required")
		default:
			verr.Add(fe.Field(), fe.Field()+" is invalid")
		}
	}
	return verr
}

// respondError maps service errors to status codes. action completes "Failed to ...".
func respondError(c *gin.Context, err error, action string) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrRequestInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A request with this Idempotency-Key is still in progress"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Schedule is no longer scheduled"})
	default:
		logger.ErrorCtx(c.Request.Context(), "failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}
