package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/core"
	"github.com/YogindraChaudhari/plantationDrive/internal/geo"
	"github.com/YogindraChaudhari/plantationDrive/internal/middleware"
)

func init() {
	// Report JSON field names in validation errors instead of Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// errorHandler maps service errors to HTTP status codes and ErrorResponse bodies.
type errorHandler struct {
	logger *zap.Logger
}

func (h errorHandler) mapErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	var validationErrors validator.ValidationErrors
	var coordErr *geo.CoordinateError
	var rangeErr *geo.RangeError

	switch {
	case errors.As(err, &validationErrors):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Validation failed", Details: describeValidation(validationErrors)}
	case errors.As(err, &coordErr):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid coordinate format", Details: coordErr.Error()}
	case errors.As(err, &rangeErr):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Coordinate out of range", Details: rangeErr.Error()}
	case errors.Is(err, geo.ErrInvalidCoordinateFormat):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid coordinate format", Details: err.Error()}
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrInvalidImage):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, core.ErrPlantNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrPlantNotFound.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrDuplicateKey):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrDuplicateKey.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrDuplicatePhone):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrDuplicatePhone.Error()}
	case errors.Is(err, core.ErrProfileExists):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrProfileExists.Error()}
	case errors.Is(err, core.ErrStoreUnavailable):
		h.logger.Error("Store unavailable", zap.String("path", c.Request.URL.Path), zap.Error(err))
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "The data store is temporarily unavailable.", Details: err.Error()}
	case errors.Is(err, core.ErrAccountsUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: core.ErrAccountsUnavailable.Error()}
	default:
		h.logger.Error("Internal Server Error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	_ = c.Error(err)
	c.JSON(statusCode, errResponse)
}

func describeValidation(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
		_ = c.Error(err)
	}
	c.JSON(http.StatusBadRequest, resp)
}

// currentUserID returns the authenticated caller, answering 401 when there is none.
func currentUserID(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.ContextUserID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return "", false
	}
	return uid, true
}
