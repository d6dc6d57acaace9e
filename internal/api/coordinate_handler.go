package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/geo"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

// CoordinateHandler converts form coordinates to decimal degrees so clients can preview
// what will be stored.
type CoordinateHandler struct {
	errorHandler
}

// NewCoordinateHandler creates a new CoordinateHandler.
func NewCoordinateHandler(logger *zap.Logger) *CoordinateHandler {
	return &CoordinateHandler{errorHandler: errorHandler{logger: logger}}
}

// Normalize handles POST /coordinates/normalize
func (h *CoordinateHandler) Normalize(c *gin.Context) {
	var req models.NormalizeCoordinatesRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	if req.Latitude == nil && req.Longitude == nil {
		badRequest(c, "latitude or longitude is required", nil)
		return
	}

	var resp NormalizedCoordinates
	if req.Latitude != nil {
		v, err := normalizeAxis(geo.Latitude, *req.Latitude)
		if err != nil {
			h.mapErrorToStatus(c, err)
			return
		}
		resp.Latitude = &v
		resp.LatitudeDMS = geo.ToDMS(v, geo.Latitude)
	}
	if req.Longitude != nil {
		v, err := normalizeAxis(geo.Longitude, *req.Longitude)
		if err != nil {
			h.mapErrorToStatus(c, err)
			return
		}
		resp.Longitude = &v
		resp.LongitudeDMS = geo.ToDMS(v, geo.Longitude)
	}
	c.JSON(http.StatusOK, resp)
}

func normalizeAxis(field geo.Field, raw string) (float64, error) {
	v, err := geo.NormalizeField(field, raw)
	if err != nil {
		return 0, err
	}
	if err := geo.CheckRange(field, v); err != nil {
		return 0, err
	}
	return v, nil
}
