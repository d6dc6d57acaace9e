package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/core"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PlantHandler handles API endpoints related to plant records.
type PlantHandler struct {
	plantService core.PlantService
	uploads      plantUploadReader
	errorHandler
}

// NewPlantHandler creates a new PlantHandler. images may be nil, in which case uploads are
// only size-checked here and fully validated by the service.
func NewPlantHandler(ps core.PlantService, images ImageChecker, maxUploadBytes int64, logger *zap.Logger) *PlantHandler {
	return &PlantHandler{
		plantService: ps,
		uploads:      plantUploadReader{maxUploadBytes: maxUploadBytes, images: images},
		errorHandler: errorHandler{logger: logger},
	}
}

// RegisterPlant handles POST /plants
func (h *PlantHandler) RegisterPlant(c *gin.Context) {
	var req models.RegisterPlantInput
	image, err := h.uploads.read(c, &req, true)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	req.Image = image

	ref, err := h.plantService.Register(c.Request.Context(), req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// ListPlants handles GET /plants?zone=&sort=asc|desc
func (h *PlantHandler) ListPlants(c *gin.Context) {
	opts := core.ListOptions{Zone: strings.TrimSpace(c.Query("zone"))}
	switch strings.ToLower(c.DefaultQuery("sort", "asc")) {
	case "asc":
	case "desc":
		opts.Descending = true
	default:
		badRequest(c, "Invalid sort order", fmt.Errorf("sort must be asc or desc, got %q", c.Query("sort")))
		return
	}

	plants, err := h.plantService.List(c.Request.Context(), opts)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	if plants == nil {
		plants = []*models.Plant{}
	}
	c.JSON(http.StatusOK, plants)
}

// LookupPlant handles GET /plants/lookup?zone=&plantNumber=
func (h *PlantHandler) LookupPlant(c *gin.Context) {
	zone := strings.TrimSpace(c.Query("zone"))
	number := strings.TrimSpace(c.Query("plantNumber"))
	if zone == "" || number == "" {
		badRequest(c, "zone and plantNumber query parameters are required", nil)
		return
	}

	plant, err := h.plantService.FindByZoneAndNumber(c.Request.Context(), zone, number)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, plant)
}

// GetPlant handles GET /plants/:key
func (h *PlantHandler) GetPlant(c *gin.Context) {
	plant, err := h.plantService.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, plant)
}

// UpdatePlant handles PATCH /plants/:key
func (h *PlantHandler) UpdatePlant(c *gin.Context) {
	var req models.UpdatePlantInput
	image, err := h.uploads.read(c, &req, false)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	req.Image = image

	ref, err := h.plantService.Update(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

// DeletePlant handles DELETE /plants/:key
func (h *PlantHandler) DeletePlant(c *gin.Context) {
	if err := h.plantService.Delete(c.Request.Context(), c.Param("key")); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListZones handles GET /zones
func (h *PlantHandler) ListZones(c *gin.Context) {
	zones, err := h.plantService.Zones(c.Request.Context())
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	if zones == nil {
		zones = []models.ZoneSummary{}
	}
	c.JSON(http.StatusOK, zones)
}

// ExportPlants handles GET /plants/export?zone=
func (h *PlantHandler) ExportPlants(c *gin.Context) {
	zone := strings.TrimSpace(c.Query("zone"))

	var buf bytes.Buffer
	if err := h.plantService.Export(c.Request.Context(), zone, &buf); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(zone)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func exportFilename(zone string) string {
	if zone == "" {
		return "plants_all_zones.xlsx"
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, zone)
	return "plants_zone_" + safe + ".xlsx"
}
