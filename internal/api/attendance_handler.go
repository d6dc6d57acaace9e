package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/core"
	"github.com/YogindraChaudhari/plantationDrive/internal/models"
)

// AttendanceHandler handles API endpoints related to work check-ins.
type AttendanceHandler struct {
	attendanceService core.AttendanceService
	errorHandler
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as core.AttendanceService, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as, errorHandler: errorHandler{logger: logger}}
}

// CheckIn handles POST /attendance
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CheckInRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	entry, err := h.attendanceService.CheckIn(c.Request.Context(), uid, req)
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListAttendance handles GET /attendance?zone=&userId=
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	entries, err := h.attendanceService.List(c.Request.Context(),
		strings.TrimSpace(c.Query("zone")), strings.TrimSpace(c.Query("userId")))
	if err != nil {
		h.mapErrorToStatus(c, err)
		return
	}
	if entries == nil {
		entries = []*models.AttendanceEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// ListWorkTypes handles GET /attendance/work-types
func (h *AttendanceHandler) ListWorkTypes(c *gin.Context) {
	c.JSON(http.StatusOK, WorkTypesResponse{WorkTypes: h.attendanceService.WorkTypes()})
}
