package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-billing-api/internal/application/service"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/dto/response"
)

// AttendanceHandler handles check-in and check-out requests
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// CheckIn opens today's attendance record for the caller
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.CheckIn(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Checked in", record)
}

// CheckOut closes today's attendance record for the caller
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.CheckOut(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Checked out", record)
}

// Today returns the caller's record for today; data is null before check-in
func (h *AttendanceHandler) Today(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.Today(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Attendance retrieved successfully", record)
}

// List returns one day's records, today by default
func (h *AttendanceHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	var date *time.Time
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			response.BadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		date = &d
	}

	records, err := h.attendanceService.ListDay(c.Request.Context(), userID, isAdmin(c), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Attendance retrieved successfully", records)
}
