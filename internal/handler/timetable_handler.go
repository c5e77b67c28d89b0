package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roomplan-api/internal/models"
	"github.com/noah-isme/roomplan-api/internal/service"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
	"github.com/noah-isme/roomplan-api/pkg/response"
)

type bookingService interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, req service.BookingRequest) (*models.Booking, error)
	Update(ctx context.Context, id string, req service.BookingRequest) (*models.Booking, error)
	Delete(ctx context.Context, id string) (*models.Booking, error)
	ParseTime(value string) (time.Time, error)
}

type timetableExporter interface {
	Timetable(ctx context.Context, format string, filter models.BookingFilter) (*service.ExportFile, error)
}

// TimetableHandler wires booking services to HTTP routes.
type TimetableHandler struct {
	bookings bookingService
	exporter timetableExporter
}

// NewTimetableHandler constructs a TimetableHandler.
func NewTimetableHandler(bookings bookingService, exporter timetableExporter) *TimetableHandler {
	return &TimetableHandler{bookings: bookings, exporter: exporter}
}

// List godoc
// @Summary List timetable entries
// @Tags Timetable
// @Produce json
// @Param roomId query string false "Room ID"
// @Param teacherId query string false "Teacher ID"
// @Param buildingId query string false "Building ID"
// @Param from query string false "Only entries ending after this instant"
// @Param to query string false "Only entries starting before this instant"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	bookings, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings)
}

// Get godoc
// @Summary Get timetable entry
// @Tags Timetable
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking)
}

// Create godoc
// @Summary Create timetable entry
// @Description Rejects inverted periods, starts in the past and overlaps with bookings of the same room or teacher.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.BookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req service.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Update godoc
// @Summary Replace timetable entry
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.BookingRequest true "Booking payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req service.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	booking, err := h.bookings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking)
}

// Delete godoc
// @Summary Delete timetable entry
// @Tags Timetable
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	booking, err := h.bookings.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted_booking": booking}, gin.H{"message": "Deleted"})
}

// Export godoc
// @Summary Export timetable
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param roomId query string false "Room ID"
// @Param teacherId query string false "Teacher ID"
// @Param buildingId query string false "Building ID"
// @Param from query string false "Only entries ending after this instant"
// @Param to query string false "Only entries starting before this instant"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Timetable(c.Request.Context(), c.DefaultQuery("format", service.ExportFormatCSV), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *TimetableHandler) parseFilter(c *gin.Context) (models.BookingFilter, error) {
	filter := models.BookingFilter{
		RoomID:     strings.TrimSpace(c.Query("roomId")),
		TeacherID:  strings.TrimSpace(c.Query("teacherId")),
		BuildingID: strings.TrimSpace(c.Query("buildingId")),
	}
	for _, bound := range []struct {
		param  string
		target **time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		raw := strings.TrimSpace(c.Query(bound.param))
		if raw == "" {
			continue
		}
		parsed, err := h.bookings.ParseTime(raw)
		if err != nil {
			return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+bound.param+" parameter")
		}
		*bound.target = &parsed
	}
	return filter, nil
}
