package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/internal/models"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
	"github.com/noah-isme/roomplan-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var timetableHeaders = []string{"Date", "Start", "End", "Building", "Room", "Teacher", "Description"}

type timetableLister interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ExportFile is a rendered timetable ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the timetable as CSV or PDF in the display timezone.
type ExportService struct {
	bookings  timetableLister
	renderers map[string]renderer
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(bookings timetableLister, location *time.Location, logger *zap.Logger) *ExportService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		bookings: bookings,
		renderers: map[string]renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// Timetable renders the bookings matching filter in the requested format.
func (s *ExportService) Timetable(ctx context.Context, format string, filter models.BookingFilter) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, invalid(fmt.Sprintf("unsupported export format %q", format))
	}

	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list timetable")
	}

	data, err := r.Render(s.dataset(bookings))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render timetable")
	}
	s.logger.Debug("timetable exported", zap.String("format", format), zap.Int("rows", len(bookings)))

	return &ExportFile{
		Filename:    fmt.Sprintf("timetable_%s.%s", s.now().In(s.location).Format("20060102_1504"), format),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}

func (s *ExportService) dataset(bookings []models.BookingDetail) export.Dataset {
	rows := make([]map[string]string, 0, len(bookings))
	for _, b := range bookings {
		start := b.StartTime.In(s.location)
		end := b.EndTime.In(s.location)
		description := ""
		if b.Description != nil {
			description = *b.Description
		}
		rows = append(rows, map[string]string{
			"Date":        start.Format("2006-01-02"),
			"Start":       start.Format("15:04"),
			"End":         end.Format("15:04"),
			"Building":    b.BuildingName,
			"Room":        b.RoomNr,
			"Teacher":     b.TeacherName,
			"Description": description,
		})
	}
	return export.Dataset{
		Title:   "Timetable",
		Headers: timetableHeaders,
		Rows:    rows,
	}
}
