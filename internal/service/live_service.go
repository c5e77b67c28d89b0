package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/internal/dto"
	"github.com/noah-isme/roomplan-api/internal/models"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
)

type upcomingBookingRepository interface {
	ListUpcoming(ctx context.Context, now time.Time) ([]models.BookingDetail, error)
}

// LiveConfig tunes the live schedule.
type LiveConfig struct {
	Location        *time.Location
	RefreshInterval time.Duration
	CacheTTL        time.Duration
	Now             func() time.Time
}

// LiveService builds the read-only schedule of bookings that have not ended yet.
type LiveService struct {
	repo    upcomingBookingRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     LiveConfig
}

// NewLiveService constructs a LiveService.
func NewLiveService(repo upcomingBookingRepository, cache *CacheService, metrics *MetricsService, cfg LiveConfig, logger *zap.Logger) *LiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &LiveService{repo: repo, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// RefreshInterval reports how often clients should reload the view.
func (s *LiveService) RefreshInterval() time.Duration {
	return s.cfg.RefreshInterval
}

// Schedule returns upcoming bookings grouped by local date. The boolean reports a cache hit.
func (s *LiveService) Schedule(ctx context.Context) (*dto.LiveSchedule, bool, error) {
	if cached, err := s.cache.LoadSchedule(ctx); err != nil {
		s.logger.Warn("live cache lookup failed", zap.Error(err))
	} else if cached != nil {
		return cached, true, nil
	}

	now := s.cfg.Now()
	start := time.Now()
	bookings, err := s.repo.ListUpcoming(ctx, now)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load live schedule")
	}
	s.metrics.ObserveDBQuery("live_upcoming", time.Since(start))

	schedule := s.build(bookings, now)
	if err := s.cache.StoreSchedule(ctx, schedule, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("live cache store failed", zap.Error(err))
	}
	return schedule, false, nil
}

func (s *LiveService) build(bookings []models.BookingDetail, now time.Time) *dto.LiveSchedule {
	schedule := &dto.LiveSchedule{
		GeneratedAt:    now.UTC(),
		Timezone:       s.cfg.Location.String(),
		RefreshSeconds: int(s.cfg.RefreshInterval / time.Second),
		Days:           []dto.LiveDay{},
	}

	index := make(map[string]int)
	for _, b := range bookings {
		start := b.StartTime.In(s.cfg.Location)
		end := b.EndTime.In(s.cfg.Location)
		date := start.Format("2006-01-02")

		pos, ok := index[date]
		if !ok {
			pos = len(schedule.Days)
			index[date] = pos
			schedule.Days = append(schedule.Days, dto.LiveDay{Date: date, Label: start.Format("Monday, 02.01.2006")})
		}

		schedule.Days[pos].Entries = append(schedule.Days[pos].Entries, dto.LiveEntry{
			ID:           b.ID,
			Start:        start.Format("15:04"),
			End:          end.Format("15:04"),
			RoomNr:       b.RoomNr,
			BuildingName: b.BuildingName,
			TeacherName:  b.TeacherName,
			Description:  b.Description,
			Current:      !now.Before(b.StartTime) && !now.After(b.EndTime),
		})
	}
	return schedule
}
