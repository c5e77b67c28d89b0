package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/roomplan-api/internal/dto"
	"github.com/noah-isme/roomplan-api/internal/models"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
)

type mockBuildingRepo struct {
	items     map[string]*models.Building
	rooms     map[string][]models.Room
	bookings  map[string][]models.Booking
	listErr   error
	createErr error
	seq       int
}

func newMockBuildingRepo(buildings ...models.Building) *mockBuildingRepo {
	m := &mockBuildingRepo{items: map[string]*models.Building{}, rooms: map[string][]models.Room{}, bookings: map[string][]models.Booking{}}
	for i := range buildings {
		b := buildings[i]
		m.items[b.ID] = &b
	}
	return m
}

func (m *mockBuildingRepo) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.Building{}
	for _, b := range m.items {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockBuildingRepo) FindByID(ctx context.Context, id string) (*models.Building, error) {
	if b, ok := m.items[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBuildingRepo) ExistsByNameAddress(ctx context.Context, name, address, excludeID string) (bool, error) {
	for id, b := range m.items {
		if b.Name == name && b.Address == address && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBuildingRepo) Create(ctx context.Context, building *models.Building) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	building.ID = fmt.Sprintf("building-%d", m.seq)
	cp := *building
	m.items[building.ID] = &cp
	return nil
}

func (m *mockBuildingRepo) Update(ctx context.Context, building *models.Building) error {
	if _, ok := m.items[building.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *building
	m.items[building.ID] = &cp
	return nil
}

func (m *mockBuildingRepo) DeleteCascade(ctx context.Context, id string) (*models.BuildingDeletion, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.items, id)
	result := &models.BuildingDeletion{Building: *b, Rooms: append([]models.Room{}, m.rooms[id]...), Bookings: append([]models.Booking{}, m.bookings[id]...)}
	delete(m.rooms, id)
	delete(m.bookings, id)
	return result, nil
}

type mockRoomRepo struct {
	items map[string]*models.Room
	seq   int
}

func newMockRoomRepo(rooms ...models.Room) *mockRoomRepo {
	m := &mockRoomRepo{items: map[string]*models.Room{}}
	for i := range rooms {
		r := rooms[i]
		m.items[r.ID] = &r
	}
	return m
}

func (m *mockRoomRepo) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	out := []models.Room{}
	for _, r := range m.items {
		if filter.BuildingID != "" && r.BuildingID != filter.BuildingID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNr < out[j].RoomNr })
	return out, nil
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) ExistsByRoomNr(ctx context.Context, buildingID, roomNr, excludeID string) (bool, error) {
	for id, r := range m.items {
		if r.BuildingID == buildingID && r.RoomNr == roomNr && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	m.seq++
	room.ID = fmt.Sprintf("room-%d", m.seq)
	cp := *room
	m.items[room.ID] = &cp
	return nil
}

func (m *mockRoomRepo) Update(ctx context.Context, room *models.Room) error {
	if _, ok := m.items[room.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *room
	m.items[room.ID] = &cp
	return nil
}

func (m *mockRoomRepo) DeleteCascade(ctx context.Context, id string) (*models.RoomDeletion, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.items, id)
	return &models.RoomDeletion{Room: *r, Bookings: []models.Booking{}}, nil
}

type mockTeacherRepo struct {
	items     map[string]*models.Teacher
	updateErr error
	seq       int
}

func newMockTeacherRepo(teachers ...models.Teacher) *mockTeacherRepo {
	m := &mockTeacherRepo{items: map[string]*models.Teacher{}}
	for i := range teachers {
		t := teachers[i]
		m.items[t.ID] = &t
	}
	return m
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	out := []models.Teacher{}
	for _, t := range m.items {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, t := range m.items {
		if strings.EqualFold(t.Email, email) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	m.seq++
	teacher.ID = fmt.Sprintf("teacher-%d", m.seq)
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) DeleteCascade(ctx context.Context, id string) (*models.TeacherDeletion, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.items, id)
	return &models.TeacherDeletion{Teacher: *t, Bookings: []models.Booking{}}, nil
}

type mockBookingRepo struct {
	items     map[string]*models.Booking
	details   []models.BookingDetail
	createErr error
	seq       int
}

func newMockBookingRepo(bookings ...models.Booking) *mockBookingRepo {
	m := &mockBookingRepo{items: map[string]*models.Booking{}}
	for i := range bookings {
		b := bookings[i]
		m.items[b.ID] = &b
	}
	return m
}

func (m *mockBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	return m.details, nil
}

func (m *mockBookingRepo) ListUpcoming(ctx context.Context, now time.Time) ([]models.BookingDetail, error) {
	out := []models.BookingDetail{}
	for _, d := range m.details {
		if d.EndTime.After(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := m.items[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingRepo) FindOverlapping(ctx context.Context, roomID, teacherID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	out := []models.Booking{}
	for id, b := range m.items {
		if id == excludeID {
			continue
		}
		if (b.RoomID == roomID || b.TeacherID == teacherID) && b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	booking.ID = fmt.Sprintf("booking-%d", m.seq)
	cp := *booking
	m.items[booking.ID] = &cp
	return nil
}

func (m *mockBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	if _, ok := m.items[booking.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *booking
	m.items[booking.ID] = &cp
	return nil
}

func (m *mockBookingRepo) Delete(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.items, id)
	return b, nil
}

type stubCacheRepo struct {
	mu            sync.Mutex
	schedule      *dto.LiveSchedule
	invalidations int
	loadErr       error
}

func (s *stubCacheRepo) Load(_ context.Context) (*dto.LiveSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.schedule == nil {
		return nil, appErrors.ErrCacheMiss
	}
	copied := *s.schedule
	return &copied, nil
}

func (s *stubCacheRepo) Store(_ context.Context, schedule *dto.LiveSchedule, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = schedule
	return nil
}

func (s *stubCacheRepo) Invalidate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
	s.schedule = nil
	return nil
}

type publishedEvent struct {
	key     string
	payload interface{}
}

type recordingPublisher struct {
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.events = append(p.events, publishedEvent{key: routingKey, payload: payload})
	return p.err
}

func (p *recordingPublisher) keys() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

func appErrorOf(err error) *appErrors.Error {
	return appErrors.FromError(err)
}
