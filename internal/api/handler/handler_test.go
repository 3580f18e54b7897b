package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bookwise/backend/internal/dto"
	"bookwise/backend/internal/model"
	"bookwise/backend/internal/scheduling"
	"bookwise/backend/internal/service"
	"bookwise/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock SlotService ──

type mockSlotService struct {
	queryResult *dto.SlotsResponse
	queryErr    error
}

func (m *mockSlotService) QuerySlots(_ context.Context, _ *dto.SlotQueryRequest) (*dto.SlotsResponse, error) {
	return m.queryResult, m.queryErr
}
func (m *mockSlotService) ResolveMeetingType(_ context.Context, _, _ string) (*model.MeetingType, error) {
	return nil, service.ErrMeetingTypeNotFound
}
func (m *mockSlotService) EffectiveSettings(_ context.Context, _ *model.MeetingType) (*service.SettingsView, error) {
	return &service.SettingsView{}, nil
}
func (m *mockSlotService) ComputeDaySlots(_ context.Context, _ *model.MeetingType, _ time.Time, _ string) ([]scheduling.Slot, error) {
	return nil, nil
}

// ── Mock BookingService ──

type mockBookingService struct {
	createResult  *dto.BookingResponse
	createErr     error
	adminResult   *dto.BookingResponse
	adminErr      error
	resolveResult *dto.ManageResponse
	resolveErr    error
	publicResult  *dto.BookingResponse
	publicErr     error
	icsBooking    *model.Booking
	icsType       *model.MeetingType
	icsErr        error
}

func (m *mockBookingService) Create(_ context.Context, _ *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockBookingService) AdminAction(_ context.Context, _ string, _ *dto.AdminBookingActionRequest) (*dto.BookingResponse, error) {
	return m.adminResult, m.adminErr
}
func (m *mockBookingService) ResolveByToken(_ context.Context, _ string) (*dto.ManageResponse, error) {
	return m.resolveResult, m.resolveErr
}
func (m *mockBookingService) PublicAction(_ context.Context, _ string, _ *dto.ManageActionRequest) (*dto.BookingResponse, error) {
	return m.publicResult, m.publicErr
}
func (m *mockBookingService) GetForICS(_ context.Context, _ string) (*model.Booking, *model.MeetingType, error) {
	return m.icsBooking, m.icsType, m.icsErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportBookings(_ context.Context, _ *dto.ExportBookingsRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// SlotsHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSlotsHandler_GetSlots_Success(t *testing.T) {
	mock := &mockSlotService{
		queryResult: &dto.SlotsResponse{
			Timezone: "UTC",
			Days:     []dto.DaySlots{{Date: "2025-06-02"}},
		},
	}
	h := NewSlotsHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/slots?slug=office-hours&date=2025-06-02", nil)

	r := gin.New()
	r.GET("/slots", h.GetSlots)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestSlotsHandler_GetSlots_TypeNotFound(t *testing.T) {
	mock := &mockSlotService{queryErr: service.ErrMeetingTypeNotFound}
	h := NewSlotsHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/slots?slug=nope&date=2025-06-02", nil)

	r := gin.New()
	r.GET("/slots", h.GetSlots)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20001 {
		t.Errorf("expected error code 20001, got %d", resp.Code)
	}
}

func TestSlotsHandler_GetSlots_BadDate(t *testing.T) {
	mock := &mockSlotService{}
	h := NewSlotsHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/slots?slug=office-hours&date=June-2", nil)

	r := gin.New()
	r.GET("/slots", h.GetSlots)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// BookingHandler Tests
// ═══════════════════════════════════════════════════════════

func validCreateBody() io.Reader {
	return jsonBody(dto.CreateBookingRequest{
		Slug:        "office-hours",
		Date:        "2025-06-02",
		StartsAtUTC: "2025-06-02T09:00:00Z",
		Name:        "张三",
		Email:       "zhangsan@example.com",
	})
}

func TestBookingHandler_Create_Success(t *testing.T) {
	mock := &mockBookingService{
		createResult: &dto.BookingResponse{ID: "bk-001", Status: model.BookingStatusScheduled},
	}
	h := NewBookingHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bookings", validCreateBody())
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/bookings", h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestBookingHandler_Create_SlotConflict(t *testing.T) {
	mock := &mockBookingService{createErr: service.ErrSlotConflict}
	h := NewBookingHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bookings", validCreateBody())
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/bookings", h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21002 {
		t.Errorf("expected error code 21002, got %d", resp.Code)
	}
}

func TestBookingHandler_Create_ProvisionFailed(t *testing.T) {
	mock := &mockBookingService{createErr: service.ErrProvisionFailed}
	h := NewBookingHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bookings", validCreateBody())
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/bookings", h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21005 {
		t.Errorf("expected error code 21005, got %d", resp.Code)
	}
}

func TestBookingHandler_Create_BadEmail(t *testing.T) {
	mock := &mockBookingService{}
	h := NewBookingHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bookings", jsonBody(dto.CreateBookingRequest{
		Slug:        "office-hours",
		Date:        "2025-06-02",
		StartsAtUTC: "2025-06-02T09:00:00Z",
		Name:        "张三",
		Email:       "not-an-email",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/bookings", h.Create)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBookingHandler_AdminAction_BookingNotFound(t *testing.T) {
	mock := &mockBookingService{adminErr: service.ErrBookingNotFound}
	h := NewBookingHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/bookings/bk-404", jsonBody(dto.AdminBookingActionRequest{
		MeetingTypeID: "3e3e3e3e-0000-0000-0000-000000000001",
		Action:        "cancel",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/bookings/:id", h.AdminAction)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21001 {
		t.Errorf("expected error code 21001, got %d", resp.Code)
	}
}

func TestBookingHandler_AdminAction_InvalidAction(t *testing.T) {
	mock := &mockBookingService{}
	h := NewBookingHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/bookings/bk-001", jsonBody(map[string]string{
		"meeting_type_id": "3e3e3e3e-0000-0000-0000-000000000001",
		"action":          "explode",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/admin/bookings/:id", h.AdminAction)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ManageHandler Tests
// ═══════════════════════════════════════════════════════════

func TestManageHandler_Get_Success(t *testing.T) {
	mock := &mockBookingService{
		resolveResult: &dto.ManageResponse{
			Booking:         dto.BookingResponse{ID: "bk-001"},
			MeetingTypeName: "办公时间",
			AllowReschedule: true,
		},
	}
	h := NewManageHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/manage/some-token", nil)

	r := gin.New()
	r.GET("/manage/:token", h.Get)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestManageHandler_Action_Forbidden(t *testing.T) {
	mock := &mockBookingService{publicErr: service.ErrPublicRescheduleForbidden}
	h := NewManageHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/manage/some-token", jsonBody(dto.ManageActionRequest{
		Action:      "reschedule",
		Date:        "2025-06-02",
		StartsAtUTC: "2025-06-02T10:00:00Z",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/manage/:token", h.Action)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21004 {
		t.Errorf("expected error code 21004, got %d", resp.Code)
	}
}

func TestManageHandler_DownloadICS(t *testing.T) {
	token := "some-token"
	mock := &mockBookingService{
		icsBooking: &model.Booking{
			BookingID:   "bk-001",
			StartsAtUTC: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			EndsAtUTC:   time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
			DisplayName: "张三",
			Status:      model.BookingStatusScheduled,
			PublicToken: &token,
		},
		icsType: &model.MeetingType{Name: "办公时间", Location: "三号楼 201"},
	}
	h := NewManageHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/manage/some-token/ics", nil)

	r := gin.New()
	r.GET("/manage/:token/ics", h.DownloadICS)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("expected text/calendar content type, got %s", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "BEGIN:VEVENT") || !strings.Contains(body, "20250602T090000Z") {
		t.Errorf("ICS 内容缺少事件: %s", body)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportBookings_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "bookings_office-hours_20250601.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/export/bookings?meeting_type_id=3e3e3e3e-0000-0000-0000-000000000001", nil)

	r := gin.New()
	r.GET("/admin/export/bookings", h.ExportBookings)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "bookings_office-hours") {
		t.Errorf("expected attachment disposition, got %s", cd)
	}
}

func TestExportHandler_ExportBookings_Empty(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoBookings}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/export/bookings?meeting_type_id=3e3e3e3e-0000-0000-0000-000000000001", nil)

	r := gin.New()
	r.GET("/admin/export/bookings", h.ExportBookings)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 22001 {
		t.Errorf("expected error code 22001, got %d", resp.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
