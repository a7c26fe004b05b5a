package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/model"
	"timeface/internal/service"
	pkgerrors "timeface/pkg/errors"
	"timeface/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testCollaboratorID = "8f14e45f-ceea-467f-a8f4-2f7d3c0b9a11"
	testShiftID        = "c9f0f895-fb98-4b91-9f6a-1a2b3c4d5e6f"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ShiftService ──

type mockShiftService struct {
	createResult *dto.ShiftResponse
	createErr    error
	deleteErr    error
	lastCaller   string
}

func (m *mockShiftService) Create(_ context.Context, _ *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	m.lastCaller = callerID
	return m.createResult, m.createErr
}
func (m *mockShiftService) GetByID(context.Context, string) (*dto.ShiftResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockShiftService) List(context.Context) ([]dto.ShiftResponse, error) { return nil, nil }
func (m *mockShiftService) Update(context.Context, string, *dto.UpdateShiftRequest, string) (*dto.ShiftResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockShiftService) Delete(context.Context, string) error { return m.deleteErr }

// ── Mock ScheduleService ──

type mockScheduleService struct {
	weekResult *dto.WeekGridResponse
	weekStart  model.Date
	copyResult *dto.BulkWriteResponse
	err        error
}

func (m *mockScheduleService) GetWeek(_ context.Context, start model.Date) (*dto.WeekGridResponse, error) {
	m.weekStart = start
	return m.weekResult, m.err
}
func (m *mockScheduleService) SetCell(context.Context, *dto.SetCellRequest, string) (*dto.CellResult, error) {
	return &dto.CellResult{Changed: true}, m.err
}
func (m *mockScheduleService) RemoveCell(context.Context, *dto.RemoveCellRequest) (*dto.CellResult, error) {
	return &dto.CellResult{}, m.err
}
func (m *mockScheduleService) CopyWeek(context.Context, *dto.CopyWeekRequest, string) (*dto.BulkWriteResponse, error) {
	return m.copyResult, m.err
}
func (m *mockScheduleService) FillGaps(context.Context, *dto.FillGapsRequest, string) (*dto.BulkWriteResponse, error) {
	return m.copyResult, m.err
}
func (m *mockScheduleService) UpdateStatus(context.Context, *dto.UpdateScheduleStatusRequest) (*dto.ScheduleCell, error) {
	return nil, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportWeek(context.Context, model.Date) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

func (m *mockExportService) ExportCalendar(context.Context, model.Date, string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	eventResult   *dto.RecordEventResponse
	captureResult *dto.CaptureResponse
	err           error
	lastAt        time.Time
	lastImage     []byte
}

func (m *mockAttendanceService) RecordEvent(_ context.Context, _ string, at time.Time, _ string) (*dto.RecordEventResponse, error) {
	m.lastAt = at
	return m.eventResult, m.err
}
func (m *mockAttendanceService) RecordCapture(_ context.Context, image []byte, at time.Time) (*dto.CaptureResponse, error) {
	m.lastImage = image
	m.lastAt = at
	return m.captureResult, m.err
}
func (m *mockAttendanceService) ListRecords(context.Context, *dto.AttendanceListRequest) ([]dto.AttendanceRecordResponse, error) {
	return nil, m.err
}
func (m *mockAttendanceService) Status(context.Context, string) (*dto.AttendanceStatusResponse, error) {
	return nil, m.err
}

// ── Mock CorrectionService ──

type mockCorrectionService struct {
	closeResult *dto.AttendanceRecordResponse
	err         error
}

func (m *mockCorrectionService) ListStaleOpen(context.Context) ([]dto.StaleShiftResponse, error) {
	return nil, m.err
}
func (m *mockCorrectionService) CloseStale(context.Context, *dto.CloseStaleShiftRequest, string) (*dto.AttendanceRecordResponse, error) {
	return m.closeResult, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-admin-id")
	c.Set("role", "admin")
}

func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func multipartBody(t *testing.T, field string, data []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, "capture.jpg")
		if err != nil {
			t.Fatalf("创建表单文件失败: %v", err)
		}
		fw.Write(data)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

// ═══════════════════════════════════════════════════════════
// respondDomainError
// ═══════════════════════════════════════════════════════════

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"不存在", fmt.Errorf("%w: 班次不存在", pkgerrors.ErrNotFound), http.StatusNotFound, 20404},
		{"冲突", service.ErrShiftInUse, http.StatusConflict, 20409},
		{"阻断", pkgerrors.ErrBlocked, http.StatusLocked, 20423},
		{"参数", service.ErrInvalidShiftTime, http.StatusBadRequest, 20400},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondDomainError(c, codeShift, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态码 %d, 实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d, 实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ShiftHandler
// ═══════════════════════════════════════════════════════════

func TestShiftHandler_Create(t *testing.T) {
	mock := &mockShiftService{createResult: &dto.ShiftResponse{ID: testShiftID, Name: "早班"}}
	h := NewShiftHandler(mock)

	r := gin.New()
	r.POST("/shifts", withAuth(h.Create))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/shifts", jsonBody(dto.CreateShiftRequest{
		Name: "早班", StartTime: "08:00", EndTime: "16:00",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("期望 201, 实际 %d", w.Code)
	}
	if mock.lastCaller != "test-admin-id" {
		t.Errorf("调用方应取自 JWT, 实际 %q", mock.lastCaller)
	}
}

func TestShiftHandler_Create_BadTime(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{})

	r := gin.New()
	r.POST("/shifts", withAuth(h.Create))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/shifts", jsonBody(map[string]string{
		"name": "早班", "start_time": "8am", "end_time": "16:00",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400, 实际 %d", w.Code)
	}
}

func TestShiftHandler_Delete_InUse(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{deleteErr: service.ErrShiftInUse})

	r := gin.New()
	r.DELETE("/shifts/:id", h.Delete)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/shifts/"+testShiftID, nil))

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409, 实际 %d", w.Code)
	}
}

func TestShiftHandler_Create_Unauthenticated(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{})

	r := gin.New()
	r.POST("/shifts", h.Create)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/shifts", jsonBody(dto.CreateShiftRequest{
		Name: "早班", StartTime: "08:00", EndTime: "16:00",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401, 实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_GetWeek(t *testing.T) {
	mock := &mockScheduleService{weekResult: &dto.WeekGridResponse{WeekStart: "2024-03-04"}}
	h := NewScheduleHandler(mock, &mockExportService{})

	r := gin.New()
	r.GET("/schedules/week", h.GetWeek)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schedules/week?start=2024-03-06", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d", w.Code)
	}
	if mock.weekStart != model.NewDate(2024, 3, 6) {
		t.Errorf("期望透传 2024-03-06, 实际 %s", mock.weekStart)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schedules/week?start=03/06/2024", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法日期期望 400, 实际 %d", w.Code)
	}
}

func TestScheduleHandler_CopyWeek_EmptySource(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{err: service.ErrEmptySourceWeek}, &mockExportService{})

	r := gin.New()
	r.POST("/schedules/copy-week", withAuth(h.CopyWeek))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/schedules/copy-week", jsonBody(dto.CopyWeekRequest{
		TargetStart: "2024-03-11", TargetEnd: "2024-03-17",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404, 实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeSchedule+101 {
		t.Errorf("期望错误码 %d, 实际 %d", codeSchedule+101, resp.Code)
	}
}

func TestScheduleHandler_SetCell_Conflict(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{err: pkgerrors.ErrConflict}, &mockExportService{})

	r := gin.New()
	r.PUT("/schedules/cell", withAuth(h.SetCell))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/schedules/cell", jsonBody(dto.SetCellRequest{
		CollaboratorID: testCollaboratorID, Date: "2024-03-04", ShiftID: testShiftID,
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409, 实际 %d", w.Code)
	}
}

func TestScheduleHandler_Export(t *testing.T) {
	export := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "schedule_2024-03-04.xlsx"}
	h := NewScheduleHandler(&mockScheduleService{}, export)

	r := gin.New()
	r.GET("/schedules/export", h.Export)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schedules/export?start=2024-03-04", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200, 实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type 不正确: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''schedule_2024-03-04.xlsx" {
		t.Errorf("Content-Disposition 不正确: %s", cd)
	}
	if w.Body.String() != "xlsx" {
		t.Errorf("响应体不正确: %q", w.Body.String())
	}
}

func TestScheduleHandler_Calendar(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		err      error
		wantCode int
	}{
		{"正常导出", "start=2024-03-04&collaborator_id=" + testCollaboratorID, nil, http.StatusOK},
		{"缺少员工", "start=2024-03-04", nil, http.StatusBadRequest},
		{"员工不存在", "start=2024-03-04&collaborator_id=" + testCollaboratorID, pkgerrors.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			export := &mockExportService{buf: bytes.NewBufferString("BEGIN:VCALENDAR"), filename: "schedule.ics", err: tt.err}
			h := NewScheduleHandler(&mockScheduleService{}, export)

			r := gin.New()
			r.GET("/schedules/calendar", h.Calendar)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schedules/calendar?"+tt.query, nil))

			if w.Code != tt.wantCode {
				t.Fatalf("期望 %d, 实际 %d", tt.wantCode, w.Code)
			}
			if tt.wantCode == http.StatusOK {
				if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
					t.Errorf("Content-Type 不正确: %s", ct)
				}
				if w.Body.String() != "BEGIN:VCALENDAR" {
					t.Errorf("响应体不正确: %q", w.Body.String())
				}
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_RecordEvent_StaleOpen(t *testing.T) {
	entryAt := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	mock := &mockAttendanceService{err: &pkgerrors.StaleOpenError{
		CollaboratorID: testCollaboratorID,
		EntryID:        "rec-1",
		EntryAt:        entryAt,
		StaleDate:      "2024-03-04",
	}}
	h := NewAttendanceHandler(mock)

	r := gin.New()
	r.POST("/attendance/events", h.RecordEvent)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/events", jsonBody(dto.RecordEventRequest{
		CollaboratorID: testCollaboratorID,
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusLocked {
		t.Fatalf("期望 423, 实际 %d", w.Code)
	}

	var body struct {
		Code    int                  `json:"code"`
		Details dto.StaleOpenDetails `json:"details"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != codeAttendance+423 {
		t.Errorf("期望错误码 %d, 实际 %d", codeAttendance+423, body.Code)
	}
	if body.Details.EntryID != "rec-1" || body.Details.StaleDate != "2024-03-04" {
		t.Errorf("阻断详情不正确: %+v", body.Details)
	}
	if !mock.lastAt.IsZero() {
		t.Error("未传 timestamp 时应交由业务层取当前时间")
	}
}

func TestAttendanceHandler_RecordEvent_Timestamp(t *testing.T) {
	mock := &mockAttendanceService{eventResult: &dto.RecordEventResponse{}}
	h := NewAttendanceHandler(mock)

	r := gin.New()
	r.POST("/attendance/events", h.RecordEvent)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/events", jsonBody(dto.RecordEventRequest{
		CollaboratorID: testCollaboratorID,
		Timestamp:      "2024-03-04T08:00:00-05:00",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201, 实际 %d", w.Code)
	}
	want := time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)
	if !mock.lastAt.Equal(want) {
		t.Errorf("期望 %s, 实际 %s", want, mock.lastAt)
	}
}

func TestAttendanceHandler_Capture(t *testing.T) {
	mock := &mockAttendanceService{captureResult: &dto.CaptureResponse{Matched: false, Compared: 3}}
	h := NewAttendanceHandler(mock)

	r := gin.New()
	r.POST("/attendance/capture", h.Capture)

	body, contentType := multipartBody(t, "image", []byte("jpeg"), nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/capture", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("未识别到员工也应返回 200, 实际 %d", w.Code)
	}
	if string(mock.lastImage) != "jpeg" {
		t.Errorf("图片内容未透传: %q", mock.lastImage)
	}
}

func TestAttendanceHandler_Capture_Errors(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		fields     map[string]string
		err        error
		wantStatus int
	}{
		{"缺少图片", "", nil, nil, http.StatusBadRequest},
		{"时间格式错误", "image", map[string]string{"timestamp": "yesterday"}, nil, http.StatusBadRequest},
		{"比对未启用", "image", nil, service.ErrFaceMatchDisabled, http.StatusServiceUnavailable},
		{"跨日未关闭", "image", nil, &pkgerrors.StaleOpenError{StaleDate: "2024-03-04"}, http.StatusLocked},
		{"处理中", "image", nil, service.ErrAttendanceBusy, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{err: tt.err})
			r := gin.New()
			r.POST("/attendance/capture", h.Capture)

			body, contentType := multipartBody(t, tt.field, []byte("jpeg"), tt.fields)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/attendance/capture", body)
			req.Header.Set("Content-Type", contentType)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d, 实际 %d", tt.wantStatus, w.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// CorrectionHandler
// ═══════════════════════════════════════════════════════════

func TestCorrectionHandler_Close(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"成功", nil, http.StatusCreated},
		{"无需补录", service.ErrNothingToCorrect, http.StatusBadRequest},
		{"员工不存在", service.ErrCollaboratorNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCorrectionHandler(&mockCorrectionService{
				closeResult: &dto.AttendanceRecordResponse{ID: "rec-2", IsManual: true},
				err:         tt.err,
			})
			r := gin.New()
			r.POST("/corrections/close", withAuth(h.Close))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/corrections/close", jsonBody(dto.CloseStaleShiftRequest{
				CollaboratorID: testCollaboratorID,
				ExitAt:         "2024-03-04T18:00:00-05:00",
			}))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d, 实际 %d", tt.wantStatus, w.Code)
			}
		})
	}
}
