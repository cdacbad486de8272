package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asistencia/internal/attendance"
	"asistencia/internal/request"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memAttendance is a map-backed attendance.Store for route tests. It enforces
// the one-record-per-person-per-day rule like the real table does.
type memAttendance struct {
	records map[string]attendance.Record
}

func (m *memAttendance) Insert(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	for _, r := range m.records {
		if r.DocumentID == rec.DocumentID && r.Date.Equal(rec.Date) {
			return attendance.Record{}, attendance.ErrDuplicateDay
		}
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memAttendance) Get(_ context.Context, id string) (attendance.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rec, nil
}

func (m *memAttendance) Update(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	if _, ok := m.records[rec.ID]; !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memAttendance) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return attendance.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memAttendance) List(_ context.Context, _ attendance.ListFilter) ([]attendance.Record, error) {
	var res []attendance.Record
	for _, rec := range m.records {
		res = append(res, rec)
	}
	return res, nil
}

func (m *memAttendance) SetPresent(_ context.Context, ids []string, present bool) (int64, error) {
	var n int64
	for _, id := range ids {
		if rec, ok := m.records[id]; ok {
			rec.Present = present
			m.records[id] = rec
			n++
		}
	}
	return n, nil
}

func (m *memAttendance) DuplicateForDate(_ context.Context, _ []string, _ time.Time) (int64, error) {
	return 0, nil
}

func (m *memAttendance) Counts(_ context.Context) (attendance.Stats, error) {
	return attendance.Stats{Total: len(m.records)}, nil
}

func (m *memAttendance) PresentOn(_ context.Context, _ time.Time) ([]attendance.Record, error) {
	return nil, nil
}

func (m *memAttendance) StatsSince(_ context.Context, _ time.Time) (attendance.Stats, error) {
	return attendance.Stats{}, nil
}

func (m *memAttendance) DailyStats(_ context.Context, _, _ time.Time) ([]attendance.DayStats, error) {
	return nil, nil
}

func (m *memAttendance) TopPeople(_ context.Context, _ int) ([]attendance.PersonStats, error) {
	return nil, nil
}

// memRequests is a map-backed request.Store.
type memRequests struct {
	requests map[int64]request.Request
	nextID   int64
}

func (m *memRequests) Insert(_ context.Context, req request.Request) (request.Request, error) {
	m.nextID++
	req.ID = m.nextID
	m.requests[req.ID] = req
	return req, nil
}

func (m *memRequests) Get(_ context.Context, id int64) (request.Request, error) {
	req, ok := m.requests[id]
	if !ok {
		return request.Request{}, request.ErrNotFound
	}
	return req, nil
}

func (m *memRequests) Update(_ context.Context, req request.Request) (request.Request, error) {
	if _, ok := m.requests[req.ID]; !ok {
		return request.Request{}, request.ErrNotFound
	}
	m.requests[req.ID] = req
	return req, nil
}

func (m *memRequests) Delete(_ context.Context, id int64) error {
	if _, ok := m.requests[id]; !ok {
		return request.ErrNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *memRequests) Search(_ context.Context, _ request.SearchFilter) ([]request.Request, error) {
	var res []request.Request
	for _, req := range m.requests {
		res = append(res, req)
	}
	return res, nil
}

const (
	testIssuer   = "asistencia-admin"
	testKey      = "test-signing-key"
	testAdminKey = "llave-admin"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	att := attendance.NewService(&memAttendance{records: map[string]attendance.Record{}}, nil, clock)
	req := request.NewService(&memRequests{requests: map[int64]request.Request{}}, nil)

	h := New(att, req, nil, testIssuer, testKey, testAdminKey, time.Hour)
	r := gin.New()
	h.Register(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func attendanceBody() map[string]any {
	return map[string]any{
		"full_name":   "juan perez",
		"document_id": "1234567",
		"email":       "juan@example.com",
		"date":        "2024-03-15",
		"check_in":    "08:00",
		"check_out":   "17:00",
	}
}

func TestCreateAttendanceRoute(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance", attendanceBody(), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode(t, w)
	assert.Equal(t, "Juan Perez", got["full_name"])
	assert.Equal(t, "2024-03-15", got["date"])
	assert.Equal(t, "9h 0m", got["duration"])
	assert.Equal(t, true, got["full_attendance"])
	assert.Equal(t, "Presente", got["state"])
	assert.NotEmpty(t, got["id"])
}

func TestCreateAttendanceValidationErrors(t *testing.T) {
	r := testRouter(t)

	body := attendanceBody()
	body["document_id"] = "000000"
	body["check_out"] = "07:00"
	w := doJSON(t, r, http.MethodPost, "/v1/attendance", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	got := decode(t, w)
	errs, ok := got["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "El documento no puede ser solo ceros.", errs["document_id"])
	assert.Equal(t, "La hora de salida debe ser posterior a la hora de ingreso.", errs["check_out"])
}

func TestCreateAttendanceDuplicateDay(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance", attendanceBody(), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/v1/attendance", attendanceBody(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetAttendanceNotFound(t *testing.T) {
	r := testRouter(t)
	w := doJSON(t, r, http.MethodGet, "/v1/attendance/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAttendanceUnparseableTime(t *testing.T) {
	r := testRouter(t)

	body := attendanceBody()
	body["check_in"] = "ocho"
	w := doJSON(t, r, http.MethodPost, "/v1/attendance", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	got := decode(t, w)
	errs := got["errors"].(map[string]any)
	assert.Equal(t, "Ingrese una hora válida (HH:MM).", errs["check_in"])
}

func TestAdminTokenFlow(t *testing.T) {
	r := testRouter(t)

	// wrong key
	w := doJSON(t, r, http.MethodPost, "/v1/admin/token", map[string]string{"key": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// right key
	w = doJSON(t, r, http.MethodPost, "/v1/admin/token", map[string]string{"key": testAdminKey}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	// guarded route without the token
	w = doJSON(t, r, http.MethodGet, "/v1/admin/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// and with it
	w = doJSON(t, r, http.MethodGet, "/v1/admin/stats", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDeleteAttendanceRequiresAdmin(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance", attendanceBody(), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = doJSON(t, r, http.MethodDelete, "/v1/attendance/"+id, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tw := doJSON(t, r, http.MethodPost, "/v1/admin/token", map[string]string{"key": testAdminKey}, nil)
	require.Equal(t, http.StatusOK, tw.Code)
	token := decode(t, tw)["token"].(string)

	w = doJSON(t, r, http.MethodDelete, "/v1/attendance/"+id, nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/attendance/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitRequestRoute(t *testing.T) {
	r := testRouter(t)

	body := map[string]any{
		"requester_name": "maria lopez",
		"document_id":    "1234567",
		"email":          "maria@example.com",
		"contact_phone":  "3001234567",
		"type":           "academic",
		"subject":        "Solicitud de certificado",
		"description":    "Necesito el certificado de asistencia del mes pasado.",
	}
	w := doJSON(t, r, http.MethodPost, "/v1/requests", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode(t, w)
	assert.Equal(t, "SOL-000001", got["reference"])
	msg, _ := got["message"].(string)
	assert.True(t, strings.HasPrefix(msg, "Solicitud enviada exitosamente."), msg)

	req, ok := got["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "maria lopez", req["requester_name"])
	assert.Equal(t, "Académica", req["type_label"])
}

func TestSubmitRequestInvalidType(t *testing.T) {
	r := testRouter(t)

	body := map[string]any{
		"requester_name": "maria lopez",
		"document_id":    "1234567",
		"email":          "maria@example.com",
		"contact_phone":  "3001234567",
		"type":           "legal",
		"subject":        "Solicitud de certificado",
		"description":    "Necesito el certificado de asistencia del mes pasado.",
	}
	w := doJSON(t, r, http.MethodPost, "/v1/requests", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	errs := decode(t, w)["errors"].(map[string]any)
	assert.Equal(t, "Seleccione un tipo de solicitud válido.", errs["type"])
}

func TestListRequestsInvalidTypeFilter(t *testing.T) {
	r := testRouter(t)
	w := doJSON(t, r, http.MethodGet, "/v1/requests?type=legal", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
