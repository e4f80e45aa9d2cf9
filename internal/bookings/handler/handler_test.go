package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"roomdesk/internal/bookings/events"
	"roomdesk/internal/bookings/repository"
	"roomdesk/internal/bookings/service"
	"roomdesk/internal/bookings/validator"
	"roomdesk/internal/resources"
	"roomdesk/pkg/client"
	"roomdesk/pkg/config"
	kafka_middleware "roomdesk/pkg/kafka/middleware"
	"roomdesk/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "2025-12-05"

func newTestRouter(t *testing.T) *httprouter.Router {
	t.Helper()

	cfg := config.FromEnv("handler-test")
	cfg.Log = logger.New(logger.Config{Output: io.Discard})
	cfg.WorkingHoursStart = config.DefaultWorkingHoursStart
	cfg.WorkingHoursEnd = config.DefaultWorkingHoursEnd
	cfg.SlotGranularity = config.DefaultSlotGranularity
	cfg.SessionTTL = config.DefaultSessionTTL
	cfg.LockTTL = config.DefaultLockTTL

	catalog := resources.MustParse(config.DefaultBranchRooms)
	bookings := service.NewBookingService(
		repository.NewMemoryBookingRepository(),
		repository.NewMemoryBookingLockRepository(),
		validator.NewBookingValidator(cfg.Log, catalog),
		events.NewNoopPublisher(),
		catalog,
		cfg,
	)
	sessions := service.NewSessionService(bookings, catalog, cfg)
	t.Cleanup(sessions.Stop)

	router := httprouter.New()
	NewBookingHandler(bookings, catalog, cfg.Log).RegisterRoutes(router)
	NewSessionHandler(sessions, cfg.Log).RegisterRoutes(router)
	NewHealthHandler(client.NewClient(), kafka_middleware.NewMetrics(), cfg.Log).RegisterRoutes(router)
	return router
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

func do(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func openSession(t *testing.T, router http.Handler, branch, room string) service.SessionView {
	t.Helper()
	rec, env := do(t, router, http.MethodPost, "/api/v1/sessions", OpenSessionRequest{Date: testDate, Branch: branch, Room: room})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view service.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

func TestSessionFlow_CommitAndRead(t *testing.T) {
	router := newTestRouter(t)
	session := openSession(t, router, "Ho Chi Minh", "Room 01")

	rec, env := do(t, router, http.MethodPost, "/api/v1/sessions/"+session.ID+"/clicks", map[string]string{"slot": "14:00"})
	require.Equal(t, http.StatusOK, rec.Code)
	var click service.ClickResult
	require.NoError(t, json.Unmarshal(env.Data, &click))
	assert.Equal(t, "anchored", string(click.Outcome))

	rec, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+session.ID+"/clicks", map[string]string{"slot": "15:00"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPut, "/api/v1/sessions/"+session.ID+"/invite-text", InviteTextRequest{Text: "an@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, router, http.MethodPost, "/api/v1/sessions/"+session.ID+"/commit", map[string]any{
		"organizer": "Linh Tran",
		"title":     "Planning",
		"method":    "office",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var booking struct {
		ID       string   `json:"id"`
		Start    string   `json:"start"`
		End      string   `json:"end"`
		Room     string   `json:"room"`
		Invitees []string `json:"invitees"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, "14:00", booking.Start)
	assert.Equal(t, "15:15", booking.End)
	assert.Equal(t, "Room 01", booking.Room)
	assert.Equal(t, []string{"an@example.com"}, booking.Invitees)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/bookings/id/"+booking.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/api/v1/bookings?date="+testDate, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), booking.ID)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/sessions/"+session.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "session is closed after commit")
}

func TestSessionFlow_ConflictAndValidation(t *testing.T) {
	router := newTestRouter(t)

	first := openSession(t, router, "Ho Chi Minh", "Room 01")
	do(t, router, http.MethodPost, "/api/v1/sessions/"+first.ID+"/clicks", map[string]string{"slot": "09:30"})
	do(t, router, http.MethodPost, "/api/v1/sessions/"+first.ID+"/clicks", map[string]string{"slot": "09:30"})
	do(t, router, http.MethodPost, "/api/v1/sessions/"+first.ID+"/clicks", map[string]string{"slot": "09:30"})
	rec, _ := do(t, router, http.MethodPost, "/api/v1/sessions/"+first.ID+"/clicks", map[string]string{"slot": "09:45"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+first.ID+"/commit", map[string]any{"organizer": "A", "method": "office"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	second := openSession(t, router, "Ho Chi Minh", "Room 01")
	do(t, router, http.MethodPost, "/api/v1/sessions/"+second.ID+"/clicks", map[string]string{"slot": "09:00"})
	rec, env := do(t, router, http.MethodPost, "/api/v1/sessions/"+second.ID+"/clicks", map[string]string{"slot": "10:00"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Code)
	assert.Contains(t, env.Details, "booking")

	rec, env = do(t, router, http.MethodPost, "/api/v1/sessions/"+second.ID+"/clicks", map[string]string{"slot": "09:15"})
	require.Equal(t, http.StatusOK, rec.Code)
	var click service.ClickResult
	require.NoError(t, json.Unmarshal(env.Data, &click))
	assert.Equal(t, "range_selected", string(click.Outcome))

	rec, env = do(t, router, http.MethodPost, "/api/v1/sessions/"+second.ID+"/commit", map[string]any{"organizer": "B", "method": "remote"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	assert.Contains(t, rec.Body.String(), `"field":"link"`)
}

func TestSessionHandler_BadRequests(t *testing.T) {
	router := newTestRouter(t)
	session := openSession(t, router, "", "")
	assert.Nil(t, session.Resource)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{name: "unknown field", method: http.MethodPost, path: "/api/v1/sessions", body: map[string]string{"day": testDate}, wantCode: http.StatusBadRequest},
		{name: "bad slot", method: http.MethodPost, path: "/api/v1/sessions/" + session.ID + "/clicks", body: map[string]string{"slot": "25:00"}, wantCode: http.StatusBadRequest},
		{name: "off grid slot", method: http.MethodPost, path: "/api/v1/sessions/" + session.ID + "/clicks", body: map[string]string{"slot": "07:00"}, wantCode: http.StatusBadRequest},
		{name: "unknown session", method: http.MethodPost, path: "/api/v1/sessions/nope/clicks", body: map[string]string{"slot": "09:00"}, wantCode: http.StatusNotFound},
		{name: "unknown room", method: http.MethodPut, path: "/api/v1/sessions/" + session.ID + "/resource", body: ResourceRequest{Branch: "Ha Noi", Room: "Room 07"}, wantCode: http.StatusUnprocessableEntity},
		{name: "blank invitee", method: http.MethodPost, path: "/api/v1/sessions/" + session.ID + "/invitees", body: InviteeRequest{Invitee: " "}, wantCode: http.StatusBadRequest},
		{name: "commit without range", method: http.MethodPost, path: "/api/v1/sessions/" + session.ID + "/commit", body: map[string]string{"organizer": "A", "method": "office"}, wantCode: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestSessionHandler_Close(t *testing.T) {
	router := newTestRouter(t)
	session := openSession(t, router, "Ha Noi", "Room 02")

	rec, _ := do(t, router, http.MethodDelete, "/api/v1/sessions/"+session.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, router, http.MethodDelete, "/api/v1/sessions/"+session.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingHandler_ReadEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/api/v1/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var branches []resources.Branch
	require.NoError(t, json.Unmarshal(env.Data, &branches))
	assert.Len(t, branches, 2)

	rec, env = do(t, router, http.MethodGet, "/api/v1/grid?date="+testDate, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var day service.DayGrid
	require.NoError(t, json.Unmarshal(env.Data, &day))
	assert.Equal(t, 38, day.Grid.Len())
	assert.Len(t, day.Resources, 5)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/grid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/bookings?date=2025-02-30", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/bookings/id/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/bookings/id/2b7c5f8e-1b1e-4a43-9e63-0d5f0a3e8f11", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	assert.Contains(t, rec.Body.String(), `"events"`)
}
