package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/toeic-session-service/internal/journey"
	"github.com/SAP-F-2025/toeic-session-service/internal/services"
	"github.com/SAP-F-2025/toeic-session-service/internal/session"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
	"github.com/SAP-F-2025/toeic-session-service/internal/utils"
)

// Unimplemented methods panic through the nil embedded interface.
type stubSessionService struct {
	services.SessionService
	start  func(userID string, req *services.StartSessionRequest) (*session.Snapshot, error)
	get    func(userID, sessionID string) (*session.Snapshot, error)
	submit func(userID, sessionID string) (*services.SubmitResponse, error)
	exit   func(userID, sessionID string) error
}

func (s *stubSessionService) Start(_ context.Context, userID string, req *services.StartSessionRequest) (*session.Snapshot, error) {
	return s.start(userID, req)
}

func (s *stubSessionService) Get(_ context.Context, userID, sessionID string) (*session.Snapshot, error) {
	return s.get(userID, sessionID)
}

func (s *stubSessionService) Submit(_ context.Context, userID, sessionID string) (*services.SubmitResponse, error) {
	return s.submit(userID, sessionID)
}

func (s *stubSessionService) Exit(_ context.Context, userID, sessionID string) error {
	return s.exit(userID, sessionID)
}

type stubJourneyService struct {
	services.JourneyService
	load func(userID string, id uint) (journey.State, error)
}

func (s *stubJourneyService) LoadJourney(_ context.Context, userID string, id uint) (journey.State, error) {
	return s.load(userID, id)
}

type stubExportService struct {
	file *services.ExportFile
	err  error
}

func (s *stubExportService) ExportSession(context.Context, string, string) (*services.ExportFile, error) {
	return s.file, s.err
}

type stubManager struct {
	journey *stubJourneyService
	session *stubSessionService
	export  *stubExportService
}

func (m *stubManager) Journey() services.JourneyService { return m.journey }
func (m *stubManager) Session() services.SessionService { return m.session }
func (m *stubManager) Export() services.ExportService   { return m.export }

// staticTokens accepts "good" for user u1.
type staticTokens struct{}

func (staticTokens) ParseUserID(token string) (string, error) {
	if token == "good" {
		return "u1", nil
	}
	return "", errors.New("signature is invalid")
}

func setupRouter(m *stubManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := gin.New()
	NewHandlerManager(m, staticTokens{}, logger).SetupRoutes(router)
	return router
}

func newStubManager() *stubManager {
	return &stubManager{
		journey: &stubJourneyService{},
		session: &stubSessionService{},
		export:  &stubExportService{},
	}
}

func do(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(newStubManager())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	router := setupRouter(newStubManager())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s-1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s-1", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized", resp.Code)
}

func TestStartSession(t *testing.T) {
	m := newStubManager()
	var gotUser string
	m.session.start = func(userID string, req *services.StartSessionRequest) (*session.Snapshot, error) {
		gotUser = userID
		return &session.Snapshot{ID: "s-1", Mode: submit.Mode(req.Mode), Total: 2}, nil
	}
	router := setupRouter(m)

	w := do(router, http.MethodPost, "/api/v1/sessions", map[string]interface{}{"mode": "LESSON", "lesson_id": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u1", gotUser)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "s-1", snap.ID)
	assert.Equal(t, submit.ModeLesson, snap.Mode)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartSession_MissingFieldReportsRule(t *testing.T) {
	m := newStubManager()
	m.session.start = func(string, *services.StartSessionRequest) (*session.Snapshot, error) {
		return nil, services.NewValidationErrorWithRule("lesson_id", "is required for lesson sessions", "required_for_mode", "LESSON")
	}

	w := do(setupRouter(m), http.MethodPost, "/api/v1/sessions", map[string]interface{}{"mode": "LESSON"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code    string                     `json:"code"`
		Details []services.ValidationError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Code)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "lesson_id", resp.Details[0].Field)
	assert.Equal(t, "required_for_mode", resp.Details[0].Rule)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ValidationErrors{{Field: "mode", Message: "invalid"}}, http.StatusBadRequest},
		{"out of range", session.ErrOutOfRange, http.StatusBadRequest},
		{"access denied", services.ErrSessionAccessDenied, http.StatusForbidden},
		{"not found", services.ErrSessionNotFound, http.StatusNotFound},
		{"missing field", services.NewValidationErrorWithRule("lesson_id", "is required for lesson sessions", "required_for_mode", "LESSON"), http.StatusBadRequest},
		{"disabled", submit.ErrDisabled, http.StatusConflict},
		{"time up", session.ErrTimeUp, http.StatusConflict},
		{"stage locked", services.NewBusinessRuleError("stage_locked", "stage is locked", nil), http.StatusConflict},
		{"no questions", services.ErrNoQuestions, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStubManager()
			m.session.get = func(string, string) (*session.Snapshot, error) { return nil, tt.err }
			w := do(setupRouter(m), http.MethodGet, "/api/v1/sessions/s-1", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSubmit(t *testing.T) {
	m := newStubManager()
	m.session.submit = func(userID, sessionID string) (*services.SubmitResponse, error) {
		return &services.SubmitResponse{Outcome: submit.OutcomeConfirm, Session: &session.Snapshot{ID: sessionID}}, nil
	}
	w := do(setupRouter(m), http.MethodPost, "/api/v1/sessions/s-9/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp services.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, submit.OutcomeConfirm, resp.Outcome)
	assert.Equal(t, "s-9", resp.Session.ID)
}

func TestExit(t *testing.T) {
	m := newStubManager()
	exited := ""
	m.session.exit = func(userID, sessionID string) error {
		exited = sessionID
		return nil
	}
	w := do(setupRouter(m), http.MethodPost, "/api/v1/sessions/s-2/exit", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s-2", exited)
}

func TestExportSession(t *testing.T) {
	m := newStubManager()
	m.export.file = &services.ExportFile{Filename: "session_s-1.xlsx", ContentType: "application/octet-stream", Data: []byte("xlsx")}

	w := do(setupRouter(m), http.MethodGet, "/api/v1/sessions/s-1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="session_s-1.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx", w.Body.String())

	m.export.err = services.ErrSessionNotFinished
	w = do(setupRouter(m), http.MethodGet, "/api/v1/sessions/s-1/export", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetJourney(t *testing.T) {
	m := newStubManager()
	m.journey.load = func(userID string, id uint) (journey.State, error) {
		return journey.State{CurrentJourneyID: &id}, nil
	}
	router := setupRouter(m)

	w := do(router, http.MethodGet, "/api/v1/journeys/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state journey.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.CurrentJourneyID)
	assert.Equal(t, uint(3), *state.CurrentJourneyID)

	w = do(router, http.MethodGet, "/api/v1/journeys/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(router, http.MethodGet, "/api/v1/journeys/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
