package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routinepet/internal/coach"
	"routinepet/internal/engine"
	"routinepet/internal/storage"
)

const testToken = "secret"

type downGenerator struct{}

func (downGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("offline")
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := engine.NewFakeClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	svc := engine.NewService(db, engine.WithClock(clock))
	require.NoError(t, svc.EnsureUser(context.Background(), storage.DefaultUserID))

	return NewServer(Options{
		Service:    svc,
		Coach:      coach.New(downGenerator{}, nil),
		AdminToken: testToken,
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "2026-10-14T12:00:00Z", body["time"])

	rec = do(t, h, http.MethodPost, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodGet, "/healthz", "", "X-Request-Id", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestPetStateDefaultsAndValidation(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/pet/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"level":1,"xp":0,"next_level_threshold":100}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/pet/state?user_id=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/pet/state?user_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteRoutineFlow(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPatch, "/admin/pet_state", `{"xp": 95}`, "Authorization", "Bearer "+testToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/routine/complete",
		`{"user_id":1,"routine_id":3,"status":"done","started_at":"2026-10-14T07:00:00","ended_at":"2026-10-14T07:20:00"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res completeResponse
	decode(t, rec, &res)
	assert.Equal(t, engine.PetState{Level: 2, XP: 5, NextLevelThreshold: 150}, res.PetState)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, engine.HintLevelUp, res.CoachHint)
	assert.True(t, res.LeveledUp)

	rec = do(t, h, http.MethodGet, "/api/stats/streak", "")
	assert.JSONEq(t, `{"streak":1}`, rec.Body.String())
}

func TestCompleteRoutineRejectsBadRequests(t *testing.T) {
	h := newTestHandler(t)
	bodies := []string{
		``,
		`{not json`,
		`{"user_id":1,"routine_id":1,"status":"skipped","started_at":"a","ended_at":"b"}`,
		`{"user_id":0,"routine_id":1,"status":"done","started_at":"a","ended_at":"b"}`,
		`{"user_id":1,"routine_id":1,"status":"done","ended_at":"b"}`,
	}
	for _, body := range bodies {
		rec := do(t, h, http.MethodPost, "/api/routine/complete", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		var e map[string]string
		decode(t, rec, &e)
		assert.NotEmpty(t, e["error"])
	}
}

func TestWeeklyStatsEndpoint(t *testing.T) {
	h := newTestHandler(t)
	for _, status := range []string{"done", "done", "partial", "partial"} {
		rec := do(t, h, http.MethodPost, "/api/routine/complete",
			`{"user_id":1,"routine_id":1,"status":"`+status+`","started_at":"2026-10-13T07:00:00","ended_at":"2026-10-13T07:30:00"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	first := do(t, h, http.MethodGet, "/api/stats/weekly", "")
	require.Equal(t, http.StatusOK, first.Code)
	var ws engine.WeeklyStats
	decode(t, first, &ws)
	assert.InDelta(t, 0.75, ws.CompletionRate, 1e-9)
	assert.Equal(t, []string{engine.SlotMorning}, ws.BestSlots)

	second := do(t, h, http.MethodGet, "/api/stats/weekly", "")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestRoutineCRUD(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/routine", `{"title":"Yoga","time":"07:00","days":["Mon","Thu"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var rt engine.Routine
	decode(t, rec, &rt)
	assert.Equal(t, int64(1), rt.UserID)
	assert.Equal(t, engine.DifficultyMid, rt.Difficulty)
	assert.Equal(t, "yoga", rt.IconKey)

	rec = do(t, h, http.MethodPut, "/api/routine/"+itoa(rt.ID), `{"active":false,"title":"Evening yoga"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &rt)
	assert.False(t, rt.Active)
	assert.Equal(t, "Evening yoga", rt.Title)

	rec = do(t, h, http.MethodGet, "/api/routine?user_id=1", "")
	var list []engine.Routine
	decode(t, rec, &list)
	require.Len(t, list, 1)

	rec = do(t, h, http.MethodDelete, "/api/routine/"+itoa(rt.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/routine/"+itoa(rt.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodPut, "/api/routine/999", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/routine", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAdminRequiresToken(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/admin/logs", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, h, http.MethodGet, "/admin/logs", "", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/admin/logs?limit=5", "", "Authorization", "Bearer "+testToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/admin/logs?limit=x", "", "Authorization", "Bearer "+testToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminPatchPetValidation(t *testing.T) {
	h := newTestHandler(t)
	auth := []string{"Authorization", "Bearer " + testToken}
	rec := do(t, h, http.MethodPatch, "/admin/pet_state", `{"level":0}`, auth...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPatch, "/admin/pet_state", `{"user_id":2,"level":4,"next_level_threshold":250}`, auth...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"level":4,"xp":0,"next_level_threshold":250}`, rec.Body.String())
}

func TestAdminLogsListNewestFirst(t *testing.T) {
	h := newTestHandler(t)
	for _, status := range []string{"done", "miss"} {
		do(t, h, http.MethodPost, "/api/routine/complete",
			`{"user_id":1,"routine_id":1,"status":"`+status+`","started_at":"2026-10-13T07:00:00","ended_at":"2026-10-13T07:30:00","note":"n"}`)
	}
	rec := do(t, h, http.MethodGet, "/admin/logs", "", "Authorization", "Bearer "+testToken)
	var logs []engine.LogEntry
	decode(t, rec, &logs)
	require.Len(t, logs, 2)
	assert.Equal(t, engine.StatusMiss, logs[0].Status)
	require.NotNil(t, logs[0].Note)
	assert.Equal(t, "n", *logs[0].Note)
}

func TestCoachFallbacks(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/api/coach/chat", `{"user_id":1,"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"`+coach.FallbackReply+`"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/coach/chat", `{"user_id":1,"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/recommend/generate", `{"user_id":1,"goals":["Sleep"],"prefer_slots":["night"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Plans []coach.Plan `json:"plans"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Plans, 3)
	assert.Equal(t, "21:30", body.Plans[0].Time)
}

func TestCORSAllowsLocalOrigins(t *testing.T) {
	h := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/healthz", "", "Origin", "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodGet, "/healthz", "", "Origin", "http://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverReturnsJSON(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		WithRequestID, WithRecover(NewServer(Options{}).logger))
	rec := do(t, h, http.MethodGet, "/api/x", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
