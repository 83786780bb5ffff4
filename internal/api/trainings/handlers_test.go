package trainings

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/Sideline/internal/api/authz"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/testutil"
	"github.com/codr1/Sideline/internal/trainings"
)

// NOTE: Tests cannot use t.Parallel() due to shared package state.

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	database := testutil.NewTestDB(t)
	svc, err := trainings.NewService(database)
	require.NoError(t, err)
	InitHandlers(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/teams/{team_id}/trainings", HandleListTrainings)
	mux.HandleFunc("POST /api/v1/teams/{team_id}/trainings", HandleCreateTraining)
	mux.HandleFunc("GET /api/v1/teams/{team_id}/attendance", HandleAttendanceSummary)
	mux.HandleFunc("GET /api/v1/trainings/{id}", HandleGetTraining)
	mux.HandleFunc("PUT /api/v1/trainings/{id}", HandleUpdateTraining)
	mux.HandleFunc("DELETE /api/v1/trainings/{id}", HandleDeleteTraining)
	mux.HandleFunc("GET /api/v1/trainings/{id}/attendance", HandleGetAttendance)
	mux.HandleFunc("PUT /api/v1/trainings/{id}/attendance", HandleReplaceAttendance)

	lions := testutil.SeedTeam(t, database, "Lions")
	testutil.SeedTeam(t, database, "Tigers")
	testutil.SeedPlayer(t, database, lions.ID, "Ana", 7)
	testutil.SeedPlayer(t, database, lions.ID, "Bea", 9)
	return mux
}

func do(mux *http.ServeMux, user *authz.AuthUser, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

var (
	coach  = &authz.AuthUser{ID: 1, Role: authz.RoleCoach, TeamIDs: []int64{1}}
	player = &authz.AuthUser{ID: 2, Role: authz.RolePlayer, TeamIDs: []int64{1}}
)

func TestTrainingLifecycle(t *testing.T) {
	mux := newMux(t)

	rec := do(mux, player, http.MethodPost, "/api/v1/teams/1/trainings", `{"session_date":"2026-03-02T18:00:00Z"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(mux, coach, http.MethodPost, "/api/v1/teams/1/trainings", `{"location":"Field 2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"session_date"`)

	rec = do(mux, coach, http.MethodPost, "/api/v1/teams/1/trainings", `{"session_date":"2026-03-02T18:00:00Z","location":" Field 2 "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var training dbgen.Training
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&training))
	assert.Equal(t, "Field 2", training.Location)

	rec = do(mux, player, http.MethodGet, "/api/v1/teams/1/trainings?from=2026-03-01&to=2026-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Field 2")

	path := fmt.Sprintf("/api/v1/trainings/%d", training.ID)
	rec = do(mux, coach, http.MethodPut, path, `{"session_date":"2026-03-03","location":"Gym"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Gym")

	outsider := &authz.AuthUser{ID: 3, Role: authz.RoleCoach, TeamIDs: []int64{2}}
	rec = do(mux, outsider, http.MethodGet, path, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(mux, coach, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(mux, coach, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttendanceRoutes(t *testing.T) {
	mux := newMux(t)

	rec := do(mux, coach, http.MethodPost, "/api/v1/teams/1/trainings", `{"session_date":"2026-03-02T18:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var training dbgen.Training
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&training))
	path := fmt.Sprintf("/api/v1/trainings/%d/attendance", training.ID)

	rec = do(mux, coach, http.MethodPut, path, `{"attendance":[{"player_id":1,"status":"present"},{"player_id":2,"status":"late"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(mux, coach, http.MethodPut, path, `{"attendance":[{"player_id":1,"status":"sleeping"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(mux, player, http.MethodPut, path, `{"attendance":[]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(mux, player, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Attendance []dbgen.TrainingAttendance `json:"attendance"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Attendance, 2)

	rec = do(mux, player, http.MethodGet, "/api/v1/teams/1/attendance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Players []trainings.PlayerAttendance `json:"players"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	require.Len(t, summary.Players, 2)
	for _, p := range summary.Players {
		assert.Equal(t, 1, p.Attended)
		assert.Equal(t, 100.0, p.Percentage)
	}
}
