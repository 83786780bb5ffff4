package evaluations

import (
	"context"
	"database/sql"
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
	"github.com/codr1/Sideline/internal/evaluations"
	"github.com/codr1/Sideline/internal/testutil"
)

// NOTE: Tests cannot use t.Parallel() due to shared package state.

type fixture struct {
	mux      *http.ServeMux
	rubric   evaluations.Rubric
	linked   dbgen.Player
	unlinked dbgen.Player
	coach    *authz.AuthUser
	player   *authz.AuthUser
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	svc, err := evaluations.NewService(database)
	require.NoError(t, err)
	InitHandlers(database.Queries, svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/evaluations", HandleMyEvaluations)
	mux.HandleFunc("GET /api/v1/evaluations/rubric", HandleRubric)
	mux.HandleFunc("GET /api/v1/evaluations/{id}", HandleGetEvaluation)
	mux.HandleFunc("PUT /api/v1/evaluations/{id}", HandleUpdateEvaluation)
	mux.HandleFunc("DELETE /api/v1/evaluations/{id}", HandleDeleteEvaluation)
	mux.HandleFunc("GET /api/v1/players/{id}/evaluations", HandleListEvaluations)
	mux.HandleFunc("POST /api/v1/players/{id}/evaluations", HandleCreateEvaluation)

	team := testutil.SeedTeam(t, database, "Lions")
	coach := testutil.SeedProfile(t, database, "coach@club.test", "coach")
	parent := testutil.SeedProfile(t, database, "ana@club.test", "player")
	linked, err := database.Queries.CreatePlayer(context.Background(), dbgen.CreatePlayerParams{
		TeamID:    team.ID,
		ProfileID: sql.NullInt64{Int64: parent.ID, Valid: true},
		FirstName: "Ana",
		LastName:  "Test",
		Active:    true,
	})
	require.NoError(t, err)

	rubric, err := svc.Rubric(context.Background())
	require.NoError(t, err)

	return fixture{
		mux:      mux,
		rubric:   rubric,
		linked:   linked,
		unlinked: testutil.SeedPlayer(t, database, team.ID, "Bea", 9),
		coach:    &authz.AuthUser{ID: coach.ID, Role: authz.RoleCoach, TeamIDs: []int64{team.ID}},
		player:   &authz.AuthUser{ID: parent.ID, Role: authz.RolePlayer, TeamIDs: []int64{team.ID}},
	}
}

func (f fixture) do(user *authz.AuthUser, method, path, body string) *httptest.ResponseRecorder {
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
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f fixture) scoreBody(t *testing.T, score int64) string {
	t.Helper()
	require.NotEmpty(t, f.rubric.Categories)
	require.NotEmpty(t, f.rubric.Categories[0].Criteria)
	criterion := f.rubric.Categories[0].Criteria[0]
	return fmt.Sprintf(`{"evaluated_on":"2026-04-01","notes":"Good week","scores":[{"criterion_id":%d,"score":%d}]}`, criterion.ID, score)
}

func TestRubricRoute(t *testing.T) {
	f := newFixture(t)

	rec := f.do(f.player, http.MethodGet, "/api/v1/evaluations/rubric", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rubric evaluations.Rubric
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rubric))
	assert.Len(t, rubric.Categories, 4)

	rec = f.do(nil, http.MethodGet, "/api/v1/evaluations/rubric", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEvaluationLifecycle(t *testing.T) {
	f := newFixture(t)
	path := fmt.Sprintf("/api/v1/players/%d/evaluations", f.linked.ID)

	rec := f.do(f.player, http.MethodPost, path, f.scoreBody(t, 8))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(f.coach, http.MethodPost, path, f.scoreBody(t, 11))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"scores"`)

	rec = f.do(f.coach, http.MethodPost, path, `{"evaluated_on":"soon","scores":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"evaluated_on"`)

	rec = f.do(f.coach, http.MethodPost, path, f.scoreBody(t, 8))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sheet evaluations.Sheet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sheet))
	assert.Equal(t, "2026-04-01", sheet.EvaluatedOn)
	assert.Equal(t, int64(8), sheet.Total)
	assert.Equal(t, 80.0, sheet.Percentage)
	require.NotNil(t, sheet.CoachProfileID)
	assert.Equal(t, f.coach.ID, *sheet.CoachProfileID)

	evalPath := fmt.Sprintf("/api/v1/evaluations/%d", sheet.ID)
	rec = f.do(f.coach, http.MethodPut, evalPath, f.scoreBody(t, 5))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sheet))
	assert.Equal(t, int64(5), sheet.Total)

	rec = f.do(f.player, http.MethodGet, evalPath, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(f.player, http.MethodGet, "/api/v1/evaluations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Evaluations []evaluations.Sheet `json:"evaluations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&mine))
	assert.Len(t, mine.Evaluations, 1)

	rec = f.do(f.player, http.MethodDelete, evalPath, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(f.coach, http.MethodDelete, evalPath, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(f.coach, http.MethodGet, evalPath, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlayersReadOnlyLinkedEvaluations(t *testing.T) {
	f := newFixture(t)

	rec := f.do(f.coach, http.MethodPost, fmt.Sprintf("/api/v1/players/%d/evaluations", f.unlinked.ID), f.scoreBody(t, 6))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sheet evaluations.Sheet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sheet))

	rec = f.do(f.player, http.MethodGet, fmt.Sprintf("/api/v1/players/%d/evaluations", f.unlinked.ID), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(f.player, http.MethodGet, fmt.Sprintf("/api/v1/evaluations/%d", sheet.ID), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(f.coach, http.MethodGet, fmt.Sprintf("/api/v1/players/%d/evaluations", f.unlinked.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":6`)

	outsider := &authz.AuthUser{ID: 99, Role: authz.RoleCoach, TeamIDs: []int64{42}}
	rec = f.do(outsider, http.MethodGet, fmt.Sprintf("/api/v1/players/%d/evaluations", f.unlinked.ID), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(f.coach, http.MethodGet, "/api/v1/players/999/evaluations", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
