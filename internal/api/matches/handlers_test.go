package matches

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/Sideline/internal/api/authz"
	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/matches"
	"github.com/codr1/Sideline/internal/stats"
	"github.com/codr1/Sideline/internal/testutil"
)

// NOTE: Tests cannot use t.Parallel() due to shared package state.

type fixture struct {
	mux      *http.ServeMux
	db       *db.DB
	team     dbgen.Team
	other    dbgen.Team
	ana, bea dbgen.Player
	coach    *authz.AuthUser
	player   *authz.AuthUser
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	database := testutil.NewTestDB(t)

	engine, err := matches.NewEngine(database, 2)
	require.NoError(t, err)
	collector, err := stats.NewCollector(database.Queries)
	require.NoError(t, err)
	InitHandlers(database.Queries, engine, collector)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/teams/{team_id}/matches", HandleListMatches)
	mux.HandleFunc("POST /api/v1/teams/{team_id}/matches", HandleCreateMatch)
	mux.HandleFunc("GET /api/v1/matches/{id}", HandleGetMatch)
	mux.HandleFunc("PUT /api/v1/matches/{id}", HandleUpdateMatch)
	mux.HandleFunc("DELETE /api/v1/matches/{id}", HandleDeleteMatch)
	mux.HandleFunc("GET /api/v1/matches/{id}/call-ups", HandleListCallUps)
	mux.HandleFunc("PUT /api/v1/matches/{id}/call-ups", HandleReplaceCallUps)
	mux.HandleFunc("POST /api/v1/matches/{id}/call-ups", HandleAddCallUp)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/call-ups/{player_id}", HandleRemoveCallUp)
	mux.HandleFunc("GET /api/v1/matches/{id}/periods", HandlePeriodGrid)
	mux.HandleFunc("PUT /api/v1/matches/{id}/periods", HandleRecordPeriods)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/periods/{player_id}/{period}", HandleClearPeriod)
	mux.HandleFunc("POST /api/v1/matches/{id}/substitutions", HandleApplySubstitution)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/substitutions/{substitution_id}", HandleRemoveSubstitution)
	mux.HandleFunc("GET /api/v1/matches/{id}/validation", HandleValidation)
	mux.HandleFunc("GET /api/v1/matches/{id}/quarters", HandleListQuarters)
	mux.HandleFunc("PUT /api/v1/matches/{id}/quarters", HandleRecordQuarter)
	mux.HandleFunc("POST /api/v1/matches/{id}/goals", HandleRecordGoal)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/goals/{goal_id}", HandleDeleteGoal)
	mux.HandleFunc("GET /api/v1/teams/{team_id}/stats", HandleTeamStats)
	mux.HandleFunc("GET /api/v1/players/{id}/stats", HandlePlayerStats)

	team := testutil.SeedTeam(t, database, "Lions")
	other := testutil.SeedTeam(t, database, "Tigers")
	coach := testutil.SeedProfile(t, database, "coach@club.test", "coach")
	parent := testutil.SeedProfile(t, database, "player@club.test", "player")
	return fixture{
		mux:    mux,
		db:     database,
		team:   team,
		other:  other,
		ana:    testutil.SeedPlayer(t, database, team.ID, "Ana", 7),
		bea:    testutil.SeedPlayer(t, database, team.ID, "Bea", 9),
		coach:  &authz.AuthUser{ID: coach.ID, Role: authz.RoleCoach, TeamIDs: []int64{team.ID}},
		player: &authz.AuthUser{ID: parent.ID, Role: authz.RolePlayer, TeamIDs: []int64{team.ID}},
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

func TestMatchCRUD(t *testing.T) {
	f := newFixture(t)
	path := fmt.Sprintf("/api/v1/teams/%d/matches", f.team.ID)

	rec := f.do(f.player, http.MethodPost, path, `{"opponent":"Eagles","match_date":"2026-09-05T10:00:00Z"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(f.coach, http.MethodPost, path, `{"opponent":"Eagles","match_date":"next week"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"match_date"`)

	rec = f.do(f.coach, http.MethodPost, path, `{"opponent":" Eagles ","match_date":"2026-09-05T10:00:00Z","is_home":false}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var match dbgen.Match
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&match))
	assert.Equal(t, "Eagles", match.Opponent)
	assert.False(t, match.IsHome)
	assert.Equal(t, f.coach.ID, match.CreatedBy.Int64)

	rec = f.do(f.player, http.MethodGet, path+"?from=2026-09-01&to=2026-09-30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Matches []dbgen.Match `json:"matches"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list.Matches, 1)

	rec = f.do(f.player, http.MethodGet, path+"?from=2026-10-01", "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Empty(t, list.Matches)

	matchPath := fmt.Sprintf("/api/v1/matches/%d", match.ID)
	rec = f.do(f.coach, http.MethodPut, matchPath, `{"opponent":"Hawks","match_date":"2026-09-06"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Hawks")

	outsider := &authz.AuthUser{ID: 12, Role: authz.RoleCoach, TeamIDs: []int64{f.other.ID}}
	rec = f.do(outsider, http.MethodGet, matchPath, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(nil, http.MethodGet, matchPath, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(f.coach, http.MethodDelete, matchPath, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(f.coach, http.MethodGet, matchPath, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallUpsAndSubstitutions(t *testing.T) {
	f := newFixture(t)
	match := testutil.SeedMatch(t, f.db, f.team.ID, "Eagles", time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC))
	base := fmt.Sprintf("/api/v1/matches/%d", match.ID)

	rec := f.do(f.coach, http.MethodPut, base+"/call-ups", fmt.Sprintf(`{"playerIds":[%d,%d]}`, f.ana.ID, f.bea.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var callUps struct {
		CallUps []callUpView `json:"callUps"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&callUps))
	assert.Len(t, callUps.CallUps, 2)

	rec = f.do(f.coach, http.MethodPost, base+"/call-ups", fmt.Sprintf(`{"playerId":%d}`, f.ana.ID))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(f.coach, http.MethodPut, base+"/periods", fmt.Sprintf(`{"periods":[{"playerId":%d,"period":1,"fraction":"full"}]}`, f.ana.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(f.coach, http.MethodPut, base+"/periods", fmt.Sprintf(`{"periods":[{"playerId":%d,"period":5,"fraction":"full"}]}`, f.ana.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	subBody := fmt.Sprintf(`{"period":1,"playerOutId":%d,"playerInId":%d}`, f.ana.ID, f.bea.ID)
	rec = f.do(f.coach, http.MethodPost, base+"/substitutions", subBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var applied substitutionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&applied))
	require.True(t, applied.OK)
	require.NotNil(t, applied.Substitution)

	rec = f.do(f.coach, http.MethodPost, base+"/substitutions", subBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var refused substitutionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&refused))
	assert.False(t, refused.OK)
	assert.NotEmpty(t, refused.Error)

	rec = f.do(f.coach, http.MethodGet, base+"/periods", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var grid struct {
		Players []matches.GridRow `json:"players"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&grid))
	require.Len(t, grid.Players, 2)
	for _, row := range grid.Players {
		assert.Equal(t, "half", row.Periods[0])
		assert.InDelta(t, 0.5, row.Total, 0.001)
	}

	rec = f.do(f.coach, http.MethodDelete, fmt.Sprintf("%s/call-ups/%d", base, f.bea.ID), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(f.player, http.MethodGet, base+"/validation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report matches.ValidationReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.False(t, report.Valid)
	assert.Equal(t, 2, report.Minimum)
	assert.Len(t, report.Violations, 2)

	rec = f.do(f.coach, http.MethodDelete, fmt.Sprintf("%s/substitutions/%d", base, applied.Substitution.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(f.coach, http.MethodDelete, fmt.Sprintf("%s/substitutions/%d", base, applied.Substitution.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(f.coach, http.MethodDelete, fmt.Sprintf("%s/call-ups/%d", base, f.bea.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(f.player, http.MethodPost, base+"/call-ups", fmt.Sprintf(`{"playerId":%d}`, f.bea.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResultsAndStats(t *testing.T) {
	f := newFixture(t)
	match := testutil.SeedMatch(t, f.db, f.team.ID, "Eagles", time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC))
	testutil.SeedCallUp(t, f.db, match.ID, f.ana.ID)
	base := fmt.Sprintf("/api/v1/matches/%d", match.ID)

	rec := f.do(f.coach, http.MethodPut, base+"/quarters", `{"quarter":1,"teamGoals":2,"opponentGoals":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var results struct {
		Result *stats.Score `json:"result"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.NotNil(t, results.Result)
	assert.Equal(t, stats.ResultWin, results.Result.Outcome)

	rec = f.do(f.coach, http.MethodPut, base+"/quarters", `{"quarter":2,"teamGoals":-1,"opponentGoals":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(f.coach, http.MethodPost, base+"/goals", fmt.Sprintf(`{"quarter":1,"scorerPlayerId":%d}`, f.ana.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var goal dbgen.MatchGoal
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&goal))

	rec = f.do(f.coach, http.MethodPost, base+"/goals", fmt.Sprintf(`{"quarter":1,"scorerPlayerId":%d}`, f.bea.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(f.player, http.MethodGet, fmt.Sprintf("/api/v1/teams/%d/stats", f.team.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var team stats.TeamReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&team))
	assert.Equal(t, 1, team.Summary.Wins)
	assert.Equal(t, 1, team.Summary.Played)

	rec = f.do(f.player, http.MethodGet, fmt.Sprintf("/api/v1/players/%d/stats", f.ana.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var player stats.PlayerReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&player))
	assert.Equal(t, int64(1), player.Goals)
	assert.Equal(t, int64(1), player.CalledUp)

	outsider := &authz.AuthUser{ID: 12, Role: authz.RolePlayer, TeamIDs: []int64{f.other.ID}}
	rec = f.do(outsider, http.MethodGet, fmt.Sprintf("/api/v1/players/%d/stats", f.ana.ID), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(f.coach, http.MethodDelete, fmt.Sprintf("%s/goals/%d", base, goal.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(f.coach, http.MethodDelete, fmt.Sprintf("%s/goals/%d", base, goal.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
