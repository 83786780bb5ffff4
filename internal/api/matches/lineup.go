package matches

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/api/apiutil"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/matches"
)

type callUpView struct {
	PlayerID     int64  `json:"playerId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	JerseyNumber *int64 `json:"jerseyNumber,omitempty"`
	Position     string `json:"position"`
}

func callUpViews(rows []dbgen.ListMatchCallUpsRow) []callUpView {
	views := make([]callUpView, 0, len(rows))
	for _, row := range rows {
		views = append(views, callUpView{
			PlayerID:     row.PlayerID,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			JerseyNumber: apiutil.FromNullInt64(row.JerseyNumber),
			Position:     row.Position,
		})
	}
	return views
}

func writeCallUps(ctx context.Context, w http.ResponseWriter, r *http.Request, matchID int64, status int) {
	rows, err := engine.ListCallUps(ctx, matchID)
	if err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	writeJSON(w, r, status, map[string]any{"callUps": callUpViews(rows)})
}

// GET /api/v1/matches/{id}/call-ups
func HandleListCallUps(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()
	writeCallUps(ctx, w, r, match.ID, http.StatusOK)
}

// PUT /api/v1/matches/{id}/call-ups
func HandleReplaceCallUps(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	var req struct {
		PlayerIDs []int64 `json:"playerIds"`
	}
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}
	if req.PlayerIDs == nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "playerIds", Reason: "is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if err := engine.ReplaceCallUps(ctx, match.ID, req.PlayerIDs); err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("match_id", match.ID).Int("players", len(req.PlayerIDs)).Msg("Call-ups replaced")
	writeCallUps(ctx, w, r, match.ID, http.StatusOK)
}

// POST /api/v1/matches/{id}/call-ups
func HandleAddCallUp(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	var req struct {
		PlayerID int64 `json:"playerId"`
	}
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}
	if req.PlayerID <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "playerId", Reason: "must be a positive integer"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if err := engine.AddCallUp(ctx, match.ID, req.PlayerID); err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	writeCallUps(ctx, w, r, match.ID, http.StatusCreated)
}

// DELETE /api/v1/matches/{id}/call-ups/{player_id}
func HandleRemoveCallUp(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	playerID, ok := apiutil.PathID(w, r, "player_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if err := engine.RemoveCallUp(ctx, match.ID, playerID); err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeGrid(ctx context.Context, w http.ResponseWriter, r *http.Request, matchID int64) {
	grid, err := engine.PeriodGrid(ctx, matchID)
	if err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	subs, err := engine.ListSubstitutions(ctx, matchID)
	if err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	if subs == nil {
		subs = []dbgen.MatchSubstitution{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"players": grid, "substitutions": subs})
}

// GET /api/v1/matches/{id}/periods
func HandlePeriodGrid(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()
	writeGrid(ctx, w, r, match.ID)
}

// PUT /api/v1/matches/{id}/periods
func HandleRecordPeriods(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	var req struct {
		Periods []matches.PeriodInput `json:"periods"`
	}
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}
	if len(req.Periods) == 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "periods", Reason: "must not be empty"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if err := engine.RecordPeriods(ctx, match.ID, req.Periods); err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	writeGrid(ctx, w, r, match.ID)
}

// DELETE /api/v1/matches/{id}/periods/{player_id}/{period}
func HandleClearPeriod(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	playerID, ok := apiutil.PathID(w, r, "player_id")
	if !ok {
		return
	}
	period, ok := apiutil.PathID(w, r, "period")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if err := engine.ClearPeriod(ctx, match.ID, playerID, period); err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type substitutionResult struct {
	OK           bool                     `json:"ok"`
	Error        string                   `json:"error,omitempty"`
	Substitution *dbgen.MatchSubstitution `json:"substitution,omitempty"`
}

// POST /api/v1/matches/{id}/substitutions
//
// Refused substitutions answer with ok=false and the reason.
func HandleApplySubstitution(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	var in matches.SubstitutionInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	sub, err := engine.ApplySubstitution(ctx, match.ID, in)
	if err != nil {
		herr := engineError(err)
		if status := statusOf(herr); status < http.StatusInternalServerError && status != http.StatusNotFound {
			writeJSON(w, r, status, substitutionResult{OK: false, Error: err.Error()})
			return
		}
		apiutil.WriteError(w, r, herr)
		return
	}
	writeJSON(w, r, http.StatusCreated, substitutionResult{OK: true, Substitution: &sub})
}

// DELETE /api/v1/matches/{id}/substitutions/{substitution_id}
func HandleRemoveSubstitution(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	subID, ok := apiutil.PathID(w, r, "substitution_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if err := engine.RemoveSubstitution(ctx, match.ID, subID); err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/matches/{id}/validation
func HandleValidation(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	report, err := engine.ValidateMinimumPeriods(ctx, match.ID)
	if err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	if report.Violations == nil {
		report.Violations = []matches.PeriodViolation{}
	}
	writeJSON(w, r, http.StatusOK, report)
}

func writeResults(ctx context.Context, w http.ResponseWriter, r *http.Request, matchID int64) {
	quarters, score, err := engine.ListQuarterResults(ctx, matchID)
	if err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	goals, err := engine.ListGoals(ctx, matchID)
	if err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	if quarters == nil {
		quarters = []dbgen.MatchQuarterResult{}
	}
	if goals == nil {
		goals = []dbgen.MatchGoal{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"quarters": quarters, "result": score, "goals": goals})
}

// GET /api/v1/matches/{id}/quarters
func HandleListQuarters(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()
	writeResults(ctx, w, r, match.ID)
}

// PUT /api/v1/matches/{id}/quarters
func HandleRecordQuarter(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	var in matches.QuarterInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if _, err := engine.RecordQuarterResult(ctx, match.ID, in); err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	writeResults(ctx, w, r, match.ID)
}

// POST /api/v1/matches/{id}/goals
func HandleRecordGoal(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	var in matches.GoalInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	goal, err := engine.RecordGoal(ctx, match.ID, in)
	if err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	writeJSON(w, r, http.StatusCreated, goal)
}

// DELETE /api/v1/matches/{id}/goals/{goal_id}
func HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	goalID, ok := apiutil.PathID(w, r, "goal_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if err := engine.DeleteGoal(ctx, match.ID, goalID); err != nil {
		apiutil.WriteError(w, r, engineError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusOf(err error) int {
	if herr, ok := err.(apiutil.HandlerError); ok {
		return herr.Status
	}
	return http.StatusInternalServerError
}
