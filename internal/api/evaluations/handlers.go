// internal/api/evaluations/handlers.go
package evaluations

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/api/apiutil"
	"github.com/codr1/Sideline/internal/api/authz"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/evaluations"
)

const evaluationsQueryTimeout = 5 * time.Second

var (
	queries *dbgen.Queries
	service *evaluations.Service
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries, s *evaluations.Service) {
	queries = q
	service = s
}

type evaluationRequest struct {
	EvaluatedOn string                   `json:"evaluated_on"`
	Notes       string                   `json:"notes"`
	Scores      []evaluations.ScoreInput `json:"scores"`
}

func decodeEvaluation(w http.ResponseWriter, r *http.Request, coachID int64) (evaluations.Input, bool) {
	var req evaluationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return evaluations.Input{}, false
	}
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(req.EvaluatedOn))
	if err != nil {
		date, err = apiutil.ParseTime(req.EvaluatedOn, "evaluated_on")
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "evaluated_on", Reason: "must be a valid date"})
		return evaluations.Input{}, false
	}
	return evaluations.Input{
		EvaluatedOn:    date,
		Notes:          req.Notes,
		CoachProfileID: coachID,
		Scores:         req.Scores,
	}, true
}

func serviceError(err error) error {
	switch {
	case errors.Is(err, evaluations.ErrPlayerNotFound):
		return apiutil.NotFound("Player not found")
	case errors.Is(err, evaluations.ErrEvaluationNotFound):
		return apiutil.NotFound("Evaluation not found")
	case errors.Is(err, evaluations.ErrDateMissing):
		return apiutil.FieldError{Field: "evaluated_on", Reason: "is required"}
	case errors.Is(err, evaluations.ErrNoScores),
		errors.Is(err, evaluations.ErrUnknownCriterion),
		errors.Is(err, evaluations.ErrDuplicateCriterion),
		errors.Is(err, evaluations.ErrScoreOutOfRange):
		return apiutil.FieldError{Field: "scores", Reason: err.Error()}
	default:
		return apiutil.Internal("Evaluation request failed", err)
	}
}

// canRead lets staff read evaluations for their teams and players read
// evaluations of the player record linked to their own profile.
func canRead(user *authz.AuthUser, player dbgen.Player) error {
	if authz.IsStaff(user) {
		if user.Role.IsAdmin() || user.OnTeam(player.TeamID) {
			return nil
		}
		return authz.ErrForbidden
	}
	if player.ProfileID.Valid && player.ProfileID.Int64 == user.ID {
		return nil
	}
	return authz.ErrForbidden
}

func loadPlayer(w http.ResponseWriter, r *http.Request) (dbgen.Player, bool) {
	playerID, ok := apiutil.PathID(w, r, "id")
	if !ok {
		return dbgen.Player{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	player, err := queries.GetPlayer(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.NotFound("Player not found"))
		return dbgen.Player{}, false
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load player", err))
		return dbgen.Player{}, false
	}
	return player, true
}

// loadEvaluationPlayer resolves the {id} evaluation to its player.
func loadEvaluationPlayer(w http.ResponseWriter, r *http.Request) (int64, dbgen.Player, bool) {
	id, ok := apiutil.PathID(w, r, "id")
	if !ok {
		return 0, dbgen.Player{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	player, err := service.PlayerOf(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return 0, dbgen.Player{}, false
	}
	return id, player, true
}

// GET /api/v1/evaluations/rubric
func HandleRubric(w http.ResponseWriter, r *http.Request) {
	if _, ok := apiutil.RequireRole(w, r, authz.Roles...); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	rubric, err := service.Rubric(ctx)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	writeJSON(w, r, http.StatusOK, rubric)
}

// GET /api/v1/evaluations
//
// Lists evaluations for every player record linked to the caller.
func HandleMyEvaluations(w http.ResponseWriter, r *http.Request) {
	user, ok := apiutil.RequireRole(w, r, authz.Roles...)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	players, err := service.LinkedPlayers(ctx, user.ID)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	sheets := []evaluations.Sheet{}
	for _, player := range players {
		list, err := service.ListForPlayer(ctx, player.ID)
		if err != nil {
			apiutil.WriteError(w, r, serviceError(err))
			return
		}
		sheets = append(sheets, list...)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"evaluations": sheets})
}

// GET /api/v1/players/{id}/evaluations
func HandleListEvaluations(w http.ResponseWriter, r *http.Request) {
	user, ok := apiutil.RequireRole(w, r, authz.Roles...)
	if !ok {
		return
	}
	player, ok := loadPlayer(w, r)
	if !ok {
		return
	}
	if err := canRead(user, player); err != nil {
		apiutil.WriteAuthzError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	sheets, err := service.ListForPlayer(ctx, player.ID)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	if sheets == nil {
		sheets = []evaluations.Sheet{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"evaluations": sheets})
}

// POST /api/v1/players/{id}/evaluations
func HandleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	if _, ok := apiutil.RequireRole(w, r, authz.Roles...); !ok {
		return
	}
	player, ok := loadPlayer(w, r)
	if !ok {
		return
	}
	user, ok := apiutil.RequireTeamStaff(w, r, player.TeamID)
	if !ok {
		return
	}
	in, ok := decodeEvaluation(w, r, user.ID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	sheet, err := service.Create(ctx, player.ID, in)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	writeJSON(w, r, http.StatusCreated, sheet)
}

// GET /api/v1/evaluations/{id}
func HandleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	user, ok := apiutil.RequireRole(w, r, authz.Roles...)
	if !ok {
		return
	}
	id, player, ok := loadEvaluationPlayer(w, r)
	if !ok {
		return
	}
	if err := canRead(user, player); err != nil {
		apiutil.WriteAuthzError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	sheet, err := service.Get(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	writeJSON(w, r, http.StatusOK, sheet)
}

// PUT /api/v1/evaluations/{id}
func HandleUpdateEvaluation(w http.ResponseWriter, r *http.Request) {
	if _, ok := apiutil.RequireRole(w, r, authz.Roles...); !ok {
		return
	}
	id, player, ok := loadEvaluationPlayer(w, r)
	if !ok {
		return
	}
	user, ok := apiutil.RequireTeamStaff(w, r, player.TeamID)
	if !ok {
		return
	}
	in, ok := decodeEvaluation(w, r, user.ID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	sheet, err := service.Update(ctx, id, in)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	writeJSON(w, r, http.StatusOK, sheet)
}

// DELETE /api/v1/evaluations/{id}
func HandleDeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	if _, ok := apiutil.RequireRole(w, r, authz.Roles...); !ok {
		return
	}
	id, player, ok := loadEvaluationPlayer(w, r)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamStaff(w, r, player.TeamID); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), evaluationsQueryTimeout)
	defer cancel()

	if err := service.Delete(ctx, id); err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("evaluation_id", id).Msg("Evaluation deleted")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
