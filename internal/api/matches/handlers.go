// internal/api/matches/handlers.go
package matches

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
	"github.com/codr1/Sideline/internal/matches"
	"github.com/codr1/Sideline/internal/stats"
)

const matchesQueryTimeout = 5 * time.Second

var (
	queries   *dbgen.Queries
	engine    *matches.Engine
	collector *stats.Collector
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries, e *matches.Engine, c *stats.Collector) {
	queries = q
	engine = e
	collector = c
}

type matchRequest struct {
	Opponent  string `json:"opponent"`
	MatchDate string `json:"match_date"`
	Location  string `json:"location"`
	IsHome    *bool  `json:"is_home"`
	Notes     string `json:"notes"`
}

type matchFields struct {
	opponent string
	date     time.Time
	location string
	isHome   bool
	notes    string
}

func (req matchRequest) fields() (matchFields, error) {
	f := matchFields{
		opponent: strings.TrimSpace(req.Opponent),
		location: strings.TrimSpace(req.Location),
		notes:    strings.TrimSpace(req.Notes),
		isHome:   true,
	}
	if f.opponent == "" {
		return f, apiutil.FieldError{Field: "opponent", Reason: "is required"}
	}
	date, err := apiutil.ParseTime(req.MatchDate, "match_date")
	if err != nil {
		return f, apiutil.FieldError{Field: "match_date", Reason: "must be a valid date"}
	}
	f.date = date
	if req.IsHome != nil {
		f.isHome = *req.IsHome
	}
	return f, nil
}

func decodeMatch(w http.ResponseWriter, r *http.Request) (matchFields, bool) {
	var req matchRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return matchFields{}, false
	}
	f, err := req.fields()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return matchFields{}, false
	}
	return f, true
}

// loadMatch resolves the {id} path value and checks the caller against the
// match's team. Staff access is required when write is set.
func loadMatch(w http.ResponseWriter, r *http.Request, write bool) (dbgen.Match, *authz.AuthUser, bool) {
	matchID, ok := apiutil.PathID(w, r, "id")
	if !ok {
		return dbgen.Match{}, nil, false
	}
	if authz.UserFromContext(r.Context()) == nil {
		apiutil.WriteAuthzError(w, r, authz.ErrUnauthenticated)
		return dbgen.Match{}, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	match, err := queries.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.NotFound("Match not found"))
		return dbgen.Match{}, nil, false
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load match", err))
		return dbgen.Match{}, nil, false
	}

	var user *authz.AuthUser
	if write {
		user, ok = apiutil.RequireTeamStaff(w, r, match.TeamID)
	} else {
		user, ok = apiutil.RequireTeamAccess(w, r, match.TeamID)
	}
	if !ok {
		return dbgen.Match{}, nil, false
	}
	return match, user, true
}

// GET /api/v1/teams/{team_id}/matches
func HandleListMatches(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamAccess(w, r, teamID); !ok {
		return
	}
	from, to, err := apiutil.DateRange(r)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	list, err := queries.ListMatchesByTeam(ctx, dbgen.ListMatchesByTeamParams{TeamID: teamID, From: from, To: to})
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to list matches", err))
		return
	}
	if list == nil {
		list = []dbgen.Match{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"matches": list})
}

// POST /api/v1/teams/{team_id}/matches
func HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	user, ok := apiutil.RequireTeamStaff(w, r, teamID)
	if !ok {
		return
	}
	f, ok := decodeMatch(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	if exists, err := queries.TeamExists(ctx, teamID); err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load team", err))
		return
	} else if !exists {
		apiutil.WriteError(w, r, apiutil.NotFound("Team not found"))
		return
	}

	match, err := queries.CreateMatch(ctx, dbgen.CreateMatchParams{
		TeamID:    teamID,
		Opponent:  f.opponent,
		MatchDate: f.date,
		Location:  f.location,
		IsHome:    f.isHome,
		Notes:     f.notes,
		CreatedBy: sql.NullInt64{Int64: user.ID, Valid: user.ID > 0},
	})
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to create match", err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("team_id", teamID).Int64("match_id", match.ID).Msg("Match created")
	writeJSON(w, r, http.StatusCreated, match)
}

// GET /api/v1/matches/{id}
func HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, match)
}

// PUT /api/v1/matches/{id}
func HandleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}
	f, ok := decodeMatch(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	updated, err := queries.UpdateMatch(ctx, dbgen.UpdateMatchParams{
		Opponent:  f.opponent,
		MatchDate: f.date,
		Location:  f.location,
		IsHome:    f.isHome,
		Notes:     f.notes,
		ID:        match.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.NotFound("Match not found"))
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to update match", err))
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

// DELETE /api/v1/matches/{id}
func HandleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	match, _, ok := loadMatch(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	rows, err := queries.DeleteMatch(ctx, match.ID)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to delete match", err))
		return
	}
	if rows == 0 {
		apiutil.WriteError(w, r, apiutil.NotFound("Match not found"))
		return
	}
	log.Ctx(r.Context()).Info().Int64("match_id", match.ID).Msg("Match deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/teams/{team_id}/stats
func HandleTeamStats(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamAccess(w, r, teamID); !ok {
		return
	}
	from, to, err := apiutil.DateRange(r)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	report, err := collector.TeamSummary(ctx, teamID, from, to)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to build team stats", err))
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// GET /api/v1/players/{id}/stats
func HandlePlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID, ok := apiutil.PathID(w, r, "id")
	if !ok {
		return
	}
	if authz.UserFromContext(r.Context()) == nil {
		apiutil.WriteAuthzError(w, r, authz.ErrUnauthenticated)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	player, err := queries.GetPlayer(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.NotFound("Player not found"))
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load player", err))
		return
	}
	if _, ok := apiutil.RequireTeamAccess(w, r, player.TeamID); !ok {
		return
	}

	report, err := collector.PlayerSummary(ctx, playerID)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to build player stats", err))
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// engineError maps engine sentinels to HTTP errors.
func engineError(err error) error {
	switch {
	case errors.Is(err, matches.ErrMatchNotFound):
		return apiutil.NotFound("Match not found")
	case errors.Is(err, matches.ErrSubstitutionNotFound):
		return apiutil.NotFound("Substitution not found")
	case errors.Is(err, matches.ErrGoalNotFound):
		return apiutil.NotFound("Goal not found")
	case errors.Is(err, matches.ErrAlreadyCalledUp),
		errors.Is(err, matches.ErrCallUpInUse),
		errors.Is(err, matches.ErrCallUpHasGoals),
		errors.Is(err, matches.ErrPeriodLocked),
		errors.Is(err, matches.ErrOutNotOnField),
		errors.Is(err, matches.ErrOutNotFullPeriod),
		errors.Is(err, matches.ErrInAlreadyOnField),
		errors.Is(err, matches.ErrAlreadySubstituted):
		return apiutil.Conflict(err.Error(), err)
	case errors.Is(err, matches.ErrPlayerNotFound),
		errors.Is(err, matches.ErrPlayerNotOnTeam),
		errors.Is(err, matches.ErrNotCalledUp),
		errors.Is(err, matches.ErrInvalidPeriod),
		errors.Is(err, matches.ErrInvalidFraction),
		errors.Is(err, matches.ErrSamePlayer),
		errors.Is(err, matches.ErrInvalidScore),
		errors.Is(err, matches.ErrInvalidGoal):
		return apiutil.BadRequest(err.Error())
	default:
		return apiutil.Internal("Match update failed", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
