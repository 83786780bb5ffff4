// internal/api/teams/handlers.go
package teams

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
)

const teamsQueryTimeout = 5 * time.Second

var queries *dbgen.Queries

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries) {
	queries = q
}

type teamRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Season   string `json:"season"`
}

func (req *teamRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Season = strings.TrimSpace(req.Season)
	if req.Name == "" {
		return apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	return nil
}

// GET /api/v1/teams
func HandleListTeams(w http.ResponseWriter, r *http.Request) {
	user, ok := apiutil.RequireRole(w, r, authz.Roles...)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	var (
		teams []dbgen.Team
		err   error
	)
	if user.Role.IsAdmin() {
		teams, err = queries.ListTeams(ctx)
	} else {
		teams, err = queries.ListTeamsForProfile(ctx, user.ID)
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to list teams", err))
		return
	}
	if teams == nil {
		teams = []dbgen.Team{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"teams": teams})
}

// POST /api/v1/teams
func HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	if _, ok := apiutil.RequireRole(w, r, authz.RoleSuperAdmin, authz.RoleAdmin); !ok {
		return
	}

	var req teamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	team, err := queries.CreateTeam(ctx, dbgen.CreateTeamParams{Name: req.Name, Category: req.Category, Season: req.Season})
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to create team", err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("team_id", team.ID).Msg("Team created")
	writeJSON(w, r, http.StatusCreated, team)
}

// GET /api/v1/teams/{team_id}
func HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamAccess(w, r, teamID); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	team, err := queries.GetTeam(ctx, teamID)
	if errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.NotFound("Team not found"))
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load team", err))
		return
	}
	writeJSON(w, r, http.StatusOK, team)
}

// PUT /api/v1/teams/{team_id}
func HandleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireRole(w, r, authz.RoleSuperAdmin, authz.RoleAdmin); !ok {
		return
	}

	var req teamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	team, err := queries.UpdateTeam(ctx, dbgen.UpdateTeamParams{Name: req.Name, Category: req.Category, Season: req.Season, ID: teamID})
	if errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.NotFound("Team not found"))
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to update team", err))
		return
	}
	writeJSON(w, r, http.StatusOK, team)
}

// DELETE /api/v1/teams/{team_id}
func HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireRole(w, r, authz.RoleSuperAdmin, authz.RoleAdmin); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	rows, err := queries.DeleteTeam(ctx, teamID)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to delete team", err))
		return
	}
	if rows == 0 {
		apiutil.WriteError(w, r, apiutil.NotFound("Team not found"))
		return
	}
	log.Ctx(r.Context()).Info().Int64("team_id", teamID).Msg("Team deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/teams/{team_id}/members
func HandleListMembers(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamAccess(w, r, teamID); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	members, err := queries.ListTeamMembers(ctx, teamID)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to list members", err))
		return
	}
	if members == nil {
		members = []dbgen.ListTeamMembersRow{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"members": members})
}

// POST /api/v1/teams/{team_id}/members
func HandleAddMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireRole(w, r, authz.RoleSuperAdmin, authz.RoleAdmin); !ok {
		return
	}

	var req struct {
		ProfileID int64 `json:"profile_id"`
	}
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}
	if req.ProfileID <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "profile_id", Reason: "must be a positive integer"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	if exists, err := queries.TeamExists(ctx, teamID); err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load team", err))
		return
	} else if !exists {
		apiutil.WriteError(w, r, apiutil.NotFound("Team not found"))
		return
	}
	if _, err := queries.GetProfileByID(ctx, req.ProfileID); errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "profile_id", Reason: "does not exist"})
		return
	} else if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load profile", err))
		return
	}

	if err := queries.AddTeamMembership(ctx, dbgen.AddTeamMembershipParams{TeamID: teamID, ProfileID: req.ProfileID}); err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to add member", err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("team_id", teamID).Int64("profile_id", req.ProfileID).Msg("Team member added")
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/teams/{team_id}/members/{profile_id}
func HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	profileID, ok := apiutil.PathID(w, r, "profile_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireRole(w, r, authz.RoleSuperAdmin, authz.RoleAdmin); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	rows, err := queries.RemoveTeamMembership(ctx, dbgen.RemoveTeamMembershipParams{TeamID: teamID, ProfileID: profileID})
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to remove member", err))
		return
	}
	if rows == 0 {
		apiutil.WriteError(w, r, apiutil.NotFound("Membership not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
