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
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/phone"
)

const maxJerseyNumber = 99

type playerRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	JerseyNumber  *int64 `json:"jersey_number"`
	Position      string `json:"position"`
	BirthDate     string `json:"birth_date"`
	GuardianPhone string `json:"guardian_phone"`
	ProfileID     *int64 `json:"profile_id"`
	Active        *bool  `json:"active"`
}

type playerFields struct {
	FirstName     string
	LastName      string
	JerseyNumber  sql.NullInt64
	Position      string
	BirthDate     sql.NullTime
	GuardianPhone sql.NullString
	ProfileID     sql.NullInt64
	Active        bool
}

func (req playerRequest) fields() (playerFields, error) {
	f := playerFields{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Position:  strings.TrimSpace(req.Position),
		ProfileID: apiutil.ToNullInt64(req.ProfileID),
		Active:    req.Active == nil || *req.Active,
	}
	if f.FirstName == "" {
		return f, apiutil.FieldError{Field: "first_name", Reason: "is required"}
	}
	if f.LastName == "" {
		return f, apiutil.FieldError{Field: "last_name", Reason: "is required"}
	}
	if req.JerseyNumber != nil {
		if *req.JerseyNumber < 0 || *req.JerseyNumber > maxJerseyNumber {
			return f, apiutil.FieldError{Field: "jersey_number", Reason: "must be between 0 and 99"}
		}
		f.JerseyNumber = sql.NullInt64{Int64: *req.JerseyNumber, Valid: true}
	}
	if raw := strings.TrimSpace(req.BirthDate); raw != "" {
		born, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return f, apiutil.FieldError{Field: "birth_date", Reason: "must be YYYY-MM-DD"}
		}
		f.BirthDate = sql.NullTime{Time: born, Valid: true}
	}
	if raw := strings.TrimSpace(req.GuardianPhone); raw != "" {
		normalized := phone.Normalize(raw)
		if normalized == "" {
			return f, apiutil.FieldError{Field: "guardian_phone", Reason: "is not a valid phone number"}
		}
		f.GuardianPhone = sql.NullString{String: normalized, Valid: true}
	}
	if f.ProfileID.Valid && f.ProfileID.Int64 <= 0 {
		return f, apiutil.FieldError{Field: "profile_id", Reason: "must be a positive integer"}
	}
	return f, nil
}

type playerView struct {
	ID            int64     `json:"id"`
	TeamID        int64     `json:"team_id"`
	ProfileID     *int64    `json:"profile_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	JerseyNumber  *int64    `json:"jersey_number"`
	Position      string    `json:"position"`
	BirthDate     string    `json:"birth_date,omitempty"`
	GuardianPhone string    `json:"guardian_phone,omitempty"`
	Active        bool      `json:"active"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func viewOf(p dbgen.Player) playerView {
	view := playerView{
		ID:            p.ID,
		TeamID:        p.TeamID,
		ProfileID:     apiutil.FromNullInt64(p.ProfileID),
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		JerseyNumber:  apiutil.FromNullInt64(p.JerseyNumber),
		Position:      p.Position,
		GuardianPhone: p.GuardianPhone.String,
		Active:        p.Active,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.BirthDate.Valid {
		view.BirthDate = p.BirthDate.Time.Format(time.DateOnly)
	}
	return view
}

func decodePlayer(w http.ResponseWriter, r *http.Request) (playerFields, bool) {
	var req playerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return playerFields{}, false
	}
	fields, err := req.fields()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return playerFields{}, false
	}
	return fields, true
}

func checkProfile(ctx context.Context, w http.ResponseWriter, r *http.Request, id sql.NullInt64) bool {
	if !id.Valid {
		return true
	}
	_, err := queries.GetProfileByID(ctx, id.Int64)
	if errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "profile_id", Reason: "does not exist"})
		return false
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load profile", err))
		return false
	}
	return true
}

// loadPlayer fetches the player and writes 404 when missing.
func loadPlayer(ctx context.Context, w http.ResponseWriter, r *http.Request) (dbgen.Player, bool) {
	playerID, ok := apiutil.PathID(w, r, "id")
	if !ok {
		return dbgen.Player{}, false
	}
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

// GET /api/v1/teams/{team_id}/players
func HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamAccess(w, r, teamID); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	players, err := queries.ListPlayersByTeam(ctx, teamID)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to list players", err))
		return
	}
	views := make([]playerView, 0, len(players))
	for _, p := range players {
		views = append(views, viewOf(p))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"players": views})
}

// POST /api/v1/teams/{team_id}/players
func HandleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamStaff(w, r, teamID); !ok {
		return
	}
	fields, ok := decodePlayer(w, r)
	if !ok {
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
	if !checkProfile(ctx, w, r, fields.ProfileID) {
		return
	}

	player, err := queries.CreatePlayer(ctx, dbgen.CreatePlayerParams{
		TeamID:        teamID,
		ProfileID:     fields.ProfileID,
		FirstName:     fields.FirstName,
		LastName:      fields.LastName,
		JerseyNumber:  fields.JerseyNumber,
		Position:      fields.Position,
		BirthDate:     fields.BirthDate,
		GuardianPhone: fields.GuardianPhone,
		Active:        fields.Active,
	})
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to create player", err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("player_id", player.ID).Int64("team_id", teamID).Msg("Player created")
	writeJSON(w, r, http.StatusCreated, viewOf(player))
}

// GET /api/v1/players/{id}
func HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	player, ok := loadPlayer(ctx, w, r)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamAccess(w, r, player.TeamID); !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, viewOf(player))
}

// PUT /api/v1/players/{id}
func HandleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	player, ok := loadPlayer(ctx, w, r)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamStaff(w, r, player.TeamID); !ok {
		return
	}
	fields, ok := decodePlayer(w, r)
	if !ok {
		return
	}
	if !checkProfile(ctx, w, r, fields.ProfileID) {
		return
	}

	updated, err := queries.UpdatePlayer(ctx, dbgen.UpdatePlayerParams{
		ProfileID:     fields.ProfileID,
		FirstName:     fields.FirstName,
		LastName:      fields.LastName,
		JerseyNumber:  fields.JerseyNumber,
		Position:      fields.Position,
		BirthDate:     fields.BirthDate,
		GuardianPhone: fields.GuardianPhone,
		Active:        fields.Active,
		ID:            player.ID,
	})
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to update player", err))
		return
	}
	writeJSON(w, r, http.StatusOK, viewOf(updated))
}

// DELETE /api/v1/players/{id}
func HandleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), teamsQueryTimeout)
	defer cancel()

	player, ok := loadPlayer(ctx, w, r)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamStaff(w, r, player.TeamID); !ok {
		return
	}

	if _, err := queries.DeletePlayer(ctx, player.ID); err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to delete player", err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("player_id", player.ID).Msg("Player deleted")
	w.WriteHeader(http.StatusNoContent)
}
