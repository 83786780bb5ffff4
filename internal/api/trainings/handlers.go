// internal/api/trainings/handlers.go
package trainings

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/api/apiutil"
	"github.com/codr1/Sideline/internal/api/authz"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/trainings"
)

const trainingsQueryTimeout = 5 * time.Second

var service *trainings.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *trainings.Service) {
	service = s
}

type trainingRequest struct {
	SessionDate string `json:"session_date"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

func decodeTraining(w http.ResponseWriter, r *http.Request) (trainings.Input, bool) {
	var req trainingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return trainings.Input{}, false
	}
	date, err := apiutil.ParseTime(req.SessionDate, "session_date")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "session_date", Reason: "must be a valid date"})
		return trainings.Input{}, false
	}
	return trainings.Input{SessionDate: date, Location: req.Location, Notes: req.Notes}, true
}

func serviceError(err error) error {
	switch {
	case errors.Is(err, trainings.ErrTeamNotFound):
		return apiutil.NotFound("Team not found")
	case errors.Is(err, trainings.ErrTrainingNotFound):
		return apiutil.NotFound("Training not found")
	case errors.Is(err, trainings.ErrSessionDateMissing):
		return apiutil.FieldError{Field: "session_date", Reason: "is required"}
	case errors.Is(err, trainings.ErrInvalidStatus),
		errors.Is(err, trainings.ErrDuplicatePlayer),
		errors.Is(err, trainings.ErrPlayerNotOnTeam):
		return apiutil.BadRequest(err.Error())
	default:
		return apiutil.Internal("Training request failed", err)
	}
}

// loadTraining resolves {id} and checks team access, requiring staff when write is set.
func loadTraining(w http.ResponseWriter, r *http.Request, write bool) (dbgen.Training, bool) {
	id, ok := apiutil.PathID(w, r, "id")
	if !ok {
		return dbgen.Training{}, false
	}
	if _, ok := apiutil.RequireRole(w, r, authz.Roles...); !ok {
		return dbgen.Training{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), trainingsQueryTimeout)
	defer cancel()

	training, err := service.Get(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return dbgen.Training{}, false
	}
	if write {
		_, ok = apiutil.RequireTeamStaff(w, r, training.TeamID)
	} else {
		_, ok = apiutil.RequireTeamAccess(w, r, training.TeamID)
	}
	return training, ok
}

// GET /api/v1/teams/{team_id}/trainings
func HandleListTrainings(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), trainingsQueryTimeout)
	defer cancel()

	list, err := service.List(ctx, teamID, from, to)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	if list == nil {
		list = []dbgen.Training{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"trainings": list})
}

// POST /api/v1/teams/{team_id}/trainings
func HandleCreateTraining(w http.ResponseWriter, r *http.Request) {
	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamStaff(w, r, teamID); !ok {
		return
	}
	in, ok := decodeTraining(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), trainingsQueryTimeout)
	defer cancel()

	training, err := service.Create(ctx, teamID, in)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	writeJSON(w, r, http.StatusCreated, training)
}

// GET /api/v1/trainings/{id}
func HandleGetTraining(w http.ResponseWriter, r *http.Request) {
	training, ok := loadTraining(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, training)
}

// PUT /api/v1/trainings/{id}
func HandleUpdateTraining(w http.ResponseWriter, r *http.Request) {
	training, ok := loadTraining(w, r, true)
	if !ok {
		return
	}
	in, ok := decodeTraining(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), trainingsQueryTimeout)
	defer cancel()

	updated, err := service.Update(ctx, training.ID, in)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

// DELETE /api/v1/trainings/{id}
func HandleDeleteTraining(w http.ResponseWriter, r *http.Request) {
	training, ok := loadTraining(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), trainingsQueryTimeout)
	defer cancel()

	if err := service.Delete(ctx, training.ID); err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("training_id", training.ID).Msg("Training deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/trainings/{id}/attendance
func HandleGetAttendance(w http.ResponseWriter, r *http.Request) {
	training, ok := loadTraining(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), trainingsQueryTimeout)
	defer cancel()

	records, err := service.Attendance(ctx, training.ID)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	writeAttendance(w, r, records)
}

// PUT /api/v1/trainings/{id}/attendance
func HandleReplaceAttendance(w http.ResponseWriter, r *http.Request) {
	training, ok := loadTraining(w, r, true)
	if !ok {
		return
	}
	var req struct {
		Attendance []trainings.AttendanceInput `json:"attendance"`
	}
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), trainingsQueryTimeout)
	defer cancel()

	records, err := service.ReplaceAttendance(ctx, training.ID, req.Attendance)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	log.Ctx(r.Context()).Info().Int64("training_id", training.ID).Int("records", len(records)).Msg("Attendance replaced")
	writeAttendance(w, r, records)
}

// GET /api/v1/teams/{team_id}/attendance
func HandleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), trainingsQueryTimeout)
	defer cancel()

	summary, err := service.TeamSummary(ctx, teamID, from, to)
	if err != nil {
		apiutil.WriteError(w, r, serviceError(err))
		return
	}
	if summary == nil {
		summary = []trainings.PlayerAttendance{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"players": summary})
}

func writeAttendance(w http.ResponseWriter, r *http.Request, records []dbgen.TrainingAttendance) {
	if records == nil {
		records = []dbgen.TrainingAttendance{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"attendance": records})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
