// Package trainings schedules training sessions and tracks attendance.
package trainings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
	StatusLate    = "late"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTrainingNotFound   = errors.New("training not found")
	ErrInvalidStatus      = errors.New("status must be present, absent, excused or late")
	ErrDuplicatePlayer    = errors.New("player listed more than once")
	ErrPlayerNotOnTeam    = errors.New("player does not belong to the training team")
	ErrSessionDateMissing = errors.New("session date is required")
)

type Input struct {
	SessionDate time.Time
	Location    string
	Notes       string
}

type AttendanceInput struct {
	PlayerID int64  `json:"player_id"`
	Status   string `json:"status"`
	Note     string `json:"note"`
}

type Service struct {
	db *db.DB
}

func NewService(database *db.DB) (*Service, error) {
	if database == nil {
		return nil, errors.New("trainings service requires a database")
	}
	return &Service{db: database}, nil
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusExcused, StatusLate:
		return true
	}
	return false
}

func (s *Service) Create(ctx context.Context, teamID int64, in Input) (dbgen.Training, error) {
	if in.SessionDate.IsZero() {
		return dbgen.Training{}, ErrSessionDateMissing
	}
	exists, err := s.db.Queries.TeamExists(ctx, teamID)
	if err != nil {
		return dbgen.Training{}, fmt.Errorf("check team: %w", err)
	}
	if !exists {
		return dbgen.Training{}, ErrTeamNotFound
	}

	training, err := s.db.Queries.CreateTraining(ctx, dbgen.CreateTrainingParams{
		TeamID:      teamID,
		SessionDate: in.SessionDate.UTC(),
		Location:    strings.TrimSpace(in.Location),
		Notes:       strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return dbgen.Training{}, fmt.Errorf("create training: %w", err)
	}
	log.Ctx(ctx).Info().Int64("training_id", training.ID).Int64("team_id", teamID).Msg("Training created")
	return training, nil
}

func (s *Service) Get(ctx context.Context, id int64) (dbgen.Training, error) {
	training, err := s.db.Queries.GetTraining(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return dbgen.Training{}, ErrTrainingNotFound
	}
	if err != nil {
		return dbgen.Training{}, fmt.Errorf("get training: %w", err)
	}
	return training, nil
}

func (s *Service) List(ctx context.Context, teamID int64, from, to time.Time) ([]dbgen.Training, error) {
	trainings, err := s.db.Queries.ListTrainingsByTeam(ctx, dbgen.ListTrainingsByTeamParams{
		TeamID: teamID,
		From:   from.UTC(),
		To:     to.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("list trainings: %w", err)
	}
	return trainings, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (dbgen.Training, error) {
	if in.SessionDate.IsZero() {
		return dbgen.Training{}, ErrSessionDateMissing
	}
	training, err := s.db.Queries.UpdateTraining(ctx, dbgen.UpdateTrainingParams{
		SessionDate: in.SessionDate.UTC(),
		Location:    strings.TrimSpace(in.Location),
		Notes:       strings.TrimSpace(in.Notes),
		ID:          id,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return dbgen.Training{}, ErrTrainingNotFound
	}
	if err != nil {
		return dbgen.Training{}, fmt.Errorf("update training: %w", err)
	}
	return training, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	rows, err := s.db.Queries.DeleteTraining(ctx, id)
	if err != nil {
		return fmt.Errorf("delete training: %w", err)
	}
	if rows == 0 {
		return ErrTrainingNotFound
	}
	return nil
}

func (s *Service) Attendance(ctx context.Context, trainingID int64) ([]dbgen.TrainingAttendance, error) {
	if _, err := s.Get(ctx, trainingID); err != nil {
		return nil, err
	}
	records, err := s.db.Queries.ListAttendance(ctx, trainingID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// ReplaceAttendance swaps the whole attendance list for the session in one transaction.
func (s *Service) ReplaceAttendance(ctx context.Context, trainingID int64, entries []AttendanceInput) ([]dbgen.TrainingAttendance, error) {
	seen := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		if !ValidStatus(entry.Status) {
			return nil, fmt.Errorf("player %d: %w", entry.PlayerID, ErrInvalidStatus)
		}
		if _, dup := seen[entry.PlayerID]; dup {
			return nil, fmt.Errorf("player %d: %w", entry.PlayerID, ErrDuplicatePlayer)
		}
		seen[entry.PlayerID] = struct{}{}
	}

	var records []dbgen.TrainingAttendance
	err := s.db.RetryTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		training, err := q.GetTraining(ctx, trainingID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTrainingNotFound
		}
		if err != nil {
			return fmt.Errorf("get training: %w", err)
		}

		for _, entry := range entries {
			player, err := q.GetPlayer(ctx, entry.PlayerID)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && player.TeamID != training.TeamID) {
				return fmt.Errorf("player %d: %w", entry.PlayerID, ErrPlayerNotOnTeam)
			}
			if err != nil {
				return fmt.Errorf("get player: %w", err)
			}
		}

		if err := q.DeleteAttendanceForTraining(ctx, trainingID); err != nil {
			return fmt.Errorf("clear attendance: %w", err)
		}
		for _, entry := range entries {
			if err := q.InsertAttendance(ctx, dbgen.InsertAttendanceParams{
				TrainingID: trainingID,
				PlayerID:   entry.PlayerID,
				Status:     entry.Status,
				Note:       strings.TrimSpace(entry.Note),
			}); err != nil {
				return fmt.Errorf("insert attendance: %w", err)
			}
		}

		records, err = q.ListAttendance(ctx, trainingID)
		if err != nil {
			return fmt.Errorf("list attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Int64("training_id", trainingID).Int("records", len(records)).Msg("Attendance replaced")
	return records, nil
}

type PlayerAttendance struct {
	PlayerID   int64   `json:"player_id"`
	Recorded   int     `json:"recorded"`
	Present    int     `json:"present"`
	Late       int     `json:"late"`
	Absent     int     `json:"absent"`
	Excused    int     `json:"excused"`
	Attended   int     `json:"attended"`
	Rate       float64 `json:"rate"`
	Percentage float64 `json:"percentage"`
}

// Summarize counts attendance per player. Late counts as attended and
// excused sessions are left out of the rate.
func Summarize(records []dbgen.TrainingAttendance) []PlayerAttendance {
	byPlayer := make(map[int64]*PlayerAttendance)
	for _, record := range records {
		summary, ok := byPlayer[record.PlayerID]
		if !ok {
			summary = &PlayerAttendance{PlayerID: record.PlayerID}
			byPlayer[record.PlayerID] = summary
		}
		summary.Recorded++
		switch record.Status {
		case StatusPresent:
			summary.Present++
		case StatusLate:
			summary.Late++
		case StatusAbsent:
			summary.Absent++
		case StatusExcused:
			summary.Excused++
		}
	}

	out := make([]PlayerAttendance, 0, len(byPlayer))
	for _, summary := range byPlayer {
		summary.Attended = summary.Present + summary.Late
		if denominator := summary.Recorded - summary.Excused; denominator > 0 {
			summary.Rate = float64(summary.Attended) / float64(denominator)
			summary.Percentage = math.Round(summary.Rate*1000) / 10
		}
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

func (s *Service) TeamSummary(ctx context.Context, teamID int64, from, to time.Time) ([]PlayerAttendance, error) {
	records, err := s.db.Queries.ListAttendanceByTeam(ctx, dbgen.ListAttendanceByTeamParams{
		TeamID: teamID,
		From:   from.UTC(),
		To:     to.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("list team attendance: %w", err)
	}
	return Summarize(records), nil
}
