package dbgen

import (
	"context"
	"time"
)

const trainingColumns = `id, team_id, session_date, location, notes, created_at`

func scanTraining(row rowScanner) (Training, error) {
	var i Training
	err := row.Scan(
		&i.ID,
		&i.TeamID,
		&i.SessionDate,
		&i.Location,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}

const createTraining = `-- name: CreateTraining :one
INSERT INTO trainings (team_id, session_date, location, notes)
VALUES (?, ?, ?, ?)
RETURNING ` + trainingColumns

type CreateTrainingParams struct {
	TeamID      int64
	SessionDate time.Time
	Location    string
	Notes       string
}

func (q *Queries) CreateTraining(ctx context.Context, arg CreateTrainingParams) (Training, error) {
	row := q.db.QueryRowContext(ctx, createTraining, arg.TeamID, arg.SessionDate, arg.Location, arg.Notes)
	return scanTraining(row)
}

const getTraining = `-- name: GetTraining :one
SELECT ` + trainingColumns + ` FROM trainings WHERE id = ?`

func (q *Queries) GetTraining(ctx context.Context, id int64) (Training, error) {
	row := q.db.QueryRowContext(ctx, getTraining, id)
	return scanTraining(row)
}

const listTrainingsByTeam = `-- name: ListTrainingsByTeam :many
SELECT ` + trainingColumns + ` FROM trainings
WHERE team_id = ?
  AND session_date >= ?
  AND session_date <= ?
ORDER BY session_date DESC, id DESC`

type ListTrainingsByTeamParams struct {
	TeamID int64
	From   time.Time
	To     time.Time
}

func (q *Queries) ListTrainingsByTeam(ctx context.Context, arg ListTrainingsByTeamParams) ([]Training, error) {
	rows, err := q.db.QueryContext(ctx, listTrainingsByTeam, arg.TeamID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTraining)
}

const updateTraining = `-- name: UpdateTraining :one
UPDATE trainings SET session_date = ?, location = ?, notes = ?
WHERE id = ?
RETURNING ` + trainingColumns

type UpdateTrainingParams struct {
	SessionDate time.Time
	Location    string
	Notes       string
	ID          int64
}

func (q *Queries) UpdateTraining(ctx context.Context, arg UpdateTrainingParams) (Training, error) {
	row := q.db.QueryRowContext(ctx, updateTraining, arg.SessionDate, arg.Location, arg.Notes, arg.ID)
	return scanTraining(row)
}

const deleteTraining = `-- name: DeleteTraining :execrows
DELETE FROM trainings WHERE id = ?`

func (q *Queries) DeleteTraining(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTraining, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAttendanceForTraining = `-- name: DeleteAttendanceForTraining :exec
DELETE FROM training_attendance WHERE training_id = ?`

func (q *Queries) DeleteAttendanceForTraining(ctx context.Context, trainingID int64) error {
	_, err := q.db.ExecContext(ctx, deleteAttendanceForTraining, trainingID)
	return err
}

const insertAttendance = `-- name: InsertAttendance :exec
INSERT INTO training_attendance (training_id, player_id, status, note) VALUES (?, ?, ?, ?)`

type InsertAttendanceParams struct {
	TrainingID int64
	PlayerID   int64
	Status     string
	Note       string
}

func (q *Queries) InsertAttendance(ctx context.Context, arg InsertAttendanceParams) error {
	_, err := q.db.ExecContext(ctx, insertAttendance, arg.TrainingID, arg.PlayerID, arg.Status, arg.Note)
	return err
}

func scanTrainingAttendance(row rowScanner) (TrainingAttendance, error) {
	var i TrainingAttendance
	err := row.Scan(&i.TrainingID, &i.PlayerID, &i.Status, &i.Note)
	return i, err
}

const listAttendance = `-- name: ListAttendance :many
SELECT training_id, player_id, status, note FROM training_attendance
WHERE training_id = ?
ORDER BY player_id`

func (q *Queries) ListAttendance(ctx context.Context, trainingID int64) ([]TrainingAttendance, error) {
	rows, err := q.db.QueryContext(ctx, listAttendance, trainingID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTrainingAttendance)
}

const listAttendanceByTeam = `-- name: ListAttendanceByTeam :many
SELECT a.training_id, a.player_id, a.status, a.note
FROM training_attendance a
JOIN trainings t ON t.id = a.training_id
WHERE t.team_id = ?
  AND t.session_date >= ?
  AND t.session_date <= ?
ORDER BY a.player_id, t.session_date`

type ListAttendanceByTeamParams struct {
	TeamID int64
	From   time.Time
	To     time.Time
}

func (q *Queries) ListAttendanceByTeam(ctx context.Context, arg ListAttendanceByTeamParams) ([]TrainingAttendance, error) {
	rows, err := q.db.QueryContext(ctx, listAttendanceByTeam, arg.TeamID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTrainingAttendance)
}
