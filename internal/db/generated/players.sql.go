package dbgen

import (
	"context"
	"database/sql"
)

const playerColumns = `id, team_id, profile_id, first_name, last_name, jersey_number, position, birth_date, guardian_phone, active, created_at, updated_at`

func scanPlayer(row rowScanner) (Player, error) {
	var i Player
	err := row.Scan(
		&i.ID,
		&i.TeamID,
		&i.ProfileID,
		&i.FirstName,
		&i.LastName,
		&i.JerseyNumber,
		&i.Position,
		&i.BirthDate,
		&i.GuardianPhone,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createPlayer = `-- name: CreatePlayer :one
INSERT INTO players (team_id, profile_id, first_name, last_name, jersey_number, position, birth_date, guardian_phone, active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + playerColumns

type CreatePlayerParams struct {
	TeamID        int64
	ProfileID     sql.NullInt64
	FirstName     string
	LastName      string
	JerseyNumber  sql.NullInt64
	Position      string
	BirthDate     sql.NullTime
	GuardianPhone sql.NullString
	Active        bool
}

func (q *Queries) CreatePlayer(ctx context.Context, arg CreatePlayerParams) (Player, error) {
	row := q.db.QueryRowContext(ctx, createPlayer,
		arg.TeamID,
		arg.ProfileID,
		arg.FirstName,
		arg.LastName,
		arg.JerseyNumber,
		arg.Position,
		arg.BirthDate,
		arg.GuardianPhone,
		arg.Active,
	)
	return scanPlayer(row)
}

const getPlayer = `-- name: GetPlayer :one
SELECT ` + playerColumns + ` FROM players WHERE id = ?`

func (q *Queries) GetPlayer(ctx context.Context, id int64) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	return scanPlayer(row)
}

const listPlayersByTeam = `-- name: ListPlayersByTeam :many
SELECT ` + playerColumns + ` FROM players
WHERE team_id = ?
ORDER BY last_name, first_name`

func (q *Queries) ListPlayersByTeam(ctx context.Context, teamID int64) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listPlayersByTeam, teamID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanPlayer)
}

const listPlayersByProfile = `-- name: ListPlayersByProfile :many
SELECT ` + playerColumns + ` FROM players
WHERE profile_id = ?
ORDER BY id`

func (q *Queries) ListPlayersByProfile(ctx context.Context, profileID sql.NullInt64) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listPlayersByProfile, profileID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanPlayer)
}

const updatePlayer = `-- name: UpdatePlayer :one
UPDATE players
SET profile_id = ?, first_name = ?, last_name = ?, jersey_number = ?, position = ?,
    birth_date = ?, guardian_phone = ?, active = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + playerColumns

type UpdatePlayerParams struct {
	ProfileID     sql.NullInt64
	FirstName     string
	LastName      string
	JerseyNumber  sql.NullInt64
	Position      string
	BirthDate     sql.NullTime
	GuardianPhone sql.NullString
	Active        bool
	ID            int64
}

func (q *Queries) UpdatePlayer(ctx context.Context, arg UpdatePlayerParams) (Player, error) {
	row := q.db.QueryRowContext(ctx, updatePlayer,
		arg.ProfileID,
		arg.FirstName,
		arg.LastName,
		arg.JerseyNumber,
		arg.Position,
		arg.BirthDate,
		arg.GuardianPhone,
		arg.Active,
		arg.ID,
	)
	return scanPlayer(row)
}

const deletePlayer = `-- name: DeletePlayer :execrows
DELETE FROM players WHERE id = ?`

func (q *Queries) DeletePlayer(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePlayer, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
