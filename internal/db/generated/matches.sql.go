package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const matchColumns = `id, team_id, opponent, match_date, location, is_home, notes, created_by, created_at, updated_at`

func scanMatch(row rowScanner) (Match, error) {
	var i Match
	err := row.Scan(
		&i.ID,
		&i.TeamID,
		&i.Opponent,
		&i.MatchDate,
		&i.Location,
		&i.IsHome,
		&i.Notes,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createMatch = `-- name: CreateMatch :one
INSERT INTO matches (team_id, opponent, match_date, location, is_home, notes, created_by)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + matchColumns

type CreateMatchParams struct {
	TeamID    int64
	Opponent  string
	MatchDate time.Time
	Location  string
	IsHome    bool
	Notes     string
	CreatedBy sql.NullInt64
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (Match, error) {
	row := q.db.QueryRowContext(ctx, createMatch,
		arg.TeamID,
		arg.Opponent,
		arg.MatchDate,
		arg.Location,
		arg.IsHome,
		arg.Notes,
		arg.CreatedBy,
	)
	return scanMatch(row)
}

const getMatch = `-- name: GetMatch :one
SELECT ` + matchColumns + ` FROM matches WHERE id = ?`

func (q *Queries) GetMatch(ctx context.Context, id int64) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, id)
	return scanMatch(row)
}

const listMatchesByTeam = `-- name: ListMatchesByTeam :many
SELECT ` + matchColumns + ` FROM matches
WHERE team_id = ?
  AND match_date >= ?
  AND match_date <= ?
ORDER BY match_date DESC, id DESC`

type ListMatchesByTeamParams struct {
	TeamID int64
	From   time.Time
	To     time.Time
}

func (q *Queries) ListMatchesByTeam(ctx context.Context, arg ListMatchesByTeamParams) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listMatchesByTeam, arg.TeamID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanMatch)
}

const updateMatch = `-- name: UpdateMatch :one
UPDATE matches
SET opponent = ?, match_date = ?, location = ?, is_home = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + matchColumns

type UpdateMatchParams struct {
	Opponent  string
	MatchDate time.Time
	Location  string
	IsHome    bool
	Notes     string
	ID        int64
}

func (q *Queries) UpdateMatch(ctx context.Context, arg UpdateMatchParams) (Match, error) {
	row := q.db.QueryRowContext(ctx, updateMatch,
		arg.Opponent,
		arg.MatchDate,
		arg.Location,
		arg.IsHome,
		arg.Notes,
		arg.ID,
	)
	return scanMatch(row)
}

const deleteMatch = `-- name: DeleteMatch :execrows
DELETE FROM matches WHERE id = ?`

func (q *Queries) DeleteMatch(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMatch, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
