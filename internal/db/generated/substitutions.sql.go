package dbgen

import "context"

const substitutionColumns = `id, match_id, period, player_out_id, player_in_id, created_at`

func scanMatchSubstitution(row rowScanner) (MatchSubstitution, error) {
	var i MatchSubstitution
	err := row.Scan(
		&i.ID,
		&i.MatchID,
		&i.Period,
		&i.PlayerOutID,
		&i.PlayerInID,
		&i.CreatedAt,
	)
	return i, err
}

const createSubstitution = `-- name: CreateSubstitution :one
INSERT INTO match_substitutions (match_id, period, player_out_id, player_in_id)
VALUES (?, ?, ?, ?)
RETURNING ` + substitutionColumns

type CreateSubstitutionParams struct {
	MatchID     int64
	Period      int64
	PlayerOutID int64
	PlayerInID  int64
}

func (q *Queries) CreateSubstitution(ctx context.Context, arg CreateSubstitutionParams) (MatchSubstitution, error) {
	row := q.db.QueryRowContext(ctx, createSubstitution, arg.MatchID, arg.Period, arg.PlayerOutID, arg.PlayerInID)
	return scanMatchSubstitution(row)
}

const getSubstitution = `-- name: GetSubstitution :one
SELECT ` + substitutionColumns + ` FROM match_substitutions WHERE id = ?`

func (q *Queries) GetSubstitution(ctx context.Context, id int64) (MatchSubstitution, error) {
	row := q.db.QueryRowContext(ctx, getSubstitution, id)
	return scanMatchSubstitution(row)
}

const listSubstitutions = `-- name: ListSubstitutions :many
SELECT ` + substitutionColumns + ` FROM match_substitutions
WHERE match_id = ?
ORDER BY period, id`

func (q *Queries) ListSubstitutions(ctx context.Context, matchID int64) ([]MatchSubstitution, error) {
	rows, err := q.db.QueryContext(ctx, listSubstitutions, matchID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanMatchSubstitution)
}

const deleteSubstitution = `-- name: DeleteSubstitution :execrows
DELETE FROM match_substitutions WHERE id = ?`

func (q *Queries) DeleteSubstitution(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSubstitution, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countSubstitutionsInPeriod = `-- name: CountSubstitutionsInPeriod :one
SELECT COUNT(*) FROM match_substitutions
WHERE match_id = ? AND period = ? AND (player_out_id = ? OR player_in_id = ?)`

type CountSubstitutionsInPeriodParams struct {
	MatchID  int64
	Period   int64
	PlayerID int64
}

func (q *Queries) CountSubstitutionsInPeriod(ctx context.Context, arg CountSubstitutionsInPeriodParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSubstitutionsInPeriod, arg.MatchID, arg.Period, arg.PlayerID, arg.PlayerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countSubstitutionsForPlayer = `-- name: CountSubstitutionsForPlayer :one
SELECT COUNT(*) FROM match_substitutions
WHERE match_id = ? AND (player_out_id = ? OR player_in_id = ?)`

type CountSubstitutionsForPlayerParams struct {
	MatchID  int64
	PlayerID int64
}

func (q *Queries) CountSubstitutionsForPlayer(ctx context.Context, arg CountSubstitutionsForPlayerParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSubstitutionsForPlayer, arg.MatchID, arg.PlayerID, arg.PlayerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
