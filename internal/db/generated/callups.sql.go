package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const createCallUp = `-- name: CreateCallUp :exec
INSERT INTO match_call_ups (match_id, player_id) VALUES (?, ?)`

type CreateCallUpParams struct {
	MatchID  int64
	PlayerID int64
}

func (q *Queries) CreateCallUp(ctx context.Context, arg CreateCallUpParams) error {
	_, err := q.db.ExecContext(ctx, createCallUp, arg.MatchID, arg.PlayerID)
	return err
}

const deleteCallUp = `-- name: DeleteCallUp :execrows
DELETE FROM match_call_ups WHERE match_id = ? AND player_id = ?`

type DeleteCallUpParams struct {
	MatchID  int64
	PlayerID int64
}

func (q *Queries) DeleteCallUp(ctx context.Context, arg DeleteCallUpParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCallUp, arg.MatchID, arg.PlayerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const isCalledUp = `-- name: IsCalledUp :one
SELECT EXISTS(SELECT 1 FROM match_call_ups WHERE match_id = ? AND player_id = ?)`

type IsCalledUpParams struct {
	MatchID  int64
	PlayerID int64
}

func (q *Queries) IsCalledUp(ctx context.Context, arg IsCalledUpParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, isCalledUp, arg.MatchID, arg.PlayerID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listMatchCallUps = `-- name: ListMatchCallUps :many
SELECT p.id, p.first_name, p.last_name, p.jersey_number, p.position, c.created_at
FROM match_call_ups c
JOIN players p ON p.id = c.player_id
WHERE c.match_id = ?
ORDER BY p.last_name, p.first_name`

type ListMatchCallUpsRow struct {
	PlayerID     int64         `json:"player_id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	JerseyNumber sql.NullInt64 `json:"jersey_number"`
	Position     string        `json:"position"`
	CalledUpAt   time.Time     `json:"called_up_at"`
}

func scanListMatchCallUpsRow(row rowScanner) (ListMatchCallUpsRow, error) {
	var i ListMatchCallUpsRow
	err := row.Scan(
		&i.PlayerID,
		&i.FirstName,
		&i.LastName,
		&i.JerseyNumber,
		&i.Position,
		&i.CalledUpAt,
	)
	return i, err
}

func (q *Queries) ListMatchCallUps(ctx context.Context, matchID int64) ([]ListMatchCallUpsRow, error) {
	rows, err := q.db.QueryContext(ctx, listMatchCallUps, matchID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanListMatchCallUpsRow)
}

const deleteCallUpsByMatch = `-- name: DeleteCallUpsByMatch :exec
DELETE FROM match_call_ups WHERE match_id = ?`

func (q *Queries) DeleteCallUpsByMatch(ctx context.Context, matchID int64) error {
	_, err := q.db.ExecContext(ctx, deleteCallUpsByMatch, matchID)
	return err
}

const countCallUpsForPlayer = `-- name: CountCallUpsForPlayer :one
SELECT COUNT(*) FROM match_call_ups WHERE player_id = ?`

func (q *Queries) CountCallUpsForPlayer(ctx context.Context, playerID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCallUpsForPlayer, playerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
