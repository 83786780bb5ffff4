package dbgen

import "context"

const periodColumns = `match_id, player_id, period, fraction, created_at`

func scanMatchPlayerPeriod(row rowScanner) (MatchPlayerPeriod, error) {
	var i MatchPlayerPeriod
	err := row.Scan(
		&i.MatchID,
		&i.PlayerID,
		&i.Period,
		&i.Fraction,
		&i.CreatedAt,
	)
	return i, err
}

const getPlayerPeriod = `-- name: GetPlayerPeriod :one
SELECT ` + periodColumns + ` FROM match_player_periods
WHERE match_id = ? AND player_id = ? AND period = ?`

type GetPlayerPeriodParams struct {
	MatchID  int64
	PlayerID int64
	Period   int64
}

func (q *Queries) GetPlayerPeriod(ctx context.Context, arg GetPlayerPeriodParams) (MatchPlayerPeriod, error) {
	row := q.db.QueryRowContext(ctx, getPlayerPeriod, arg.MatchID, arg.PlayerID, arg.Period)
	return scanMatchPlayerPeriod(row)
}

const deletePlayerPeriod = `-- name: DeletePlayerPeriod :execrows
DELETE FROM match_player_periods WHERE match_id = ? AND player_id = ? AND period = ?`

type DeletePlayerPeriodParams struct {
	MatchID  int64
	PlayerID int64
	Period   int64
}

func (q *Queries) DeletePlayerPeriod(ctx context.Context, arg DeletePlayerPeriodParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePlayerPeriod, arg.MatchID, arg.PlayerID, arg.Period)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertPlayerPeriod = `-- name: InsertPlayerPeriod :exec
INSERT INTO match_player_periods (match_id, player_id, period, fraction) VALUES (?, ?, ?, ?)`

type InsertPlayerPeriodParams struct {
	MatchID  int64
	PlayerID int64
	Period   int64
	Fraction string
}

func (q *Queries) InsertPlayerPeriod(ctx context.Context, arg InsertPlayerPeriodParams) error {
	_, err := q.db.ExecContext(ctx, insertPlayerPeriod, arg.MatchID, arg.PlayerID, arg.Period, arg.Fraction)
	return err
}

const updatePlayerPeriodFraction = `-- name: UpdatePlayerPeriodFraction :execrows
UPDATE match_player_periods SET fraction = ?
WHERE match_id = ? AND player_id = ? AND period = ?`

type UpdatePlayerPeriodFractionParams struct {
	Fraction string
	MatchID  int64
	PlayerID int64
	Period   int64
}

func (q *Queries) UpdatePlayerPeriodFraction(ctx context.Context, arg UpdatePlayerPeriodFractionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePlayerPeriodFraction, arg.Fraction, arg.MatchID, arg.PlayerID, arg.Period)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listMatchPeriods = `-- name: ListMatchPeriods :many
SELECT ` + periodColumns + ` FROM match_player_periods
WHERE match_id = ?
ORDER BY player_id, period`

func (q *Queries) ListMatchPeriods(ctx context.Context, matchID int64) ([]MatchPlayerPeriod, error) {
	rows, err := q.db.QueryContext(ctx, listMatchPeriods, matchID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanMatchPlayerPeriod)
}

const deletePlayerPeriodsForMatch = `-- name: DeletePlayerPeriodsForMatch :exec
DELETE FROM match_player_periods WHERE match_id = ? AND player_id = ?`

type DeletePlayerPeriodsForMatchParams struct {
	MatchID  int64
	PlayerID int64
}

func (q *Queries) DeletePlayerPeriodsForMatch(ctx context.Context, arg DeletePlayerPeriodsForMatchParams) error {
	_, err := q.db.ExecContext(ctx, deletePlayerPeriodsForMatch, arg.MatchID, arg.PlayerID)
	return err
}

const listPlayerPeriodsByPlayer = `-- name: ListPlayerPeriodsByPlayer :many
SELECT ` + periodColumns + ` FROM match_player_periods
WHERE player_id = ?
ORDER BY match_id, period`

func (q *Queries) ListPlayerPeriodsByPlayer(ctx context.Context, playerID int64) ([]MatchPlayerPeriod, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerPeriodsByPlayer, playerID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanMatchPlayerPeriod)
}
