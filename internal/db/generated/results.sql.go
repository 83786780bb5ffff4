package dbgen

import (
	"context"
	"database/sql"
)

const quarterResultColumns = `match_id, quarter, team_goals, opponent_goals, updated_at`

func scanMatchQuarterResult(row rowScanner) (MatchQuarterResult, error) {
	var i MatchQuarterResult
	err := row.Scan(
		&i.MatchID,
		&i.Quarter,
		&i.TeamGoals,
		&i.OpponentGoals,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertQuarterResult = `-- name: UpsertQuarterResult :one
INSERT INTO match_quarter_results (match_id, quarter, team_goals, opponent_goals)
VALUES (?, ?, ?, ?)
ON CONFLICT (match_id, quarter) DO UPDATE SET
    team_goals = excluded.team_goals,
    opponent_goals = excluded.opponent_goals,
    updated_at = CURRENT_TIMESTAMP
RETURNING ` + quarterResultColumns

type UpsertQuarterResultParams struct {
	MatchID       int64
	Quarter       int64
	TeamGoals     int64
	OpponentGoals int64
}

func (q *Queries) UpsertQuarterResult(ctx context.Context, arg UpsertQuarterResultParams) (MatchQuarterResult, error) {
	row := q.db.QueryRowContext(ctx, upsertQuarterResult, arg.MatchID, arg.Quarter, arg.TeamGoals, arg.OpponentGoals)
	return scanMatchQuarterResult(row)
}

const listQuarterResults = `-- name: ListQuarterResults :many
SELECT ` + quarterResultColumns + ` FROM match_quarter_results
WHERE match_id = ?
ORDER BY quarter`

func (q *Queries) ListQuarterResults(ctx context.Context, matchID int64) ([]MatchQuarterResult, error) {
	rows, err := q.db.QueryContext(ctx, listQuarterResults, matchID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanMatchQuarterResult)
}

const deleteQuarterResult = `-- name: DeleteQuarterResult :execrows
DELETE FROM match_quarter_results WHERE match_id = ? AND quarter = ?`

type DeleteQuarterResultParams struct {
	MatchID int64
	Quarter int64
}

func (q *Queries) DeleteQuarterResult(ctx context.Context, arg DeleteQuarterResultParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteQuarterResult, arg.MatchID, arg.Quarter)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const goalColumns = `id, match_id, quarter, scorer_player_id, assist_player_id, minute, own_goal, created_at`

func scanMatchGoal(row rowScanner) (MatchGoal, error) {
	var i MatchGoal
	err := row.Scan(
		&i.ID,
		&i.MatchID,
		&i.Quarter,
		&i.ScorerPlayerID,
		&i.AssistPlayerID,
		&i.Minute,
		&i.OwnGoal,
		&i.CreatedAt,
	)
	return i, err
}

const createGoal = `-- name: CreateGoal :one
INSERT INTO match_goals (match_id, quarter, scorer_player_id, assist_player_id, minute, own_goal)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + goalColumns

type CreateGoalParams struct {
	MatchID        int64
	Quarter        int64
	ScorerPlayerID sql.NullInt64
	AssistPlayerID sql.NullInt64
	Minute         sql.NullInt64
	OwnGoal        bool
}

func (q *Queries) CreateGoal(ctx context.Context, arg CreateGoalParams) (MatchGoal, error) {
	row := q.db.QueryRowContext(ctx, createGoal,
		arg.MatchID,
		arg.Quarter,
		arg.ScorerPlayerID,
		arg.AssistPlayerID,
		arg.Minute,
		arg.OwnGoal,
	)
	return scanMatchGoal(row)
}

const listGoals = `-- name: ListGoals :many
SELECT ` + goalColumns + ` FROM match_goals
WHERE match_id = ?
ORDER BY quarter, minute, id`

func (q *Queries) ListGoals(ctx context.Context, matchID int64) ([]MatchGoal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals, matchID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanMatchGoal)
}

const deleteGoal = `-- name: DeleteGoal :execrows
DELETE FROM match_goals WHERE id = ? AND match_id = ?`

type DeleteGoalParams struct {
	ID      int64
	MatchID int64
}

func (q *Queries) DeleteGoal(ctx context.Context, arg DeleteGoalParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGoal, arg.ID, arg.MatchID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countGoalsForPlayer = `-- name: CountGoalsForPlayer :one
SELECT COUNT(*) FROM match_goals
WHERE match_id = ? AND (scorer_player_id = ? OR assist_player_id = ?)`

type CountGoalsForPlayerParams struct {
	MatchID  int64
	PlayerID int64
}

func (q *Queries) CountGoalsForPlayer(ctx context.Context, arg CountGoalsForPlayerParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countGoalsForPlayer, arg.MatchID, arg.PlayerID, arg.PlayerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getPlayerGoalTotals = `-- name: GetPlayerGoalTotals :one
SELECT
    COALESCE(SUM(CASE WHEN scorer_player_id = ? AND own_goal = 0 THEN 1 ELSE 0 END), 0) AS goals,
    COALESCE(SUM(CASE WHEN assist_player_id = ? THEN 1 ELSE 0 END), 0) AS assists
FROM match_goals`

type GetPlayerGoalTotalsRow struct {
	Goals   int64 `json:"goals"`
	Assists int64 `json:"assists"`
}

func (q *Queries) GetPlayerGoalTotals(ctx context.Context, playerID int64) (GetPlayerGoalTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, getPlayerGoalTotals, playerID, playerID)
	var i GetPlayerGoalTotalsRow
	err := row.Scan(&i.Goals, &i.Assists)
	return i, err
}
