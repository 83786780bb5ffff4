package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const listEvaluationCategories = `-- name: ListEvaluationCategories :many
SELECT id, name, sort_order FROM evaluation_categories ORDER BY sort_order, id`

func (q *Queries) ListEvaluationCategories(ctx context.Context) ([]EvaluationCategory, error) {
	rows, err := q.db.QueryContext(ctx, listEvaluationCategories)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, func(row rowScanner) (EvaluationCategory, error) {
		var i EvaluationCategory
		err := row.Scan(&i.ID, &i.Name, &i.SortOrder)
		return i, err
	})
}

const listEvaluationCriteria = `-- name: ListEvaluationCriteria :many
SELECT id, category_id, name, max_score, sort_order FROM evaluation_criteria
ORDER BY category_id, sort_order, id`

func (q *Queries) ListEvaluationCriteria(ctx context.Context) ([]EvaluationCriterion, error) {
	rows, err := q.db.QueryContext(ctx, listEvaluationCriteria)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, func(row rowScanner) (EvaluationCriterion, error) {
		var i EvaluationCriterion
		err := row.Scan(&i.ID, &i.CategoryID, &i.Name, &i.MaxScore, &i.SortOrder)
		return i, err
	})
}

const evaluationColumns = `id, player_id, coach_profile_id, evaluated_on, notes, created_at, updated_at`

func scanEvaluation(row rowScanner) (Evaluation, error) {
	var i Evaluation
	err := row.Scan(
		&i.ID,
		&i.PlayerID,
		&i.CoachProfileID,
		&i.EvaluatedOn,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createEvaluation = `-- name: CreateEvaluation :one
INSERT INTO evaluations (player_id, coach_profile_id, evaluated_on, notes)
VALUES (?, ?, ?, ?)
RETURNING ` + evaluationColumns

type CreateEvaluationParams struct {
	PlayerID       int64
	CoachProfileID sql.NullInt64
	EvaluatedOn    time.Time
	Notes          string
}

func (q *Queries) CreateEvaluation(ctx context.Context, arg CreateEvaluationParams) (Evaluation, error) {
	row := q.db.QueryRowContext(ctx, createEvaluation, arg.PlayerID, arg.CoachProfileID, arg.EvaluatedOn, arg.Notes)
	return scanEvaluation(row)
}

const getEvaluation = `-- name: GetEvaluation :one
SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = ?`

func (q *Queries) GetEvaluation(ctx context.Context, id int64) (Evaluation, error) {
	row := q.db.QueryRowContext(ctx, getEvaluation, id)
	return scanEvaluation(row)
}

const listEvaluationsByPlayer = `-- name: ListEvaluationsByPlayer :many
SELECT ` + evaluationColumns + ` FROM evaluations
WHERE player_id = ?
ORDER BY evaluated_on DESC, id DESC`

func (q *Queries) ListEvaluationsByPlayer(ctx context.Context, playerID int64) ([]Evaluation, error) {
	rows, err := q.db.QueryContext(ctx, listEvaluationsByPlayer, playerID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanEvaluation)
}

const updateEvaluation = `-- name: UpdateEvaluation :one
UPDATE evaluations SET evaluated_on = ?, notes = ?, coach_profile_id = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + evaluationColumns

type UpdateEvaluationParams struct {
	EvaluatedOn    time.Time
	Notes          string
	CoachProfileID sql.NullInt64
	ID             int64
}

func (q *Queries) UpdateEvaluation(ctx context.Context, arg UpdateEvaluationParams) (Evaluation, error) {
	row := q.db.QueryRowContext(ctx, updateEvaluation, arg.EvaluatedOn, arg.Notes, arg.CoachProfileID, arg.ID)
	return scanEvaluation(row)
}

const deleteEvaluation = `-- name: DeleteEvaluation :execrows
DELETE FROM evaluations WHERE id = ?`

func (q *Queries) DeleteEvaluation(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEvaluation, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteEvaluationScores = `-- name: DeleteEvaluationScores :exec
DELETE FROM evaluation_scores WHERE evaluation_id = ?`

func (q *Queries) DeleteEvaluationScores(ctx context.Context, evaluationID int64) error {
	_, err := q.db.ExecContext(ctx, deleteEvaluationScores, evaluationID)
	return err
}

const insertEvaluationScore = `-- name: InsertEvaluationScore :exec
INSERT INTO evaluation_scores (evaluation_id, criterion_id, score) VALUES (?, ?, ?)`

type InsertEvaluationScoreParams struct {
	EvaluationID int64
	CriterionID  int64
	Score        int64
}

func (q *Queries) InsertEvaluationScore(ctx context.Context, arg InsertEvaluationScoreParams) error {
	_, err := q.db.ExecContext(ctx, insertEvaluationScore, arg.EvaluationID, arg.CriterionID, arg.Score)
	return err
}

const listEvaluationScores = `-- name: ListEvaluationScores :many
SELECT evaluation_id, criterion_id, score FROM evaluation_scores
WHERE evaluation_id = ?
ORDER BY criterion_id`

func (q *Queries) ListEvaluationScores(ctx context.Context, evaluationID int64) ([]EvaluationScore, error) {
	rows, err := q.db.QueryContext(ctx, listEvaluationScores, evaluationID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, func(row rowScanner) (EvaluationScore, error) {
		var i EvaluationScore
		err := row.Scan(&i.EvaluationID, &i.CriterionID, &i.Score)
		return i, err
	})
}
