// Package evaluations stores coach evaluations of players against the club rubric.
package evaluations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrNoScores           = errors.New("at least one score is required")
	ErrUnknownCriterion   = errors.New("unknown criterion")
	ErrDuplicateCriterion = errors.New("criterion scored more than once")
	ErrScoreOutOfRange    = errors.New("score outside criterion range")
	ErrDateMissing        = errors.New("evaluation date is required")
)

type Criterion struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	MaxScore  int64  `json:"max_score"`
	SortOrder int64  `json:"sort_order"`
}

type Category struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	SortOrder int64       `json:"sort_order"`
	Criteria  []Criterion `json:"criteria"`
}

// Rubric is the ordered category tree with a criterion index.
type Rubric struct {
	Categories []Category `json:"categories"`
	byID       map[int64]Criterion
}

func (r Rubric) Criterion(id int64) (Criterion, bool) {
	c, ok := r.byID[id]
	return c, ok
}

func buildRubric(categories []dbgen.EvaluationCategory, criteria []dbgen.EvaluationCriterion) Rubric {
	rubric := Rubric{
		Categories: make([]Category, 0, len(categories)),
		byID:       make(map[int64]Criterion, len(criteria)),
	}
	index := make(map[int64]int, len(categories))
	for _, cat := range categories {
		index[cat.ID] = len(rubric.Categories)
		rubric.Categories = append(rubric.Categories, Category{
			ID:        cat.ID,
			Name:      cat.Name,
			SortOrder: cat.SortOrder,
			Criteria:  []Criterion{},
		})
	}
	for _, row := range criteria {
		pos, ok := index[row.CategoryID]
		if !ok {
			continue
		}
		c := Criterion{ID: row.ID, Name: row.Name, MaxScore: row.MaxScore, SortOrder: row.SortOrder}
		rubric.Categories[pos].Criteria = append(rubric.Categories[pos].Criteria, c)
		rubric.byID[c.ID] = c
	}
	return rubric
}

type ScoreInput struct {
	CriterionID int64 `json:"criterion_id"`
	Score       int64 `json:"score"`
}

type Input struct {
	EvaluatedOn    time.Time
	Notes          string
	CoachProfileID int64
	Scores         []ScoreInput
}

// Validate checks scores against the rubric: each criterion known, listed once, within 0..max.
func (r Rubric) Validate(scores []ScoreInput) error {
	if len(scores) == 0 {
		return ErrNoScores
	}
	seen := make(map[int64]struct{}, len(scores))
	for _, s := range scores {
		c, ok := r.byID[s.CriterionID]
		if !ok {
			return fmt.Errorf("criterion %d: %w", s.CriterionID, ErrUnknownCriterion)
		}
		if _, dup := seen[s.CriterionID]; dup {
			return fmt.Errorf("criterion %d: %w", s.CriterionID, ErrDuplicateCriterion)
		}
		seen[s.CriterionID] = struct{}{}
		if s.Score < 0 || s.Score > c.MaxScore {
			return fmt.Errorf("%s must be between 0 and %d: %w", c.Name, c.MaxScore, ErrScoreOutOfRange)
		}
	}
	return nil
}

type Service struct {
	db *db.DB
}

func NewService(database *db.DB) (*Service, error) {
	if database == nil {
		return nil, errors.New("evaluations service requires a database")
	}
	return &Service{db: database}, nil
}

func evaluationLogger(ctx context.Context, id int64) zerolog.Logger {
	return log.Ctx(ctx).With().Str("component", "evaluations").Int64("evaluation_id", id).Logger()
}

func (s *Service) Rubric(ctx context.Context) (Rubric, error) {
	return loadRubric(ctx, s.db.Queries)
}

func loadRubric(ctx context.Context, q *dbgen.Queries) (Rubric, error) {
	categories, err := q.ListEvaluationCategories(ctx)
	if err != nil {
		return Rubric{}, fmt.Errorf("list categories: %w", err)
	}
	criteria, err := q.ListEvaluationCriteria(ctx)
	if err != nil {
		return Rubric{}, fmt.Errorf("list criteria: %w", err)
	}
	return buildRubric(categories, criteria), nil
}

func (s *Service) Create(ctx context.Context, playerID int64, in Input) (Sheet, error) {
	if in.EvaluatedOn.IsZero() {
		return Sheet{}, ErrDateMissing
	}

	var sheet Sheet
	err := s.db.RetryTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		if _, err := q.GetPlayer(ctx, playerID); errors.Is(err, sql.ErrNoRows) {
			return ErrPlayerNotFound
		} else if err != nil {
			return fmt.Errorf("get player: %w", err)
		}

		rubric, err := loadRubric(ctx, q)
		if err != nil {
			return err
		}
		if err := rubric.Validate(in.Scores); err != nil {
			return err
		}

		evaluation, err := q.CreateEvaluation(ctx, dbgen.CreateEvaluationParams{
			PlayerID:       playerID,
			CoachProfileID: nullProfile(in.CoachProfileID),
			EvaluatedOn:    dateOnly(in.EvaluatedOn),
			Notes:          strings.TrimSpace(in.Notes),
		})
		if err != nil {
			return fmt.Errorf("create evaluation: %w", err)
		}
		sheet, err = replaceScores(ctx, q, rubric, evaluation, in.Scores)
		return err
	})
	if err != nil {
		return Sheet{}, err
	}

	logger := evaluationLogger(ctx, sheet.ID)
	logger.Info().Int64("player_id", playerID).Msg("Evaluation created")
	return sheet, nil
}

// Update rewrites the header and replaces every stored score.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Sheet, error) {
	if in.EvaluatedOn.IsZero() {
		return Sheet{}, ErrDateMissing
	}

	var sheet Sheet
	err := s.db.RetryTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		rubric, err := loadRubric(ctx, q)
		if err != nil {
			return err
		}
		if err := rubric.Validate(in.Scores); err != nil {
			return err
		}

		evaluation, err := q.UpdateEvaluation(ctx, dbgen.UpdateEvaluationParams{
			EvaluatedOn:    dateOnly(in.EvaluatedOn),
			Notes:          strings.TrimSpace(in.Notes),
			CoachProfileID: nullProfile(in.CoachProfileID),
			ID:             id,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEvaluationNotFound
		}
		if err != nil {
			return fmt.Errorf("update evaluation: %w", err)
		}
		sheet, err = replaceScores(ctx, q, rubric, evaluation, in.Scores)
		return err
	})
	if err != nil {
		return Sheet{}, err
	}

	logger := evaluationLogger(ctx, id)
	logger.Info().Int("scores", len(in.Scores)).Msg("Evaluation updated")
	return sheet, nil
}

func replaceScores(ctx context.Context, q *dbgen.Queries, rubric Rubric, evaluation dbgen.Evaluation, scores []ScoreInput) (Sheet, error) {
	if err := q.DeleteEvaluationScores(ctx, evaluation.ID); err != nil {
		return Sheet{}, fmt.Errorf("clear scores: %w", err)
	}
	for _, score := range scores {
		if err := q.InsertEvaluationScore(ctx, dbgen.InsertEvaluationScoreParams{
			EvaluationID: evaluation.ID,
			CriterionID:  score.CriterionID,
			Score:        score.Score,
		}); err != nil {
			return Sheet{}, fmt.Errorf("insert score: %w", err)
		}
	}
	stored, err := q.ListEvaluationScores(ctx, evaluation.ID)
	if err != nil {
		return Sheet{}, fmt.Errorf("list scores: %w", err)
	}
	return BuildSheet(rubric, evaluation, stored), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Sheet, error) {
	evaluation, err := s.db.Queries.GetEvaluation(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Sheet{}, ErrEvaluationNotFound
	}
	if err != nil {
		return Sheet{}, fmt.Errorf("get evaluation: %w", err)
	}
	rubric, err := s.Rubric(ctx)
	if err != nil {
		return Sheet{}, err
	}
	scores, err := s.db.Queries.ListEvaluationScores(ctx, id)
	if err != nil {
		return Sheet{}, fmt.Errorf("list scores: %w", err)
	}
	return BuildSheet(rubric, evaluation, scores), nil
}

// ListForPlayer returns score sheets newest first.
func (s *Service) ListForPlayer(ctx context.Context, playerID int64) ([]Sheet, error) {
	if _, err := s.db.Queries.GetPlayer(ctx, playerID); errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}

	evaluations, err := s.db.Queries.ListEvaluationsByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	rubric, err := s.Rubric(ctx)
	if err != nil {
		return nil, err
	}

	sheets := make([]Sheet, 0, len(evaluations))
	for _, evaluation := range evaluations {
		scores, err := s.db.Queries.ListEvaluationScores(ctx, evaluation.ID)
		if err != nil {
			return nil, fmt.Errorf("list scores: %w", err)
		}
		sheets = append(sheets, BuildSheet(rubric, evaluation, scores))
	}
	return sheets, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	rows, err := s.db.Queries.DeleteEvaluation(ctx, id)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	if rows == 0 {
		return ErrEvaluationNotFound
	}
	return nil
}

// PlayerOf returns the player an evaluation belongs to.
func (s *Service) PlayerOf(ctx context.Context, evaluationID int64) (dbgen.Player, error) {
	evaluation, err := s.db.Queries.GetEvaluation(ctx, evaluationID)
	if errors.Is(err, sql.ErrNoRows) {
		return dbgen.Player{}, ErrEvaluationNotFound
	}
	if err != nil {
		return dbgen.Player{}, fmt.Errorf("get evaluation: %w", err)
	}
	player, err := s.db.Queries.GetPlayer(ctx, evaluation.PlayerID)
	if errors.Is(err, sql.ErrNoRows) {
		return dbgen.Player{}, ErrPlayerNotFound
	}
	if err != nil {
		return dbgen.Player{}, fmt.Errorf("get player: %w", err)
	}
	return player, nil
}

// LinkedPlayers returns the player records attached to a profile.
func (s *Service) LinkedPlayers(ctx context.Context, profileID int64) ([]dbgen.Player, error) {
	players, err := s.db.Queries.ListPlayersByProfile(ctx, nullProfile(profileID))
	if err != nil {
		return nil, fmt.Errorf("list linked players: %w", err)
	}
	return players, nil
}

func nullProfile(id int64) sql.NullInt64 {
	if id <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func percentage(total, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Round(float64(total)*1000/float64(limit)) / 10
}
