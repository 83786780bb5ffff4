package matches

import (
	"context"
	"database/sql"
	"fmt"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/stats"
)

type QuarterInput struct {
	Quarter       int64 `json:"quarter"`
	TeamGoals     int64 `json:"teamGoals"`
	OpponentGoals int64 `json:"opponentGoals"`
}

func (e *Engine) ListQuarterResults(ctx context.Context, matchID int64) ([]dbgen.MatchQuarterResult, *stats.Score, error) {
	if _, err := loadMatch(ctx, e.db.Queries, matchID); err != nil {
		return nil, nil, err
	}
	quarters, err := e.db.Queries.ListQuarterResults(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("list quarter results: %w", err)
	}
	return quarters, stats.MatchResult(quarters), nil
}

// RecordQuarterResult upserts the goals for one quarter and returns the
// running match score.
func (e *Engine) RecordQuarterResult(ctx context.Context, matchID int64, in QuarterInput) (*stats.Score, error) {
	if !validPeriod(in.Quarter) {
		return nil, ErrInvalidPeriod
	}
	if in.TeamGoals < 0 || in.OpponentGoals < 0 {
		return nil, ErrInvalidScore
	}
	logger := matchLogger(ctx, matchID).With().Int64("quarter", in.Quarter).Logger()

	match, err := loadMatch(ctx, e.db.Queries, matchID)
	if err != nil {
		return nil, err
	}
	if _, err := e.db.Queries.UpsertQuarterResult(ctx, dbgen.UpsertQuarterResultParams{
		MatchID:       matchID,
		Quarter:       in.Quarter,
		TeamGoals:     in.TeamGoals,
		OpponentGoals: in.OpponentGoals,
	}); err != nil {
		return nil, fmt.Errorf("upsert quarter result: %w", err)
	}

	quarters, err := e.db.Queries.ListQuarterResults(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list quarter results: %w", err)
	}
	score := stats.MatchResult(quarters)
	logger.Info().
		Int("team_goals", score.TeamGoals).
		Int("opponent_goals", score.OpponentGoals).
		Msg("Quarter result recorded")

	if e.notifier != nil {
		if err := e.notifier.NotifyScore(ctx, match, in.Quarter, *score); err != nil {
			logger.Warn().Err(err).Msg("Failed to send score notification")
		}
	}
	return score, nil
}

func (e *Engine) ClearQuarterResult(ctx context.Context, matchID, quarter int64) error {
	if !validPeriod(quarter) {
		return ErrInvalidPeriod
	}
	if _, err := e.db.Queries.DeleteQuarterResult(ctx, dbgen.DeleteQuarterResultParams{
		MatchID: matchID,
		Quarter: quarter,
	}); err != nil {
		return fmt.Errorf("delete quarter result: %w", err)
	}
	return nil
}

type GoalInput struct {
	Quarter        int64  `json:"quarter"`
	ScorerPlayerID *int64 `json:"scorerPlayerId,omitempty"`
	AssistPlayerID *int64 `json:"assistPlayerId,omitempty"`
	Minute         *int64 `json:"minute,omitempty"`
	OwnGoal        bool   `json:"ownGoal"`
}

// RecordGoal stores a goal scored for the team. Own goals by the opponent
// carry no scorer; scorers and assisting players must be called up.
func (e *Engine) RecordGoal(ctx context.Context, matchID int64, in GoalInput) (dbgen.MatchGoal, error) {
	if !validPeriod(in.Quarter) {
		return dbgen.MatchGoal{}, ErrInvalidPeriod
	}
	if in.OwnGoal && in.ScorerPlayerID != nil {
		return dbgen.MatchGoal{}, fmt.Errorf("%w: own goals have no scorer", ErrInvalidGoal)
	}
	if in.ScorerPlayerID != nil && in.AssistPlayerID != nil && *in.ScorerPlayerID == *in.AssistPlayerID {
		return dbgen.MatchGoal{}, fmt.Errorf("%w: scorer cannot assist their own goal", ErrInvalidGoal)
	}
	if in.Minute != nil && *in.Minute < 0 {
		return dbgen.MatchGoal{}, fmt.Errorf("%w: minute must not be negative", ErrInvalidGoal)
	}

	q := e.db.Queries
	if _, err := loadMatch(ctx, q, matchID); err != nil {
		return dbgen.MatchGoal{}, err
	}
	for _, playerID := range []*int64{in.ScorerPlayerID, in.AssistPlayerID} {
		if playerID == nil {
			continue
		}
		if err := requireCalledUp(ctx, q, matchID, *playerID); err != nil {
			return dbgen.MatchGoal{}, err
		}
	}

	goal, err := q.CreateGoal(ctx, dbgen.CreateGoalParams{
		MatchID:        matchID,
		Quarter:        in.Quarter,
		ScorerPlayerID: nullInt64(in.ScorerPlayerID),
		AssistPlayerID: nullInt64(in.AssistPlayerID),
		Minute:         nullInt64(in.Minute),
		OwnGoal:        in.OwnGoal,
	})
	if err != nil {
		return dbgen.MatchGoal{}, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

func (e *Engine) ListGoals(ctx context.Context, matchID int64) ([]dbgen.MatchGoal, error) {
	if _, err := loadMatch(ctx, e.db.Queries, matchID); err != nil {
		return nil, err
	}
	goals, err := e.db.Queries.ListGoals(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (e *Engine) DeleteGoal(ctx context.Context, matchID, goalID int64) error {
	rows, err := e.db.Queries.DeleteGoal(ctx, dbgen.DeleteGoalParams{ID: goalID, MatchID: matchID})
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if rows == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
