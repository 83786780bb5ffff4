// Package matches records call-ups, periods played, substitutions and
// results for a single match.
package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	db "github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/stats"
)

const (
	FirstPeriod = 1
	LastPeriod  = 4

	SubstitutionApplied = "applied"
	SubstitutionRemoved = "removed"
	SubstitutionRefused = "refused"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerNotOnTeam      = errors.New("player does not belong to the match team")
	ErrAlreadyCalledUp      = errors.New("player is already called up")
	ErrNotCalledUp          = errors.New("player is not called up")
	ErrCallUpInUse          = errors.New("player is part of a substitution")
	ErrCallUpHasGoals       = errors.New("player is credited with a goal or assist")
	ErrInvalidPeriod        = errors.New("period must be between 1 and 4")
	ErrInvalidFraction      = errors.New("fraction must be full or half")
	ErrPeriodLocked         = errors.New("period is locked by a substitution")
	ErrSamePlayer           = errors.New("players must be different")
	ErrOutNotOnField        = errors.New("outgoing player has no record for the period")
	ErrOutNotFullPeriod     = errors.New("outgoing player must have a full period")
	ErrInAlreadyOnField     = errors.New("incoming player already has a record for the period")
	ErrAlreadySubstituted   = errors.New("player already has a substitution in the period")
	ErrSubstitutionNotFound = errors.New("substitution not found")
	ErrInvalidScore         = errors.New("goals must not be negative")
	ErrGoalNotFound         = errors.New("goal not found")
	ErrInvalidGoal          = errors.New("invalid goal")
)

// ScoreNotifier is told about the running score after a quarter is recorded.
type ScoreNotifier interface {
	NotifyScore(ctx context.Context, match dbgen.Match, quarter int64, score stats.Score) error
}

// SubstitutionObserver counts substitution outcomes.
type SubstitutionObserver interface {
	ObserveSubstitution(action string)
}

type Engine struct {
	db             *db.DB
	minimumPeriods int
	notifier       ScoreNotifier
	observer       SubstitutionObserver
}

type Option func(*Engine)

func WithScoreNotifier(n ScoreNotifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithSubstitutionObserver(o SubstitutionObserver) Option {
	return func(e *Engine) { e.observer = o }
}

func NewEngine(database *db.DB, minimumPeriods int, opts ...Option) (*Engine, error) {
	if database == nil {
		return nil, errors.New("match engine requires a database")
	}
	if minimumPeriods < 0 || minimumPeriods > LastPeriod {
		return nil, fmt.Errorf("minimum periods must be between 0 and %d", LastPeriod)
	}
	e := &Engine{db: database, minimumPeriods: minimumPeriods}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) MinimumPeriods() int {
	return e.minimumPeriods
}

func matchLogger(ctx context.Context, matchID int64) zerolog.Logger {
	return log.Ctx(ctx).With().
		Str("component", "match_engine").
		Int64("match_id", matchID).
		Logger()
}

func (e *Engine) observe(action string) {
	if e.observer != nil {
		e.observer.ObserveSubstitution(action)
	}
}

func validPeriod(period int64) bool {
	return period >= FirstPeriod && period <= LastPeriod
}

func validFraction(fraction string) bool {
	return fraction == stats.FractionFull || fraction == stats.FractionHalf
}

func loadMatch(ctx context.Context, q *dbgen.Queries, matchID int64) (dbgen.Match, error) {
	match, err := q.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return dbgen.Match{}, ErrMatchNotFound
	}
	if err != nil {
		return dbgen.Match{}, fmt.Errorf("load match %d: %w", matchID, err)
	}
	return match, nil
}

func requireCalledUp(ctx context.Context, q *dbgen.Queries, matchID, playerID int64) error {
	calledUp, err := q.IsCalledUp(ctx, dbgen.IsCalledUpParams{MatchID: matchID, PlayerID: playerID})
	if err != nil {
		return fmt.Errorf("check call-up for player %d: %w", playerID, err)
	}
	if !calledUp {
		return fmt.Errorf("player %d: %w", playerID, ErrNotCalledUp)
	}
	return nil
}
