package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

const defaultFetchLimit = 8

// Store is the read surface the collector needs.
type Store interface {
	ListMatchesByTeam(ctx context.Context, arg dbgen.ListMatchesByTeamParams) ([]dbgen.Match, error)
	ListQuarterResults(ctx context.Context, matchID int64) ([]dbgen.MatchQuarterResult, error)
	CountCallUpsForPlayer(ctx context.Context, playerID int64) (int64, error)
	ListPlayerPeriodsByPlayer(ctx context.Context, playerID int64) ([]dbgen.MatchPlayerPeriod, error)
	GetPlayerGoalTotals(ctx context.Context, playerID int64) (dbgen.GetPlayerGoalTotalsRow, error)
}

type Collector struct {
	store Store
	limit int
}

func NewCollector(store Store) (*Collector, error) {
	if store == nil {
		return nil, errors.New("stats collector requires a store")
	}
	return &Collector{store: store, limit: defaultFetchLimit}, nil
}

type MatchReport struct {
	Match  dbgen.Match `json:"match"`
	Result *Score      `json:"result"`
}

type TeamReport struct {
	TeamID  int64         `json:"teamId"`
	Summary Summary       `json:"summary"`
	Matches []MatchReport `json:"matches"`
}

// TeamSummary loads the team's matches in [from, to], fetches every match's
// quarter results concurrently and aggregates them once all have arrived.
func (c *Collector) TeamSummary(ctx context.Context, teamID int64, from, to time.Time) (TeamReport, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "stats_collector").
		Int64("team_id", teamID).
		Logger()

	matches, err := c.store.ListMatchesByTeam(ctx, dbgen.ListMatchesByTeamParams{
		TeamID: teamID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return TeamReport{}, fmt.Errorf("list matches: %w", err)
	}

	reports := make([]MatchReport, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, match := range matches {
		reports[i].Match = match
		g.Go(func() error {
			quarters, err := c.store.ListQuarterResults(gctx, match.ID)
			if err != nil {
				return fmt.Errorf("list quarter results for match %d: %w", match.ID, err)
			}
			reports[i].Result = MatchResult(quarters)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Failed to collect quarter results")
		return TeamReport{}, err
	}

	results := make([]*Score, len(reports))
	for i := range reports {
		results[i] = reports[i].Result
	}

	summary := Aggregate(results)
	logger.Debug().
		Int("match_count", len(matches)).
		Int("played", summary.Played).
		Msg("Aggregated team statistics")

	return TeamReport{
		TeamID:  teamID,
		Summary: summary,
		Matches: reports,
	}, nil
}

type PlayerReport struct {
	PlayerID      int64   `json:"playerId"`
	CalledUp      int64   `json:"calledUp"`
	PeriodsPlayed float64 `json:"periodsPlayed"`
	Goals         int64   `json:"goals"`
	Assists       int64   `json:"assists"`
}

func (c *Collector) PlayerSummary(ctx context.Context, playerID int64) (PlayerReport, error) {
	calledUp, err := c.store.CountCallUpsForPlayer(ctx, playerID)
	if err != nil {
		return PlayerReport{}, fmt.Errorf("count call-ups: %w", err)
	}

	periods, err := c.store.ListPlayerPeriodsByPlayer(ctx, playerID)
	if err != nil {
		return PlayerReport{}, fmt.Errorf("list periods: %w", err)
	}
	var played float64
	for _, p := range periods {
		played += FractionWeight(p.Fraction)
	}

	totals, err := c.store.GetPlayerGoalTotals(ctx, playerID)
	if err != nil {
		return PlayerReport{}, fmt.Errorf("goal totals: %w", err)
	}

	return PlayerReport{
		PlayerID:      playerID,
		CalledUp:      calledUp,
		PeriodsPlayed: played,
		Goals:         totals.Goals,
		Assists:       totals.Assists,
	}, nil
}
