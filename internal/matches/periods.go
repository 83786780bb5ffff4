package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	db "github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/stats"
)

type PeriodInput struct {
	PlayerID int64  `json:"playerId"`
	Period   int64  `json:"period"`
	Fraction string `json:"fraction"`
}

func (in PeriodInput) validate() error {
	if !validPeriod(in.Period) {
		return ErrInvalidPeriod
	}
	if !validFraction(in.Fraction) {
		return ErrInvalidFraction
	}
	return nil
}

// RecordPeriod stores the fraction a player spent on the field in a period,
// replacing whatever was recorded before for the same period.
func (e *Engine) RecordPeriod(ctx context.Context, matchID int64, in PeriodInput) error {
	return e.RecordPeriods(ctx, matchID, []PeriodInput{in})
}

// RecordPeriods applies several period records atomically.
func (e *Engine) RecordPeriods(ctx context.Context, matchID int64, inputs []PeriodInput) error {
	for _, in := range inputs {
		if err := in.validate(); err != nil {
			return err
		}
	}
	logger := matchLogger(ctx, matchID)

	return e.db.RetryTx(ctx, func(txdb *db.DB) error {
		if _, err := loadMatch(ctx, txdb.Queries, matchID); err != nil {
			return err
		}
		for _, in := range inputs {
			if err := requireCalledUp(ctx, txdb.Queries, matchID, in.PlayerID); err != nil {
				return err
			}
			if err := requireUnlocked(ctx, txdb.Queries, matchID, in.Period, in.PlayerID); err != nil {
				return err
			}
			if _, err := txdb.Queries.DeletePlayerPeriod(ctx, dbgen.DeletePlayerPeriodParams{
				MatchID:  matchID,
				PlayerID: in.PlayerID,
				Period:   in.Period,
			}); err != nil {
				return fmt.Errorf("delete period: %w", err)
			}
			if err := txdb.Queries.InsertPlayerPeriod(ctx, dbgen.InsertPlayerPeriodParams{
				MatchID:  matchID,
				PlayerID: in.PlayerID,
				Period:   in.Period,
				Fraction: in.Fraction,
			}); err != nil {
				return fmt.Errorf("insert period: %w", err)
			}
		}
		logger.Debug().Int("records", len(inputs)).Msg("Periods recorded")
		return nil
	})
}

func (e *Engine) ClearPeriod(ctx context.Context, matchID, playerID, period int64) error {
	if !validPeriod(period) {
		return ErrInvalidPeriod
	}

	return e.db.RetryTx(ctx, func(txdb *db.DB) error {
		if _, err := loadMatch(ctx, txdb.Queries, matchID); err != nil {
			return err
		}
		if err := requireUnlocked(ctx, txdb.Queries, matchID, period, playerID); err != nil {
			return err
		}
		if _, err := txdb.Queries.DeletePlayerPeriod(ctx, dbgen.DeletePlayerPeriodParams{
			MatchID:  matchID,
			PlayerID: playerID,
			Period:   period,
		}); err != nil {
			return fmt.Errorf("delete period: %w", err)
		}
		return nil
	})
}

// requireUnlocked refuses manual edits to a period the player was substituted in.
func requireUnlocked(ctx context.Context, q *dbgen.Queries, matchID, period, playerID int64) error {
	count, err := q.CountSubstitutionsInPeriod(ctx, dbgen.CountSubstitutionsInPeriodParams{
		MatchID:  matchID,
		Period:   period,
		PlayerID: playerID,
	})
	if err != nil {
		return fmt.Errorf("count substitutions: %w", err)
	}
	if count > 0 {
		return ErrPeriodLocked
	}
	return nil
}

type GridRow struct {
	PlayerID     int64     `json:"playerId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	JerseyNumber *int64    `json:"jerseyNumber,omitempty"`
	Periods      [4]string `json:"periods"`
	Total        float64   `json:"total"`
}

// PeriodGrid lists every called-up player with the fraction recorded for each
// period ("" when absent) and the total periods played.
func (e *Engine) PeriodGrid(ctx context.Context, matchID int64) ([]GridRow, error) {
	if _, err := loadMatch(ctx, e.db.Queries, matchID); err != nil {
		return nil, err
	}
	return periodGrid(ctx, e.db.Queries, matchID)
}

func periodGrid(ctx context.Context, q *dbgen.Queries, matchID int64) ([]GridRow, error) {
	callUps, err := q.ListMatchCallUps(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list call-ups: %w", err)
	}
	periods, err := q.ListMatchPeriods(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}

	byPlayer := make(map[int64][]dbgen.MatchPlayerPeriod)
	for _, p := range periods {
		byPlayer[p.PlayerID] = append(byPlayer[p.PlayerID], p)
	}

	grid := make([]GridRow, 0, len(callUps))
	for _, c := range callUps {
		row := GridRow{
			PlayerID:     c.PlayerID,
			FirstName:    c.FirstName,
			LastName:     c.LastName,
			JerseyNumber: nullInt64Ptr(c.JerseyNumber),
		}
		for _, p := range byPlayer[c.PlayerID] {
			if !validPeriod(p.Period) {
				continue
			}
			row.Periods[p.Period-1] = p.Fraction
			row.Total += stats.FractionWeight(p.Fraction)
		}
		grid = append(grid, row)
	}
	return grid, nil
}

type PeriodViolation struct {
	PlayerID  int64   `json:"playerId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Played    float64 `json:"played"`
}

type ValidationReport struct {
	MatchID    int64             `json:"matchId"`
	Minimum    int               `json:"minimum"`
	Valid      bool              `json:"valid"`
	Violations []PeriodViolation `json:"violations"`
}

// ValidateMinimumPeriods reports every called-up player whose periods played
// fall below the configured minimum.
func (e *Engine) ValidateMinimumPeriods(ctx context.Context, matchID int64) (ValidationReport, error) {
	if _, err := loadMatch(ctx, e.db.Queries, matchID); err != nil {
		return ValidationReport{}, err
	}
	grid, err := periodGrid(ctx, e.db.Queries, matchID)
	if err != nil {
		return ValidationReport{}, err
	}

	report := BelowMinimum(grid, e.minimumPeriods)
	report.MatchID = matchID

	logger := matchLogger(ctx, matchID)
	logger.Debug().
		Int("minimum", e.minimumPeriods).
		Int("violations", len(report.Violations)).
		Msg("Validated minimum periods")
	return report, nil
}

// BelowMinimum flags grid rows whose total is under minimum.
func BelowMinimum(grid []GridRow, minimum int) ValidationReport {
	report := ValidationReport{Minimum: minimum, Violations: []PeriodViolation{}}
	for _, row := range grid {
		if row.Total < float64(minimum) {
			report.Violations = append(report.Violations, PeriodViolation{
				PlayerID:  row.PlayerID,
				FirstName: row.FirstName,
				LastName:  row.LastName,
				Played:    row.Total,
			})
		}
	}
	report.Valid = len(report.Violations) == 0
	return report
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
