package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	db "github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

func (e *Engine) ListCallUps(ctx context.Context, matchID int64) ([]dbgen.ListMatchCallUpsRow, error) {
	if _, err := loadMatch(ctx, e.db.Queries, matchID); err != nil {
		return nil, err
	}
	rows, err := e.db.Queries.ListMatchCallUps(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list call-ups: %w", err)
	}
	return rows, nil
}

func (e *Engine) AddCallUp(ctx context.Context, matchID, playerID int64) error {
	logger := matchLogger(ctx, matchID).With().Int64("player_id", playerID).Logger()

	return e.db.RetryTx(ctx, func(txdb *db.DB) error {
		match, err := loadMatch(ctx, txdb.Queries, matchID)
		if err != nil {
			return err
		}
		if err := requireTeamPlayer(ctx, txdb.Queries, match, playerID); err != nil {
			return err
		}

		calledUp, err := txdb.Queries.IsCalledUp(ctx, dbgen.IsCalledUpParams{MatchID: matchID, PlayerID: playerID})
		if err != nil {
			return fmt.Errorf("check call-up: %w", err)
		}
		if calledUp {
			return ErrAlreadyCalledUp
		}

		if err := txdb.Queries.CreateCallUp(ctx, dbgen.CreateCallUpParams{MatchID: matchID, PlayerID: playerID}); err != nil {
			return fmt.Errorf("create call-up: %w", err)
		}
		logger.Info().Msg("Player called up")
		return nil
	})
}

// RemoveCallUp drops the player from the match together with their periods.
// It is refused while a substitution references the player.
func (e *Engine) RemoveCallUp(ctx context.Context, matchID, playerID int64) error {
	logger := matchLogger(ctx, matchID).With().Int64("player_id", playerID).Logger()

	return e.db.RetryTx(ctx, func(txdb *db.DB) error {
		if _, err := loadMatch(ctx, txdb.Queries, matchID); err != nil {
			return err
		}
		if err := removeCallUp(ctx, txdb.Queries, matchID, playerID); err != nil {
			return err
		}
		logger.Info().Msg("Call-up removed")
		return nil
	})
}

// ReplaceCallUps makes the match's call-up list exactly playerIDs.
func (e *Engine) ReplaceCallUps(ctx context.Context, matchID int64, playerIDs []int64) error {
	logger := matchLogger(ctx, matchID)

	return e.db.RetryTx(ctx, func(txdb *db.DB) error {
		match, err := loadMatch(ctx, txdb.Queries, matchID)
		if err != nil {
			return err
		}

		wanted := make(map[int64]bool, len(playerIDs))
		for _, playerID := range playerIDs {
			if wanted[playerID] {
				return fmt.Errorf("player %d: %w", playerID, ErrAlreadyCalledUp)
			}
			if err := requireTeamPlayer(ctx, txdb.Queries, match, playerID); err != nil {
				return err
			}
			wanted[playerID] = true
		}

		current, err := txdb.Queries.ListMatchCallUps(ctx, matchID)
		if err != nil {
			return fmt.Errorf("list call-ups: %w", err)
		}

		removed := 0
		for _, row := range current {
			if wanted[row.PlayerID] {
				delete(wanted, row.PlayerID)
				continue
			}
			if err := removeCallUp(ctx, txdb.Queries, matchID, row.PlayerID); err != nil {
				return err
			}
			removed++
		}

		for _, playerID := range playerIDs {
			if !wanted[playerID] {
				continue
			}
			if err := txdb.Queries.CreateCallUp(ctx, dbgen.CreateCallUpParams{MatchID: matchID, PlayerID: playerID}); err != nil {
				return fmt.Errorf("create call-up for player %d: %w", playerID, err)
			}
		}

		logger.Info().
			Int("added", len(wanted)).
			Int("removed", removed).
			Msg("Call-ups replaced")
		return nil
	})
}

func removeCallUp(ctx context.Context, q *dbgen.Queries, matchID, playerID int64) error {
	subs, err := q.CountSubstitutionsForPlayer(ctx, dbgen.CountSubstitutionsForPlayerParams{
		MatchID:  matchID,
		PlayerID: playerID,
	})
	if err != nil {
		return fmt.Errorf("count substitutions: %w", err)
	}
	if subs > 0 {
		return fmt.Errorf("player %d: %w", playerID, ErrCallUpInUse)
	}

	goals, err := q.CountGoalsForPlayer(ctx, dbgen.CountGoalsForPlayerParams{
		MatchID:  matchID,
		PlayerID: playerID,
	})
	if err != nil {
		return fmt.Errorf("count goals: %w", err)
	}
	if goals > 0 {
		return fmt.Errorf("player %d: %w", playerID, ErrCallUpHasGoals)
	}

	if err := q.DeletePlayerPeriodsForMatch(ctx, dbgen.DeletePlayerPeriodsForMatchParams{
		MatchID:  matchID,
		PlayerID: playerID,
	}); err != nil {
		return fmt.Errorf("delete periods: %w", err)
	}

	rows, err := q.DeleteCallUp(ctx, dbgen.DeleteCallUpParams{MatchID: matchID, PlayerID: playerID})
	if err != nil {
		return fmt.Errorf("delete call-up: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("player %d: %w", playerID, ErrNotCalledUp)
	}
	return nil
}

func requireTeamPlayer(ctx context.Context, q *dbgen.Queries, match dbgen.Match, playerID int64) error {
	player, err := q.GetPlayer(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("player %d: %w", playerID, ErrPlayerNotFound)
	}
	if err != nil {
		return fmt.Errorf("load player %d: %w", playerID, err)
	}
	if player.TeamID != match.TeamID {
		return fmt.Errorf("player %d: %w", playerID, ErrPlayerNotOnTeam)
	}
	return nil
}
