package matches

import (
	"context"
	"fmt"

	db "github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/stats"
)

type SubstitutionInput struct {
	Period      int64 `json:"period"`
	PlayerOutID int64 `json:"playerOutId"`
	PlayerInID  int64 `json:"playerInId"`
}

func (e *Engine) ListSubstitutions(ctx context.Context, matchID int64) ([]dbgen.MatchSubstitution, error) {
	if _, err := loadMatch(ctx, e.db.Queries, matchID); err != nil {
		return nil, err
	}
	subs, err := e.db.Queries.ListSubstitutions(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list substitutions: %w", err)
	}
	return subs, nil
}

// ApplySubstitution swaps two called-up players within a period. The outgoing
// player's full period becomes half, the incoming player gets a half period
// and the substitution is stored, all in one transaction.
func (e *Engine) ApplySubstitution(ctx context.Context, matchID int64, in SubstitutionInput) (dbgen.MatchSubstitution, error) {
	logger := matchLogger(ctx, matchID).With().
		Int64("period", in.Period).
		Int64("player_out_id", in.PlayerOutID).
		Int64("player_in_id", in.PlayerInID).
		Logger()

	if !validPeriod(in.Period) {
		e.observe(SubstitutionRefused)
		return dbgen.MatchSubstitution{}, ErrInvalidPeriod
	}
	if in.PlayerOutID == in.PlayerInID {
		e.observe(SubstitutionRefused)
		return dbgen.MatchSubstitution{}, ErrSamePlayer
	}

	var sub dbgen.MatchSubstitution
	err := e.db.RetryTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		if _, err := loadMatch(ctx, q, matchID); err != nil {
			return err
		}
		for _, playerID := range []int64{in.PlayerOutID, in.PlayerInID} {
			if err := requireCalledUp(ctx, q, matchID, playerID); err != nil {
				return err
			}
			count, err := q.CountSubstitutionsInPeriod(ctx, dbgen.CountSubstitutionsInPeriodParams{
				MatchID:  matchID,
				Period:   in.Period,
				PlayerID: playerID,
			})
			if err != nil {
				return fmt.Errorf("count substitutions: %w", err)
			}
			if count > 0 {
				return fmt.Errorf("player %d: %w", playerID, ErrAlreadySubstituted)
			}
		}

		out, err := q.GetPlayerPeriod(ctx, dbgen.GetPlayerPeriodParams{
			MatchID:  matchID,
			PlayerID: in.PlayerOutID,
			Period:   in.Period,
		})
		if isNoRows(err) {
			return ErrOutNotOnField
		}
		if err != nil {
			return fmt.Errorf("load outgoing period: %w", err)
		}
		// Undo restores a full period, so only a full period can be split.
		if out.Fraction != stats.FractionFull {
			return ErrOutNotFullPeriod
		}

		_, err = q.GetPlayerPeriod(ctx, dbgen.GetPlayerPeriodParams{
			MatchID:  matchID,
			PlayerID: in.PlayerInID,
			Period:   in.Period,
		})
		if err == nil {
			return ErrInAlreadyOnField
		}
		if !isNoRows(err) {
			return fmt.Errorf("load incoming period: %w", err)
		}

		if _, err := q.UpdatePlayerPeriodFraction(ctx, dbgen.UpdatePlayerPeriodFractionParams{
			Fraction: stats.FractionHalf,
			MatchID:  matchID,
			PlayerID: in.PlayerOutID,
			Period:   in.Period,
		}); err != nil {
			return fmt.Errorf("halve outgoing period: %w", err)
		}
		if err := q.InsertPlayerPeriod(ctx, dbgen.InsertPlayerPeriodParams{
			MatchID:  matchID,
			PlayerID: in.PlayerInID,
			Period:   in.Period,
			Fraction: stats.FractionHalf,
		}); err != nil {
			return fmt.Errorf("insert incoming period: %w", err)
		}

		created, err := q.CreateSubstitution(ctx, dbgen.CreateSubstitutionParams{
			MatchID:     matchID,
			Period:      in.Period,
			PlayerOutID: in.PlayerOutID,
			PlayerInID:  in.PlayerInID,
		})
		if err != nil {
			return fmt.Errorf("create substitution: %w", err)
		}
		sub = created
		return nil
	})
	if err != nil {
		e.observe(SubstitutionRefused)
		logger.Warn().Err(err).Msg("Substitution refused")
		return dbgen.MatchSubstitution{}, err
	}

	e.observe(SubstitutionApplied)
	logger.Info().Int64("substitution_id", sub.ID).Msg("Substitution applied")
	return sub, nil
}

// RemoveSubstitution undoes ApplySubstitution: the outgoing player is back to
// a full period and the incoming player's half period is removed.
func (e *Engine) RemoveSubstitution(ctx context.Context, matchID, substitutionID int64) error {
	logger := matchLogger(ctx, matchID).With().Int64("substitution_id", substitutionID).Logger()

	err := e.db.RetryTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		sub, err := q.GetSubstitution(ctx, substitutionID)
		if isNoRows(err) {
			return ErrSubstitutionNotFound
		}
		if err != nil {
			return fmt.Errorf("load substitution: %w", err)
		}
		if sub.MatchID != matchID {
			return ErrSubstitutionNotFound
		}

		if _, err := q.DeleteSubstitution(ctx, sub.ID); err != nil {
			return fmt.Errorf("delete substitution: %w", err)
		}
		if _, err := q.UpdatePlayerPeriodFraction(ctx, dbgen.UpdatePlayerPeriodFractionParams{
			Fraction: stats.FractionFull,
			MatchID:  matchID,
			PlayerID: sub.PlayerOutID,
			Period:   sub.Period,
		}); err != nil {
			return fmt.Errorf("restore outgoing period: %w", err)
		}
		if _, err := q.DeletePlayerPeriod(ctx, dbgen.DeletePlayerPeriodParams{
			MatchID:  matchID,
			PlayerID: sub.PlayerInID,
			Period:   sub.Period,
		}); err != nil {
			return fmt.Errorf("delete incoming period: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.observe(SubstitutionRemoved)
	logger.Info().Msg("Substitution removed")
	return nil
}
