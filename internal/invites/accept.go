package invites

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

const MinPasswordLength = 8

var (
	ErrInvalidToken = errors.New("invalid recovery token")
	ErrTokenUsed    = errors.New("recovery token already used")
	ErrTokenExpired = errors.New("recovery token expired")
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Acceptance describes a redeemed recovery link.
type Acceptance struct {
	Profile        dbgen.Profile
	RedirectTo     string
	InviteAccepted bool
	TeamIDs        []int64
}

// Accept redeems a recovery token, sets the password, and applies any pending invite.
func (s *Service) Accept(ctx context.Context, token, password string) (Acceptance, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Acceptance{}, ErrInvalidToken
	}
	if len(password) < MinPasswordLength {
		return Acceptance{}, ErrWeakPassword
	}

	logger := s.logger(ctx)
	hash := HashToken(token)
	now := s.now().UTC()

	record, err := s.db.Queries.GetRecoveryToken(ctx, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Acceptance{}, ErrInvalidToken
	}
	if err != nil {
		return Acceptance{}, fmt.Errorf("get recovery token: %w", err)
	}
	if record.UsedAt.Valid {
		return Acceptance{}, ErrTokenUsed
	}
	if !record.ExpiresAt.After(now) {
		return Acceptance{}, ErrTokenExpired
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Acceptance{}, fmt.Errorf("hash password: %w", err)
	}

	var accepted Acceptance
	err = s.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries

		rows, err := q.MarkRecoveryTokenUsed(ctx, dbgen.MarkRecoveryTokenUsedParams{UsedAt: now, TokenHash: hash})
		if err != nil {
			return fmt.Errorf("mark token used: %w", err)
		}
		if rows == 0 {
			return ErrTokenUsed
		}

		if err := q.UpdateProfilePassword(ctx, dbgen.UpdateProfilePasswordParams{
			PasswordHash: sql.NullString{String: string(passwordHash), Valid: true},
			ID:           record.ProfileID,
		}); err != nil {
			return fmt.Errorf("update password: %w", err)
		}

		profile, err := q.GetProfileByID(ctx, record.ProfileID)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}

		invite, err := q.GetPendingInvite(ctx, profile.Email)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			accepted = Acceptance{Profile: profile, RedirectTo: s.cfg.DefaultRedirect}
			return nil
		case err != nil:
			return fmt.Errorf("get pending invite: %w", err)
		}
		if invite.Status != "pending" || !invite.ExpiresAt.After(now) {
			accepted = Acceptance{Profile: profile, RedirectTo: s.cfg.DefaultRedirect}
			return nil
		}

		teamIDs, err := applyInvite(ctx, q, profile, invite)
		if err != nil {
			return err
		}
		profile, err = q.GetProfileByID(ctx, profile.ID)
		if err != nil {
			return fmt.Errorf("reload profile: %w", err)
		}

		redirect := invite.RedirectTo
		if redirect == "" {
			redirect = s.cfg.DefaultRedirect
		}
		accepted = Acceptance{Profile: profile, RedirectTo: redirect, InviteAccepted: true, TeamIDs: teamIDs}
		return nil
	})
	if err != nil {
		return Acceptance{}, err
	}

	logger.Info().
		Int64("profile_id", accepted.Profile.ID).
		Bool("invite_accepted", accepted.InviteAccepted).
		Msg("Recovery link redeemed")
	return accepted, nil
}

func applyInvite(ctx context.Context, q *dbgen.Queries, profile dbgen.Profile, invite dbgen.PendingInvite) ([]int64, error) {
	var teamIDs []int64
	if err := json.Unmarshal([]byte(invite.TeamIds), &teamIDs); err != nil {
		return nil, fmt.Errorf("decode invite teams: %w", err)
	}

	if err := q.UpdateProfileRole(ctx, dbgen.UpdateProfileRoleParams{Role: invite.Role, ID: profile.ID}); err != nil {
		return nil, fmt.Errorf("apply invite role: %w", err)
	}
	if invite.DisplayName != "" && profile.DisplayName == "" {
		if err := q.UpdateProfileDisplayName(ctx, dbgen.UpdateProfileDisplayNameParams{DisplayName: invite.DisplayName, ID: profile.ID}); err != nil {
			return nil, fmt.Errorf("apply invite display name: %w", err)
		}
	}

	applied := make([]int64, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		// Teams deleted after the invite was issued are skipped.
		exists, err := q.TeamExists(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("check invite team: %w", err)
		}
		if !exists {
			continue
		}
		if err := q.AddTeamMembership(ctx, dbgen.AddTeamMembershipParams{TeamID: teamID, ProfileID: profile.ID}); err != nil {
			return nil, fmt.Errorf("add team membership: %w", err)
		}
		applied = append(applied, teamID)
	}

	if _, err := q.MarkInviteAccepted(ctx, invite.Email); err != nil {
		return nil, fmt.Errorf("mark invite accepted: %w", err)
	}
	return applied, nil
}

type CleanupResult struct {
	ExpiredInvites int64
	DeletedTokens  int64
}

// Cleanup expires overdue invites and drops used or expired recovery tokens.
func (s *Service) Cleanup(ctx context.Context) (CleanupResult, error) {
	now := s.now().UTC()

	expired, err := s.db.Queries.ExpirePendingInvites(ctx, now)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("expire invites: %w", err)
	}
	deleted, err := s.db.Queries.DeleteStaleRecoveryTokens(ctx, now)
	if err != nil {
		return CleanupResult{ExpiredInvites: expired}, fmt.Errorf("delete stale tokens: %w", err)
	}
	return CleanupResult{ExpiredInvites: expired, DeletedTokens: deleted}, nil
}

func nullInt64(v int64) sql.NullInt64 {
	if v <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
