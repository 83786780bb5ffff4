package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const pendingInviteColumns = `email, display_name, role, team_ids, redirect_to, invited_by, status, expires_at, created_at, updated_at`

func scanPendingInvite(row rowScanner) (PendingInvite, error) {
	var i PendingInvite
	err := row.Scan(
		&i.Email,
		&i.DisplayName,
		&i.Role,
		&i.TeamIds,
		&i.RedirectTo,
		&i.InvitedBy,
		&i.Status,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertPendingInvite = `-- name: UpsertPendingInvite :one
INSERT INTO pending_invites (email, display_name, role, team_ids, redirect_to, invited_by, status, expires_at)
VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)
ON CONFLICT (email) DO UPDATE SET
    display_name = excluded.display_name,
    role = excluded.role,
    team_ids = excluded.team_ids,
    redirect_to = excluded.redirect_to,
    invited_by = excluded.invited_by,
    status = 'pending',
    expires_at = excluded.expires_at,
    updated_at = CURRENT_TIMESTAMP
RETURNING ` + pendingInviteColumns

type UpsertPendingInviteParams struct {
	Email       string
	DisplayName string
	Role        string
	TeamIds     string
	RedirectTo  string
	InvitedBy   sql.NullInt64
	ExpiresAt   time.Time
}

func (q *Queries) UpsertPendingInvite(ctx context.Context, arg UpsertPendingInviteParams) (PendingInvite, error) {
	row := q.db.QueryRowContext(ctx, upsertPendingInvite,
		arg.Email,
		arg.DisplayName,
		arg.Role,
		arg.TeamIds,
		arg.RedirectTo,
		arg.InvitedBy,
		arg.ExpiresAt,
	)
	return scanPendingInvite(row)
}

const getPendingInvite = `-- name: GetPendingInvite :one
SELECT ` + pendingInviteColumns + ` FROM pending_invites WHERE email = lower(?)`

func (q *Queries) GetPendingInvite(ctx context.Context, email string) (PendingInvite, error) {
	row := q.db.QueryRowContext(ctx, getPendingInvite, email)
	return scanPendingInvite(row)
}

const listPendingInvites = `-- name: ListPendingInvites :many
SELECT ` + pendingInviteColumns + ` FROM pending_invites
WHERE status = ?
ORDER BY updated_at DESC`

func (q *Queries) ListPendingInvites(ctx context.Context, status string) ([]PendingInvite, error) {
	rows, err := q.db.QueryContext(ctx, listPendingInvites, status)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanPendingInvite)
}

const markInviteAccepted = `-- name: MarkInviteAccepted :execrows
UPDATE pending_invites SET status = 'accepted', updated_at = CURRENT_TIMESTAMP
WHERE email = ? AND status = 'pending'`

func (q *Queries) MarkInviteAccepted(ctx context.Context, email string) (int64, error) {
	result, err := q.db.ExecContext(ctx, markInviteAccepted, email)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const expirePendingInvites = `-- name: ExpirePendingInvites :execrows
UPDATE pending_invites SET status = 'expired', updated_at = CURRENT_TIMESTAMP
WHERE status = 'pending' AND expires_at < ?`

func (q *Queries) ExpirePendingInvites(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, expirePendingInvites, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createRecoveryToken = `-- name: CreateRecoveryToken :exec
INSERT INTO recovery_tokens (token_hash, profile_id, expires_at) VALUES (?, ?, ?)`

type CreateRecoveryTokenParams struct {
	TokenHash string
	ProfileID int64
	ExpiresAt time.Time
}

func (q *Queries) CreateRecoveryToken(ctx context.Context, arg CreateRecoveryTokenParams) error {
	_, err := q.db.ExecContext(ctx, createRecoveryToken, arg.TokenHash, arg.ProfileID, arg.ExpiresAt)
	return err
}

const getRecoveryToken = `-- name: GetRecoveryToken :one
SELECT token_hash, profile_id, expires_at, used_at, created_at FROM recovery_tokens WHERE token_hash = ?`

func (q *Queries) GetRecoveryToken(ctx context.Context, tokenHash string) (RecoveryToken, error) {
	row := q.db.QueryRowContext(ctx, getRecoveryToken, tokenHash)
	var i RecoveryToken
	err := row.Scan(&i.TokenHash, &i.ProfileID, &i.ExpiresAt, &i.UsedAt, &i.CreatedAt)
	return i, err
}

const markRecoveryTokenUsed = `-- name: MarkRecoveryTokenUsed :execrows
UPDATE recovery_tokens SET used_at = ? WHERE token_hash = ? AND used_at IS NULL`

type MarkRecoveryTokenUsedParams struct {
	UsedAt    time.Time
	TokenHash string
}

func (q *Queries) MarkRecoveryTokenUsed(ctx context.Context, arg MarkRecoveryTokenUsedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markRecoveryTokenUsed, arg.UsedAt, arg.TokenHash)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteStaleRecoveryTokens = `-- name: DeleteStaleRecoveryTokens :execrows
DELETE FROM recovery_tokens WHERE expires_at < ? OR used_at IS NOT NULL`

func (q *Queries) DeleteStaleRecoveryTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteStaleRecoveryTokens, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
