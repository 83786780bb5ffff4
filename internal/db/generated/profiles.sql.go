package dbgen

import (
	"context"
	"database/sql"
)

const profileColumns = `id, email, display_name, role, password_hash, phone, created_at, updated_at`

func scanProfile(row rowScanner) (Profile, error) {
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.DisplayName,
		&i.Role,
		&i.PasswordHash,
		&i.Phone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createProfile = `-- name: CreateProfile :one
INSERT INTO profiles (email, display_name, role, phone)
VALUES (?, ?, ?, ?)
RETURNING ` + profileColumns

type CreateProfileParams struct {
	Email       string
	DisplayName string
	Role        string
	Phone       sql.NullString
}

func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) (Profile, error) {
	row := q.db.QueryRowContext(ctx, createProfile, arg.Email, arg.DisplayName, arg.Role, arg.Phone)
	return scanProfile(row)
}

const getProfileByID = `-- name: GetProfileByID :one
SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`

func (q *Queries) GetProfileByID(ctx context.Context, id int64) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfileByID, id)
	return scanProfile(row)
}

const getProfileByEmail = `-- name: GetProfileByEmail :one
SELECT ` + profileColumns + ` FROM profiles WHERE email = lower(?)`

func (q *Queries) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfileByEmail, email)
	return scanProfile(row)
}

const listProfiles = `-- name: ListProfiles :many
SELECT ` + profileColumns + ` FROM profiles ORDER BY display_name, email`

func (q *Queries) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := q.db.QueryContext(ctx, listProfiles)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanProfile)
}

const updateProfileRole = `-- name: UpdateProfileRole :exec
UPDATE profiles SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

type UpdateProfileRoleParams struct {
	Role string
	ID   int64
}

func (q *Queries) UpdateProfileRole(ctx context.Context, arg UpdateProfileRoleParams) error {
	_, err := q.db.ExecContext(ctx, updateProfileRole, arg.Role, arg.ID)
	return err
}

const updateProfilePassword = `-- name: UpdateProfilePassword :exec
UPDATE profiles SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

type UpdateProfilePasswordParams struct {
	PasswordHash sql.NullString
	ID           int64
}

func (q *Queries) UpdateProfilePassword(ctx context.Context, arg UpdateProfilePasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateProfilePassword, arg.PasswordHash, arg.ID)
	return err
}

const updateProfileDisplayName = `-- name: UpdateProfileDisplayName :exec
UPDATE profiles SET display_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

type UpdateProfileDisplayNameParams struct {
	DisplayName string
	ID          int64
}

func (q *Queries) UpdateProfileDisplayName(ctx context.Context, arg UpdateProfileDisplayNameParams) error {
	_, err := q.db.ExecContext(ctx, updateProfileDisplayName, arg.DisplayName, arg.ID)
	return err
}

const deleteProfile = `-- name: DeleteProfile :exec
DELETE FROM profiles WHERE id = ?`

func (q *Queries) DeleteProfile(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteProfile, id)
	return err
}
