package dbgen

import (
	"context"
	"time"
)

const teamColumns = `id, name, category, season, created_at, updated_at`

func scanTeam(row rowScanner) (Team, error) {
	var i Team
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Category,
		&i.Season,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTeam = `-- name: CreateTeam :one
INSERT INTO teams (name, category, season)
VALUES (?, ?, ?)
RETURNING ` + teamColumns

type CreateTeamParams struct {
	Name     string
	Category string
	Season   string
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, createTeam, arg.Name, arg.Category, arg.Season)
	return scanTeam(row)
}

const getTeam = `-- name: GetTeam :one
SELECT ` + teamColumns + ` FROM teams WHERE id = ?`

func (q *Queries) GetTeam(ctx context.Context, id int64) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	return scanTeam(row)
}

const teamExists = `-- name: TeamExists :one
SELECT EXISTS(SELECT 1 FROM teams WHERE id = ?)`

func (q *Queries) TeamExists(ctx context.Context, id int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, teamExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listTeams = `-- name: ListTeams :many
SELECT ` + teamColumns + ` FROM teams ORDER BY name`

func (q *Queries) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, listTeams)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTeam)
}

const listTeamsForProfile = `-- name: ListTeamsForProfile :many
SELECT t.id, t.name, t.category, t.season, t.created_at, t.updated_at
FROM teams t
JOIN team_memberships tm ON tm.team_id = t.id
WHERE tm.profile_id = ?
ORDER BY t.name`

func (q *Queries) ListTeamsForProfile(ctx context.Context, profileID int64) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, listTeamsForProfile, profileID)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTeam)
}

const updateTeam = `-- name: UpdateTeam :one
UPDATE teams SET name = ?, category = ?, season = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + teamColumns

type UpdateTeamParams struct {
	Name     string
	Category string
	Season   string
	ID       int64
}

func (q *Queries) UpdateTeam(ctx context.Context, arg UpdateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, updateTeam, arg.Name, arg.Category, arg.Season, arg.ID)
	return scanTeam(row)
}

const deleteTeam = `-- name: DeleteTeam :execrows
DELETE FROM teams WHERE id = ?`

func (q *Queries) DeleteTeam(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTeam, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const addTeamMembership = `-- name: AddTeamMembership :exec
INSERT INTO team_memberships (team_id, profile_id) VALUES (?, ?)
ON CONFLICT (team_id, profile_id) DO NOTHING`

type AddTeamMembershipParams struct {
	TeamID    int64
	ProfileID int64
}

func (q *Queries) AddTeamMembership(ctx context.Context, arg AddTeamMembershipParams) error {
	_, err := q.db.ExecContext(ctx, addTeamMembership, arg.TeamID, arg.ProfileID)
	return err
}

const removeTeamMembership = `-- name: RemoveTeamMembership :execrows
DELETE FROM team_memberships WHERE team_id = ? AND profile_id = ?`

type RemoveTeamMembershipParams struct {
	TeamID    int64
	ProfileID int64
}

func (q *Queries) RemoveTeamMembership(ctx context.Context, arg RemoveTeamMembershipParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, removeTeamMembership, arg.TeamID, arg.ProfileID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTeamIDsForProfile = `-- name: ListTeamIDsForProfile :many
SELECT team_id FROM team_memberships WHERE profile_id = ? ORDER BY team_id`

func (q *Queries) ListTeamIDsForProfile(ctx context.Context, profileID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listTeamIDsForProfile, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var teamID int64
		if err := rows.Scan(&teamID); err != nil {
			return nil, err
		}
		items = append(items, teamID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTeamMembers = `-- name: ListTeamMembers :many
SELECT p.id, p.email, p.display_name, p.role, tm.created_at
FROM team_memberships tm
JOIN profiles p ON p.id = tm.profile_id
WHERE tm.team_id = ?
ORDER BY p.role, p.display_name`

type ListTeamMembersRow struct {
	ProfileID   int64     `json:"profile_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

func (q *Queries) ListTeamMembers(ctx context.Context, teamID int64) ([]ListTeamMembersRow, error) {
	rows, err := q.db.QueryContext(ctx, listTeamMembers, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListTeamMembersRow
	for rows.Next() {
		var i ListTeamMembersRow
		if err := rows.Scan(&i.ProfileID, &i.Email, &i.DisplayName, &i.Role, &i.JoinedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
