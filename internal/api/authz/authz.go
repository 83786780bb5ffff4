package authz

import (
	"context"
	"errors"
	"slices"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleCoach      Role = "coach"
	RolePlayer     Role = "player"
)

// Roles lists every role in descending order of privilege.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleCoach, RolePlayer}

// ParseRole accepts the stored lower-case form and the legacy upper-case form.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}

func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// IsStaff is true for coaches and above.
func (r Role) IsStaff() bool {
	return r.IsAdmin() || r == RoleCoach
}

// RequiresTeams reports whether members with this role must belong to a team.
func (r Role) RequiresTeams() bool {
	return r == RoleCoach || r == RolePlayer
}

type AuthUser struct {
	ID          int64
	Email       string
	DisplayName string
	Role        Role
	TeamIDs     []int64
	SessionType string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

func IsStaff(user *AuthUser) bool {
	return user != nil && user.Role.IsStaff()
}

func IsAdmin(user *AuthUser) bool {
	return user != nil && user.Role.IsAdmin()
}

func (u *AuthUser) OnTeam(teamID int64) bool {
	return u != nil && slices.Contains(u.TeamIDs, teamID)
}

func SessionTypeFromContext(ctx context.Context) string {
	user := UserFromContext(ctx)
	if user == nil {
		return ""
	}
	return user.SessionType
}

// RequireRole returns ErrForbidden unless the caller holds one of roles.
func RequireRole(ctx context.Context, roles ...Role) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !slices.Contains(roles, user.Role) {
		return user, ErrForbidden
	}
	return user, nil
}

// RequireTeamAccess allows admins everywhere and everyone else only on their own teams.
func RequireTeamAccess(ctx context.Context, teamID int64) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if user.Role.IsAdmin() || user.OnTeam(teamID) {
		return user, nil
	}
	return user, ErrForbidden
}

// RequireTeamStaff is RequireTeamAccess restricted to coaches and above.
func RequireTeamStaff(ctx context.Context, teamID int64) (*AuthUser, error) {
	user, err := RequireTeamAccess(ctx, teamID)
	if err != nil {
		return user, err
	}
	if !user.Role.IsStaff() {
		return user, ErrForbidden
	}
	return user, nil
}
