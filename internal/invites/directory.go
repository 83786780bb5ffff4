package invites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

// Account is the identity an invite is issued to.
type Account struct {
	ProfileID   int64
	Email       string
	DisplayName string
}

// Directory looks up and provisions accounts by email.
type Directory interface {
	FindAccount(ctx context.Context, email string) (Account, bool, error)
	CreateAccount(ctx context.Context, email, displayName string) (Account, error)
	DeleteAccount(ctx context.Context, account Account) error
}

// LocalDirectory keeps accounts in the profiles table only.
type LocalDirectory struct {
	db *db.DB
}

func NewLocalDirectory(database *db.DB) *LocalDirectory {
	return &LocalDirectory{db: database}
}

func (d *LocalDirectory) FindAccount(ctx context.Context, email string) (Account, bool, error) {
	profile, err := d.db.Queries.GetProfileByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, fmt.Errorf("get profile by email: %w", err)
	}
	return accountFromProfile(profile), true, nil
}

// CreateAccount inserts a player profile. The invited role is applied on acceptance.
func (d *LocalDirectory) CreateAccount(ctx context.Context, email, displayName string) (Account, error) {
	profile, err := d.db.Queries.CreateProfile(ctx, dbgen.CreateProfileParams{
		Email:       strings.ToLower(email),
		DisplayName: displayName,
		Role:        "player",
	})
	if err != nil {
		return Account{}, fmt.Errorf("create profile: %w", err)
	}
	return accountFromProfile(profile), nil
}

func (d *LocalDirectory) DeleteAccount(ctx context.Context, account Account) error {
	if err := d.db.Queries.DeleteProfile(ctx, account.ProfileID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func accountFromProfile(p dbgen.Profile) Account {
	return Account{ProfileID: p.ID, Email: p.Email, DisplayName: p.DisplayName}
}

// UserPool is the subset of the Cognito admin API the mirrored directory needs.
type UserPool interface {
	UserExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, email, displayName string) error
	DeleteUser(ctx context.Context, email string) error
}

// PoolDirectory mirrors accounts into a user pool before writing the local profile.
type PoolDirectory struct {
	local *LocalDirectory
	pool  UserPool
}

func NewPoolDirectory(local *LocalDirectory, pool UserPool) *PoolDirectory {
	return &PoolDirectory{local: local, pool: pool}
}

func (d *PoolDirectory) FindAccount(ctx context.Context, email string) (Account, bool, error) {
	return d.local.FindAccount(ctx, email)
}

func (d *PoolDirectory) CreateAccount(ctx context.Context, email, displayName string) (Account, error) {
	logger := log.Ctx(ctx)

	exists, err := d.pool.UserExists(ctx, email)
	if err != nil {
		return Account{}, fmt.Errorf("look up pool user: %w", err)
	}
	createdRemote := false
	if !exists {
		if err := d.pool.CreateUser(ctx, email, displayName); err != nil {
			return Account{}, fmt.Errorf("create pool user: %w", err)
		}
		createdRemote = true
	}

	account, err := d.local.CreateAccount(ctx, email, displayName)
	if err != nil {
		if createdRemote {
			if delErr := d.pool.DeleteUser(ctx, email); delErr != nil {
				logger.Error().Err(delErr).Str("email", email).Msg("Failed to remove pool user after profile insert failed")
			}
		}
		return Account{}, err
	}
	return account, nil
}

func (d *PoolDirectory) DeleteAccount(ctx context.Context, account Account) error {
	if err := d.local.DeleteAccount(ctx, account); err != nil {
		return err
	}
	if err := d.pool.DeleteUser(ctx, account.Email); err != nil {
		return fmt.Errorf("delete pool user: %w", err)
	}
	return nil
}
