// cmd/dbtools/clubctl/admin.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/Sideline/internal/api/auth"
	"github.com/codr1/Sideline/internal/api/authz"
	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

const (
	adminPasswordEnv  = "CLUBCTL_ADMIN_PASSWORD"
	minPasswordLength = 10
	bootstrapTimeout  = 30 * time.Second
)

var (
	adminEmail string
	adminName  string
)

var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin",
	Short: "Create or promote a super admin with a local password",
	Long: `bootstrap-admin creates a super_admin profile for --email, or promotes the
existing profile, and sets its password. The password is read from
` + adminPasswordEnv + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), bootstrapTimeout)
		defer cancel()

		profile, created, err := bootstrapAdmin(ctx, database, adminEmail, adminName, os.Getenv(adminPasswordEnv))
		if err != nil {
			return err
		}
		action := "promoted"
		if created {
			action = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Super admin %s %s (id %d)\n", profile.Email, action, profile.ID)
		return nil
	},
}

func init() {
	bootstrapAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email address")
	bootstrapAdminCmd.Flags().StringVar(&adminName, "name", "", "Display name for a new profile")
	_ = bootstrapAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(bootstrapAdminCmd)
}

// bootstrapAdmin upserts a super_admin profile and sets its password in one transaction.
func bootstrapAdmin(ctx context.Context, database *db.DB, email, name, password string) (dbgen.Profile, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return dbgen.Profile{}, false, fmt.Errorf("a valid --email is required")
	}
	if len(password) < minPasswordLength {
		return dbgen.Profile{}, false, fmt.Errorf("%s must be at least %d characters", adminPasswordEnv, minPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return dbgen.Profile{}, false, fmt.Errorf("hash password: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}

	var (
		profile dbgen.Profile
		created bool
	)
	err = database.RunInTx(ctx, func(tx *db.DB) error {
		existing, err := tx.Queries.GetProfileByEmail(ctx, email)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			existing, err = tx.Queries.CreateProfile(ctx, dbgen.CreateProfileParams{
				Email:       email,
				DisplayName: strings.TrimSpace(name),
				Role:        string(authz.RoleSuperAdmin),
			})
			if err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("load profile: %w", err)
		default:
			if err := tx.Queries.UpdateProfileRole(ctx, dbgen.UpdateProfileRoleParams{
				Role: string(authz.RoleSuperAdmin),
				ID:   existing.ID,
			}); err != nil {
				return fmt.Errorf("promote profile: %w", err)
			}
		}

		if err := tx.Queries.UpdateProfilePassword(ctx, dbgen.UpdateProfilePasswordParams{
			PasswordHash: sql.NullString{String: hash, Valid: true},
			ID:           existing.ID,
		}); err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		profile, err = tx.Queries.GetProfileByID(ctx, existing.ID)
		return err
	})
	if err != nil {
		return dbgen.Profile{}, false, err
	}

	log.Info().Int64("profile_id", profile.ID).Bool("created", created).Msg("Super admin bootstrapped")
	return profile, created, nil
}
