// cmd/dbtools/clubctl/migrate.go
package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/Sideline/internal/config"
	"github.com/codr1/Sideline/internal/db"
)

var (
	migrationsDir string
	downSteps     int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply, roll back or inspect schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration up failed: %w", err)
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (one step by default, --steps 0 for all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if downSteps < 0 {
			return fmt.Errorf("--steps must not be negative")
		}
		return withMigrator(func(m *migrate.Migrate) error {
			var err error
			if downSteps == 0 {
				err = m.Down()
			} else {
				err = m.Steps(-downSteps)
			}
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration down failed: %w", err)
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			return printVersion(cmd, m)
		})
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "migrations", "", "Read migrations from this directory instead of the embedded set (sqlite only)")
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withMigrator(fn func(*migrate.Migrate) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := newMigrator(cfg, migrationsDir)
	if err != nil {
		return err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migrator")
		}
	}()
	return fn(m)
}

// newMigrator uses the embedded migrations unless dir names a migrations directory.
func newMigrator(cfg *config.Config, dir string) (*migrate.Migrate, error) {
	if dir == "" {
		sqlDB, err := db.OpenFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		m, err := db.NewMigrator(sqlDB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		return m, nil
	}

	if cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("--migrations requires the sqlite driver, got %q", cfg.Database.Driver)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid migrations path: %w", err)
	}
	absDB, err := filepath.Abs(cfg.Database.Filename)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	m, err := migrate.New("file://"+absDir, "sqlite3://"+absDB+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("migration init failed: %w", err)
	}
	return m, nil
}

func printVersion(cmd *cobra.Command, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "Version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get version failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Version: %d, Dirty: %v\n", version, dirty)
	return nil
}
