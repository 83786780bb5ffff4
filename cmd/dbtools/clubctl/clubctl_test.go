package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/Sideline/internal/api/auth"
	"github.com/codr1/Sideline/internal/config"
	"github.com/codr1/Sideline/internal/testutil"
)

func TestBootstrapAdminCreatesProfile(t *testing.T) {
	database := testutil.NewTestDB(t)

	profile, created, err := bootstrapAdmin(context.Background(), database, " Root@Club.test ", "Root", "long enough secret")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "root@club.test", profile.Email)
	assert.Equal(t, "super_admin", profile.Role)
	require.True(t, profile.PasswordHash.Valid)
	assert.True(t, auth.VerifyPassword(profile.PasswordHash.String, "long enough secret"))
}

func TestBootstrapAdminPromotesExistingProfile(t *testing.T) {
	database := testutil.NewTestDB(t)
	coach := testutil.SeedProfile(t, database, "coach@club.test", "coach")

	profile, created, err := bootstrapAdmin(context.Background(), database, "coach@club.test", "", "another long secret")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, coach.ID, profile.ID)
	assert.Equal(t, "super_admin", profile.Role)
}

func TestBootstrapAdminRejectsBadInput(t *testing.T) {
	database := testutil.NewTestDB(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "missing email", email: "", password: "long enough secret"},
		{name: "malformed email", email: "root", password: "long enough secret"},
		{name: "short password", email: "root@club.test", password: "short"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := bootstrapAdmin(context.Background(), database, tc.email, "", tc.password)
			assert.Error(t, err)
		})
	}
}

func TestFileMigrator(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Filename = filepath.Join(t.TempDir(), "club.db")

	m, err := newMigrator(cfg, filepath.Join("..", "..", "..", "internal", "db", "migrations"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	_, _, err = m.Version()
	assert.ErrorIs(t, err, migrate.ErrNilVersion)

	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	require.NoError(t, m.Steps(-1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	_, err = newMigrator(&config.Config{Database: config.DatabaseConfig{Driver: "turso"}}, "migrations")
	assert.Error(t, err)
}
