package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

func SeedProfile(t *testing.T, database *db.DB, email, role string) dbgen.Profile {
	t.Helper()

	profile, err := database.Queries.CreateProfile(context.Background(), dbgen.CreateProfileParams{
		Email:       email,
		DisplayName: email,
		Role:        role,
	})
	if err != nil {
		t.Fatalf("seed profile %s: %v", email, err)
	}
	return profile
}

func SeedTeam(t *testing.T, database *db.DB, name string) dbgen.Team {
	t.Helper()

	team, err := database.Queries.CreateTeam(context.Background(), dbgen.CreateTeamParams{
		Name:     name,
		Category: "U12",
		Season:   "2026",
	})
	if err != nil {
		t.Fatalf("seed team %s: %v", name, err)
	}
	return team
}

func SeedMembership(t *testing.T, database *db.DB, teamID, profileID int64) {
	t.Helper()

	if err := database.Queries.AddTeamMembership(context.Background(), dbgen.AddTeamMembershipParams{
		TeamID:    teamID,
		ProfileID: profileID,
	}); err != nil {
		t.Fatalf("seed membership team=%d profile=%d: %v", teamID, profileID, err)
	}
}

func SeedPlayer(t *testing.T, database *db.DB, teamID int64, firstName string, jersey int64) dbgen.Player {
	t.Helper()

	player, err := database.Queries.CreatePlayer(context.Background(), dbgen.CreatePlayerParams{
		TeamID:       teamID,
		FirstName:    firstName,
		LastName:     "Test",
		JerseyNumber: sql.NullInt64{Int64: jersey, Valid: true},
		Active:       true,
	})
	if err != nil {
		t.Fatalf("seed player %s: %v", firstName, err)
	}
	return player
}

func SeedMatch(t *testing.T, database *db.DB, teamID int64, opponent string, at time.Time) dbgen.Match {
	t.Helper()

	match, err := database.Queries.CreateMatch(context.Background(), dbgen.CreateMatchParams{
		TeamID:    teamID,
		Opponent:  opponent,
		MatchDate: at,
		IsHome:    true,
	})
	if err != nil {
		t.Fatalf("seed match vs %s: %v", opponent, err)
	}
	return match
}

func SeedCallUp(t *testing.T, database *db.DB, matchID, playerID int64) {
	t.Helper()

	if err := database.Queries.CreateCallUp(context.Background(), dbgen.CreateCallUpParams{
		MatchID:  matchID,
		PlayerID: playerID,
	}); err != nil {
		t.Fatalf("seed call-up match=%d player=%d: %v", matchID, playerID, err)
	}
}
