// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"linkchain/internal/db"
	"linkchain/internal/models"
)

// TestDB creates a migrated test database connection and returns a cleanup
// function. The test is skipped unless TEST_DATABASE_URL is set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)
	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM conversation_states")
	pool.Exec(ctx, "DELETE FROM active_chains")
	pool.Exec(ctx, "DELETE FROM contributions")
	pool.Exec(ctx, "DELETE FROM group_members")
	pool.Exec(ctx, "DELETE FROM profiles")
}

// CreateTestProfile stores a profile with the given name and links. Empty
// links are left unset.
func CreateTestProfile(t *testing.T, database *db.DB, userID, name, linkedin, instagram string) {
	t.Helper()
	ctx := context.Background()

	if err := database.SetDisplayName(ctx, userID, name); err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	links := map[models.Platform]string{
		models.PlatformLinkedIn:  linkedin,
		models.PlatformInstagram: instagram,
	}
	for platform, link := range links {
		if link == "" {
			continue
		}
		if err := database.SetProfileField(ctx, userID, platform, link); err != nil {
			t.Fatalf("failed to set %s link: %v", platform, err)
		}
	}
}
