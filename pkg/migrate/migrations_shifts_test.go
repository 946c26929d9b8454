package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/careswap-app/careswap-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestShiftsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_shifts.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS shifts",
		"FOREIGN KEY (proposer_id) REFERENCES users(id) ON DELETE CASCADE",
		"CHECK (starts_at IS NULL OR ends_at IS NULL OR starts_at < ends_at)",
		"cancellation_window_hours INTEGER NOT NULL DEFAULT 4",
		"DROP TABLE IF EXISTS shifts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestNotificationsMigrationHasDeterministicIdentity(t *testing.T) {
	content := readMigration(t, "*_create_notifications.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_notifications_user_type_subject",
		"ON notifications (user_id, type, subject_id)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationGuardsOneShotEvents(t *testing.T) {
	content := readMigration(t, "*_create_outbox_events.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_outbox_events_event_aggregate",
		"WHERE event_type IN ('shift_reminder', 'shift_completed')",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
