package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/bridgeos/bridgeos/internal/domain"
)

// AutoMigrateAll creates/updates every table's columns via gorm. It does
// NOT create the partial unique indexes that carry BridgeOS's hard
// invariants — gorm struct tags cannot express a WHERE clause, so those
// live in EnsurePartialIndexes below, mirroring the teacher's own split
// between AutoMigrateAll and EnsureAuthIndexes.
func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&domain.User{},
		&domain.Manager{},
		&domain.Worker{},
		&domain.Connection{},
		&domain.Message{},
		&domain.Task{},
		&domain.Subscription{},
		&domain.UsageTracking{},
		&domain.Feedback{},
		&domain.WebhookEvent{},
	)
}

// EnsurePartialIndexes creates the partial unique indexes that enforce
// spec §3's hard invariants (P1) and the Manager.code uniqueness rule.
// The store is the ONLY place a unique-constraint violation is produced;
// Connection Manager/invite writes translate it via pkg/errors' pgmap.
func EnsurePartialIndexes(gdb *gorm.DB) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s
			ON connection (manager_id, bot_slot)
			WHERE status = 'active';
		`, "idx_connection_manager_slot_active"),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s
			ON connection (worker_id)
			WHERE status = 'active';
		`, "idx_connection_worker_active"),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s
			ON manager (code)
			WHERE deleted_at IS NULL;
		`, "idx_manager_code_active"),
		`CREATE INDEX IF NOT EXISTS idx_connection_worker_id ON connection (worker_id);`,
		`CREATE INDEX IF NOT EXISTS idx_connection_manager_id ON connection (manager_id);`,
	}
	for _, stmt := range stmts {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure partial index: %w", err)
		}
	}
	return nil
}

// EnsureForeignKeys adds the FK constraints AutoMigrate skipped
// (DisableForeignKeyConstraintWhenMigrating, matching the teacher's
// postgres.go) — kept separate so schema evolution never blocks on
// historical rows that predate a constraint.
func EnsureForeignKeys(gdb *gorm.DB) error {
	fks := []struct{ name, table, stmt string }{
		{"fk_manager_user", "manager", `ALTER TABLE manager ADD CONSTRAINT fk_manager_user FOREIGN KEY (manager_id) REFERENCES bridge_user(user_id);`},
		{"fk_worker_user", "worker", `ALTER TABLE worker ADD CONSTRAINT fk_worker_user FOREIGN KEY (worker_id) REFERENCES bridge_user(user_id);`},
		{"fk_connection_manager", "connection", `ALTER TABLE connection ADD CONSTRAINT fk_connection_manager FOREIGN KEY (manager_id) REFERENCES manager(manager_id);`},
		{"fk_connection_worker", "connection", `ALTER TABLE connection ADD CONSTRAINT fk_connection_worker FOREIGN KEY (worker_id) REFERENCES worker(worker_id);`},
		{"fk_message_connection", "message", `ALTER TABLE message ADD CONSTRAINT fk_message_connection FOREIGN KEY (connection_id) REFERENCES connection(connection_id);`},
		{"fk_task_connection", "task", `ALTER TABLE task ADD CONSTRAINT fk_task_connection FOREIGN KEY (connection_id) REFERENCES connection(connection_id);`},
		{"fk_subscription_manager", "subscription", `ALTER TABLE subscription ADD CONSTRAINT fk_subscription_manager FOREIGN KEY (manager_id) REFERENCES manager(manager_id);`},
		{"fk_usage_manager", "usage_tracking", `ALTER TABLE usage_tracking ADD CONSTRAINT fk_usage_manager FOREIGN KEY (manager_id) REFERENCES manager(manager_id);`},
		{"fk_feedback_user", "feedback", `ALTER TABLE feedback ADD CONSTRAINT fk_feedback_user FOREIGN KEY (user_id) REFERENCES bridge_user(user_id);`},
	}
	for _, fk := range fks {
		// Postgres has no "ADD CONSTRAINT IF NOT EXISTS"; guard via a DO
		// block that checks pg_constraint before issuing the ALTER.
		stmt := fmt.Sprintf(`
			DO $$
			BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = %s) THEN
					%s
				END IF;
			END
			$$;
		`, quoteLiteral(fk.name), fk.stmt)
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure foreign key %s: %w", fk.name, err)
		}
	}
	return nil
}

func quoteLiteral(s string) string {
	return "'" + s + "'"
}
