package store

import (
	"fmt"
	"strings"
)

// dialect captures the DDL differences between the supported backends. The
// migration statements are written once with placeholder tokens and rendered
// per driver.
type dialect struct {
	// pk is the auto-increment primary key column definition.
	pk string
	// ref is an integer type wide enough to hold a pk value.
	ref string
	// ts is the timestamp column type.
	ts string
	// boolOn is a boolean column defaulting to true. SQLite and MySQL store
	// booleans as small integers; database/sql converts both back to bool.
	boolOn string
	// vtext is a short string type usable in unique and primary key indexes.
	// MySQL cannot index bare TEXT columns.
	vtext string
	// createIndex is the CREATE INDEX prefix. MySQL has no IF NOT EXISTS for
	// indexes; reruns surface as a duplicate-key-name error that migrate
	// tolerates.
	createIndex string
}

var dialects = map[string]dialect{
	"sqlite": {
		pk:          "INTEGER PRIMARY KEY AUTOINCREMENT",
		ref:         "INTEGER",
		ts:          "DATETIME",
		boolOn:      "INTEGER NOT NULL DEFAULT 1",
		vtext:       "TEXT",
		createIndex: "CREATE INDEX IF NOT EXISTS",
	},
	"postgres": {
		pk:          "BIGSERIAL PRIMARY KEY",
		ref:         "BIGINT",
		ts:          "TIMESTAMPTZ",
		boolOn:      "BOOLEAN NOT NULL DEFAULT TRUE",
		vtext:       "TEXT",
		createIndex: "CREATE INDEX IF NOT EXISTS",
	},
	"mysql": {
		pk:          "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY",
		ref:         "BIGINT",
		ts:          "DATETIME",
		boolOn:      "TINYINT(1) NOT NULL DEFAULT 1",
		vtext:       "VARCHAR(255)",
		createIndex: "CREATE INDEX",
	},
}

// Long-form TEXT columns carry no DDL defaults: MySQL rejects defaults on
// TEXT, and every insert path writes all columns explicitly anyway.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{PK}},
		email {{VTEXT}} UNIQUE NOT NULL,
		password_hash {{VTEXT}} NOT NULL,
		name {{VTEXT}} NOT NULL,
		is_active {{BOOL_ON}},
		last_login_at {{TS}},
		created_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS api_keys (
		id {{PK}},
		key_hash {{VTEXT}} UNIQUE NOT NULL,
		key_prefix {{VTEXT}} NOT NULL,
		label {{VTEXT}} NOT NULL,
		owner_user_id {{REF}},
		is_active {{BOOL_ON}},
		created_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_used_at {{TS}},
		FOREIGN KEY (owner_user_id) REFERENCES users(id)
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id {{PK}},
		name {{VTEXT}} NOT NULL,
		description TEXT NOT NULL,
		status {{VTEXT}} NOT NULL,
		owner_user_id {{REF}} NOT NULL DEFAULT 0,
		created_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id {{PK}},
		project_id {{REF}} NOT NULL,
		title {{VTEXT}} NOT NULL,
		description TEXT NOT NULL,
		status {{VTEXT}} NOT NULL,
		assignee_user_id {{REF}},
		due_at {{TS}},
		created_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id {{PK}},
		task_id {{REF}} NOT NULL,
		author_user_id {{REF}} NOT NULL DEFAULT 0,
		body TEXT NOT NULL,
		created_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS bugs (
		id {{PK}},
		project_id {{REF}} NOT NULL,
		title {{VTEXT}} NOT NULL,
		description TEXT NOT NULL,
		severity {{VTEXT}} NOT NULL,
		status {{VTEXT}} NOT NULL,
		reporter_user_id {{REF}} NOT NULL DEFAULT 0,
		created_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		id {{PK}},
		user_id {{REF}} NOT NULL DEFAULT 0,
		title {{VTEXT}} NOT NULL,
		location {{VTEXT}} NOT NULL,
		starts_at {{TS}} NOT NULL,
		ends_at {{TS}} NOT NULL,
		created_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS meetings (
		id {{PK}},
		project_id {{REF}} NOT NULL,
		title {{VTEXT}} NOT NULL,
		agenda TEXT NOT NULL,
		scheduled_at {{TS}} NOT NULL,
		attendees_json TEXT NOT NULL,
		created_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {{TS}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	)`,

	// KEY is a reserved word in MySQL, hence "name" for the settings key.
	`CREATE TABLE IF NOT EXISTS settings (
		name {{VTEXT}} PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`{{CREATE_INDEX}} idx_api_keys_hash ON api_keys(key_hash)`,
	`{{CREATE_INDEX}} idx_tasks_project ON tasks(project_id)`,
	`{{CREATE_INDEX}} idx_comments_task ON comments(task_id)`,
	`{{CREATE_INDEX}} idx_bugs_project ON bugs(project_id)`,

	// v2: per-task priority was added after the initial release.
	`ALTER TABLE tasks ADD COLUMN priority INTEGER NOT NULL DEFAULT 0`,
}

// render substitutes the dialect's tokens into one migration statement.
func (d dialect) render(stmt string) string {
	return strings.NewReplacer(
		"{{PK}}", d.pk,
		"{{REF}}", d.ref,
		"{{TS}}", d.ts,
		"{{BOOL_ON}}", d.boolOn,
		"{{VTEXT}}", d.vtext,
		"{{CREATE_INDEX}}", d.createIndex,
	).Replace(stmt)
}

func (s *Store) migrate() error {
	d, ok := dialects[s.driver]
	if !ok {
		return fmt.Errorf("no migration dialect for driver %q", s.driver)
	}

	for _, m := range migrations {
		stmt := d.render(m)
		if _, err := s.db.Exec(stmt); err != nil {
			if migrationSatisfied(err) {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

// migrationSatisfied reports whether a migration error means the schema
// change already happened, keeping reruns idempotent. Covers ALTER TABLE
// column reruns on all three backends and CREATE INDEX reruns on MySQL.
func migrationSatisfied(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") ||
		strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate key name")
}
