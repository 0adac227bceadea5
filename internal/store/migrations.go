package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL,
	role       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS project_members (
	project_id TEXT NOT NULL REFERENCES projects(id),
	user_id    TEXT NOT NULL REFERENCES profiles(id),
	role       TEXT NOT NULL,
	PRIMARY KEY (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS findings (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	severity   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'open',
	due_date   DATETIME NOT NULL,
	project_id TEXT NOT NULL REFERENCES projects(id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	finding_id TEXT NOT NULL,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	sent_at    DATETIME NOT NULL,
	is_read    INTEGER NOT NULL DEFAULT 0,
	email_sent INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_findings_status_due ON findings(status, due_date);
CREATE INDEX IF NOT EXISTS idx_notifications_dedup ON notifications(finding_id, type, sent_at);
CREATE INDEX IF NOT EXISTS idx_members_project ON project_members(project_id);
`,
	},
}
