package sqldb

// schema is applied at startup. Statements must be idempotent and portable
// between SQLite and PostgreSQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		settings TEXT NOT NULL DEFAULT '{}',
		is_scanning BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		content TEXT NOT NULL DEFAULT '{}',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		last_scanned_at BIGINT,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS documents_user_updated_idx ON documents(user_id, updated_at)`,
	`CREATE TABLE IF NOT EXISTS facts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		fact_key TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '{}',
		category TEXT NOT NULL DEFAULT 'knowledge',
		confidence TEXT NOT NULL DEFAULT 'low',
		is_locked BOOLEAN NOT NULL DEFAULT FALSE,
		updated_by TEXT NOT NULL DEFAULT 'system',
		source_document_id TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		UNIQUE (user_id, fact_key)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		quote TEXT NOT NULL DEFAULT '',
		text_range TEXT,
		content TEXT NOT NULL,
		comment_type TEXT NOT NULL DEFAULT 'suggestion',
		status TEXT NOT NULL DEFAULT 'active',
		replies TEXT NOT NULL DEFAULT '[]',
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS comments_document_idx ON comments(user_id, document_id)`,
	`CREATE TABLE IF NOT EXISTS almanacs (
		day TEXT PRIMARY KEY,
		yi TEXT NOT NULL DEFAULT '[]',
		ji TEXT NOT NULL DEFAULT '[]',
		icon TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
}
