package backend_postgres_migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upFilters, downFilters)
}

func upFilters(tx *sql.Tx) error {
	createStatements := []string{
		`CREATE TABLE IF NOT EXISTS filter (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			conditions JSONB NOT NULL DEFAULT '{}',
			actions JSONB NOT NULL DEFAULT '{}',
			priority INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			use_ai BOOLEAN NOT NULL DEFAULT FALSE,
			ai_prompt TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS tag (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			color VARCHAR(16),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, name)
		);`,

		`CREATE TABLE IF NOT EXISTS message_tag (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			message_id INT NOT NULL REFERENCES email_message(id) ON DELETE CASCADE,
			tag_id INT NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (message_id, tag_id)
		);`,

		`CREATE INDEX idx_filter_user_priority ON filter(user_id, priority);`,
		`CREATE INDEX idx_message_tag_message ON message_tag(message_id);`,
	}

	for _, stmt := range createStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func downFilters(tx *sql.Tx) error {
	dropStatements := []string{
		"DROP TABLE IF EXISTS message_tag;",
		"DROP TABLE IF EXISTS tag;",
		"DROP TABLE IF EXISTS filter;",
	}

	for _, stmt := range dropStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
