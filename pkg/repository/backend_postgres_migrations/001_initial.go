package backend_postgres_migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upInitial, downInitial)
}

func upInitial(tx *sql.Tx) error {
	// Ensure UUID extension is available
	if _, err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createStatements := []string{
		`CREATE TYPE sync_state AS ENUM ('pending', 'in_progress', 'completed', 'failed');`,
		`CREATE TYPE sync_type AS ENUM ('labels', 'contacts', 'messages');`,

		// Users table
		`CREATE TABLE IF NOT EXISTS app_user (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			email VARCHAR(320) NOT NULL UNIQUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);`,

		// Connected provider accounts
		`CREATE TABLE IF NOT EXISTS account (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			provider VARCHAR(32) NOT NULL,
			email_address VARCHAR(320) NOT NULL,
			refresh_token TEXT,
			access_token TEXT,
			access_token_expires_at TIMESTAMP WITH TIME ZONE,
			scope TEXT,
			token_type VARCHAR(32),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, provider)
		);`,

		// Mirrored messages
		`CREATE TABLE IF NOT EXISTS email_message (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			account_id INT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
			gmail_message_id VARCHAR(64) NOT NULL,
			thread_id VARCHAR(64) NOT NULL DEFAULT '',
			subject TEXT NOT NULL DEFAULT '',
			from_address TEXT NOT NULL DEFAULT '',
			to_addresses TEXT[] NOT NULL DEFAULT '{}',
			cc_addresses TEXT[] NOT NULL DEFAULT '{}',
			bcc_addresses TEXT[] NOT NULL DEFAULT '{}',
			snippet TEXT NOT NULL DEFAULT '',
			label_ids TEXT[] NOT NULL DEFAULT '{}',
			body_text TEXT NOT NULL DEFAULT '',
			body_html TEXT NOT NULL DEFAULT '',
			internal_date TIMESTAMP WITH TIME ZONE,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			size_estimate BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, account_id, gmail_message_id)
		);`,

		// Mirrored labels
		`CREATE TABLE IF NOT EXISTS gmail_label (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			account_id INT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
			gmail_label_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(32) NOT NULL DEFAULT '',
			color VARCHAR(16) NOT NULL DEFAULT '',
			messages_total INT NOT NULL DEFAULT 0,
			messages_unread INT NOT NULL DEFAULT 0,
			threads_total INT NOT NULL DEFAULT 0,
			is_visible BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, account_id, gmail_label_id)
		);`,

		// Mirrored contacts
		`CREATE TABLE IF NOT EXISTS gmail_contact (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			account_id INT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
			gmail_contact_id VARCHAR(255) NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			email_addresses TEXT[] NOT NULL DEFAULT '{}',
			phone_numbers TEXT[] NOT NULL DEFAULT '{}',
			organization TEXT NOT NULL DEFAULT '',
			job_title TEXT NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, account_id, gmail_contact_id)
		);`,

		// Sync progress
		`CREATE TABLE IF NOT EXISTS sync_status (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			account_id INT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
			sync_type sync_type NOT NULL,
			state sync_state NOT NULL DEFAULT 'pending',
			total_items INT NOT NULL DEFAULT 0,
			synced_items INT NOT NULL DEFAULT 0,
			error_message TEXT,
			started_at TIMESTAMP WITH TIME ZONE,
			completed_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, account_id, sync_type)
		);`,

		// API tokens
		`CREATE TABLE IF NOT EXISTS token (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			token_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			expires_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			last_used_at TIMESTAMP WITH TIME ZONE
		);`,

		// Indexes
		`CREATE INDEX idx_email_message_user_account ON email_message(user_id, account_id);`,
		`CREATE INDEX idx_email_message_internal_date ON email_message(internal_date DESC);`,
		`CREATE INDEX idx_email_message_label_ids ON email_message USING GIN(label_ids);`,
		`CREATE INDEX idx_gmail_contact_user ON gmail_contact(user_id);`,
		`CREATE INDEX idx_sync_status_account ON sync_status(account_id);`,
		`CREATE INDEX idx_token_user_id ON token(user_id);`,
	}

	for _, stmt := range createStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func downInitial(tx *sql.Tx) error {
	dropStatements := []string{
		"DROP TABLE IF EXISTS token;",
		"DROP TABLE IF EXISTS sync_status;",
		"DROP TABLE IF EXISTS gmail_contact;",
		"DROP TABLE IF EXISTS gmail_label;",
		"DROP TABLE IF EXISTS email_message;",
		"DROP TABLE IF EXISTS account;",
		"DROP TABLE IF EXISTS app_user;",
		"DROP TYPE IF EXISTS sync_type;",
		"DROP TYPE IF EXISTS sync_state;",
	}

	for _, stmt := range dropStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
