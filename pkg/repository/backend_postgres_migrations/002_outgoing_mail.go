package backend_postgres_migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upOutgoingMail, downOutgoingMail)
}

func upOutgoingMail(tx *sql.Tx) error {
	createStatements := []string{
		`CREATE TYPE outgoing_status AS ENUM ('sent', 'failed');`,

		`CREATE TABLE IF NOT EXISTS outgoing_mail_log (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
			account_id INT NOT NULL REFERENCES account(id) ON DELETE CASCADE,
			gmail_message_id VARCHAR(64),
			to_addresses TEXT[] NOT NULL DEFAULT '{}',
			cc_addresses TEXT[] NOT NULL DEFAULT '{}',
			bcc_addresses TEXT[] NOT NULL DEFAULT '{}',
			subject TEXT NOT NULL DEFAULT '',
			status outgoing_status NOT NULL,
			error_message TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE INDEX idx_outgoing_mail_log_user ON outgoing_mail_log(user_id, account_id, created_at DESC);`,
	}

	for _, stmt := range createStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func downOutgoingMail(tx *sql.Tx) error {
	dropStatements := []string{
		"DROP TABLE IF EXISTS outgoing_mail_log;",
		"DROP TYPE IF EXISTS outgoing_status;",
	}

	for _, stmt := range dropStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
