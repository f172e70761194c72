package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/breeze-mail/breeze/pkg/types"
)

const outgoingColumns = `id, user_id, account_id, gmail_message_id, to_addresses,
	cc_addresses, bcc_addresses, subject, status, error_message, created_at`

// LogOutgoingMail records a send attempt, success or failure.
func (r *PostgresBackend) LogOutgoingMail(ctx context.Context, entry *types.OutgoingMailLog) (*types.OutgoingMailLog, error) {
	query := `
		INSERT INTO outgoing_mail_log (
			user_id, account_id, gmail_message_id, to_addresses, cc_addresses,
			bcc_addresses, subject, status, error_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + outgoingColumns

	var l types.OutgoingMailLog
	var gmailMessageId, errorMessage sql.NullString
	err := r.db.QueryRowContext(ctx, query,
		entry.UserId, entry.AccountId, nullable(entry.GmailMessageId),
		pq.Array(entry.ToAddresses), pq.Array(entry.CcAddresses), pq.Array(entry.BccAddresses),
		entry.Subject, entry.Status, nullable(entry.ErrorMessage),
	).Scan(
		&l.Id, &l.UserId, &l.AccountId, &gmailMessageId, pq.Array(&l.ToAddresses),
		pq.Array(&l.CcAddresses), pq.Array(&l.BccAddresses), &l.Subject, &l.Status,
		&errorMessage, &l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("log outgoing mail: %w", err)
	}
	l.GmailMessageId = gmailMessageId.String
	l.ErrorMessage = errorMessage.String
	return &l, nil
}

func (r *PostgresBackend) ListOutgoingMail(ctx context.Context, userId, accountId uint, limit int) ([]types.OutgoingMailLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT ` + outgoingColumns + ` FROM outgoing_mail_log
		WHERE user_id = $1 AND account_id = $2
		ORDER BY created_at DESC LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, userId, accountId, limit)
	if err != nil {
		return nil, fmt.Errorf("list outgoing mail: %w", err)
	}
	defer rows.Close()

	var logs []types.OutgoingMailLog
	for rows.Next() {
		var l types.OutgoingMailLog
		var gmailMessageId, errorMessage sql.NullString
		err := rows.Scan(
			&l.Id, &l.UserId, &l.AccountId, &gmailMessageId, pq.Array(&l.ToAddresses),
			pq.Array(&l.CcAddresses), pq.Array(&l.BccAddresses), &l.Subject, &l.Status,
			&errorMessage, &l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outgoing mail: %w", err)
		}
		l.GmailMessageId = gmailMessageId.String
		l.ErrorMessage = errorMessage.String
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
