package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/breeze-mail/breeze/pkg/types"
)

const messageColumns = `id, user_id, account_id, gmail_message_id, thread_id,
	subject, from_address, to_addresses, cc_addresses, bcc_addresses, snippet,
	label_ids, body_text, body_html, internal_date, is_read, size_estimate,
	created_at, updated_at`

func scanMessage(scanner interface {
	Scan(dest ...any) error
}) (*types.EmailMessage, error) {
	var m types.EmailMessage
	err := scanner.Scan(
		&m.Id, &m.UserId, &m.AccountId, &m.GmailMessageId, &m.ThreadId,
		&m.Subject, &m.FromAddress, pq.Array(&m.ToAddresses), pq.Array(&m.CcAddresses),
		pq.Array(&m.BccAddresses), &m.Snippet, pq.Array(&m.LabelIds),
		&m.BodyText, &m.BodyHtml, &m.InternalDate, &m.IsRead, &m.SizeEstimate,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertMessage replaces the full row keyed by
// (user_id, account_id, gmail_message_id). Gmail is the source of truth,
// so every column is rewritten; is_read is derived from the label set
// here rather than trusted from the caller.
func (r *PostgresBackend) UpsertMessage(ctx context.Context, msg *types.EmailMessage) (*types.EmailMessage, error) {
	query := `
		INSERT INTO email_message (
			user_id, account_id, gmail_message_id, thread_id, subject,
			from_address, to_addresses, cc_addresses, bcc_addresses, snippet,
			label_ids, body_text, body_html, internal_date, is_read, size_estimate
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (user_id, account_id, gmail_message_id) DO UPDATE SET
			thread_id = EXCLUDED.thread_id,
			subject = EXCLUDED.subject,
			from_address = EXCLUDED.from_address,
			to_addresses = EXCLUDED.to_addresses,
			cc_addresses = EXCLUDED.cc_addresses,
			bcc_addresses = EXCLUDED.bcc_addresses,
			snippet = EXCLUDED.snippet,
			label_ids = EXCLUDED.label_ids,
			body_text = EXCLUDED.body_text,
			body_html = EXCLUDED.body_html,
			internal_date = EXCLUDED.internal_date,
			is_read = EXCLUDED.is_read,
			size_estimate = EXCLUDED.size_estimate,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + messageColumns

	isRead := types.IsReadFromLabels(msg.LabelIds)

	row := r.db.QueryRowContext(ctx, query,
		msg.UserId, msg.AccountId, msg.GmailMessageId, msg.ThreadId, msg.Subject,
		msg.FromAddress, pq.Array(msg.ToAddresses), pq.Array(msg.CcAddresses),
		pq.Array(msg.BccAddresses), msg.Snippet, pq.Array(msg.LabelIds),
		msg.BodyText, msg.BodyHtml, msg.InternalDate, isRead, msg.SizeEstimate,
	)

	saved, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("upsert message: %w", err)
	}
	return saved, nil
}

func (r *PostgresBackend) GetMessage(ctx context.Context, userId uint, gmailMessageId string) (*types.EmailMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM email_message WHERE user_id = $1 AND gmail_message_id = $2`

	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, userId, gmailMessageId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &types.ErrMessageNotFound{GmailMessageId: gmailMessageId}
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

// ListMessages reads mirror rows for the UI. mailbox maps to a label
// filter; query does a case-insensitive match on subject, sender, and
// snippet.
func (r *PostgresBackend) ListMessages(ctx context.Context, userId, accountId uint, mailbox, query string, limit, offset int) ([]types.EmailMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	sqlQuery := `SELECT ` + messageColumns + ` FROM email_message WHERE user_id = $1 AND account_id = $2`
	args := []any{userId, accountId}

	if mailbox != "" {
		label, ok := mailboxLabel(mailbox)
		if !ok {
			return nil, &types.ValidationError{Field: "mailbox", Message: "unknown mailbox: " + mailbox}
		}
		args = append(args, label)
		sqlQuery += fmt.Sprintf(" AND $%d = ANY(label_ids)", len(args))
	}

	if query != "" {
		args = append(args, "%"+query+"%")
		n := len(args)
		sqlQuery += fmt.Sprintf(" AND (subject ILIKE $%d OR from_address ILIKE $%d OR snippet ILIKE $%d)", n, n, n)
	}

	args = append(args, limit, offset)
	sqlQuery += fmt.Sprintf(" ORDER BY internal_date DESC NULLS LAST LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []types.EmailMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func mailboxLabel(mailbox string) (string, bool) {
	switch mailbox {
	case "inbox":
		return types.LabelInbox, true
	case "sent":
		return types.LabelSent, true
	case "drafts":
		return types.LabelDraft, true
	case "starred":
		return types.LabelStarred, true
	case "trash":
		return types.LabelTrash, true
	}
	return "", false
}

// UpdateMessageLabels mirrors the authoritative label set returned by a
// modify call. is_read follows the labels.
func (r *PostgresBackend) UpdateMessageLabels(ctx context.Context, userId uint, gmailMessageId string, labelIds []string) (*types.EmailMessage, error) {
	query := `
		UPDATE email_message SET
			label_ids = $3,
			is_read = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND gmail_message_id = $2
		RETURNING ` + messageColumns

	isRead := types.IsReadFromLabels(labelIds)

	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, userId, gmailMessageId, pq.Array(labelIds), isRead))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &types.ErrMessageNotFound{GmailMessageId: gmailMessageId}
	}
	if err != nil {
		return nil, fmt.Errorf("update message labels: %w", err)
	}
	return msg, nil
}

// UpdateMessageBodies backfills bodies fetched lazily via the get action.
func (r *PostgresBackend) UpdateMessageBodies(ctx context.Context, userId uint, gmailMessageId, bodyText, bodyHtml string) error {
	query := `
		UPDATE email_message SET
			body_text = $3,
			body_html = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND gmail_message_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, userId, gmailMessageId, bodyText, bodyHtml)
	if err != nil {
		return fmt.Errorf("update message bodies: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.ErrMessageNotFound{GmailMessageId: gmailMessageId}
	}
	return nil
}

func (r *PostgresBackend) CountMessages(ctx context.Context, userId, accountId uint) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_message WHERE user_id = $1 AND account_id = $2`,
		userId, accountId,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
