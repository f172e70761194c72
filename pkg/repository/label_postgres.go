package repository

import (
	"context"
	"fmt"

	"github.com/breeze-mail/breeze/pkg/types"
)

const labelColumns = `id, user_id, account_id, gmail_label_id, name, type,
	color, messages_total, messages_unread, threads_total, is_visible,
	created_at, updated_at`

// UpsertLabel replaces the mirrored label keyed by
// (user_id, account_id, gmail_label_id).
func (r *PostgresBackend) UpsertLabel(ctx context.Context, label *types.Label) (*types.Label, error) {
	query := `
		INSERT INTO gmail_label (
			user_id, account_id, gmail_label_id, name, type, color,
			messages_total, messages_unread, threads_total, is_visible
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, account_id, gmail_label_id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			color = EXCLUDED.color,
			messages_total = EXCLUDED.messages_total,
			messages_unread = EXCLUDED.messages_unread,
			threads_total = EXCLUDED.threads_total,
			is_visible = EXCLUDED.is_visible,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + labelColumns

	var l types.Label
	err := r.db.QueryRowContext(ctx, query,
		label.UserId, label.AccountId, label.GmailLabelId, label.Name, label.Type,
		label.Color, label.MessagesTotal, label.MessagesUnread, label.ThreadsTotal,
		label.IsVisible,
	).Scan(
		&l.Id, &l.UserId, &l.AccountId, &l.GmailLabelId, &l.Name, &l.Type,
		&l.Color, &l.MessagesTotal, &l.MessagesUnread, &l.ThreadsTotal,
		&l.IsVisible, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert label: %w", err)
	}
	return &l, nil
}

func (r *PostgresBackend) ListLabels(ctx context.Context, userId, accountId uint) ([]types.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM gmail_label WHERE user_id = $1 AND account_id = $2 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userId, accountId)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	defer rows.Close()

	var labels []types.Label
	for rows.Next() {
		var l types.Label
		err := rows.Scan(
			&l.Id, &l.UserId, &l.AccountId, &l.GmailLabelId, &l.Name, &l.Type,
			&l.Color, &l.MessagesTotal, &l.MessagesUnread, &l.ThreadsTotal,
			&l.IsVisible, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
