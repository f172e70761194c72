package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/breeze-mail/breeze/pkg/types"
)

const filterColumns = `id, external_id, user_id, name, conditions, actions,
	priority, is_active, use_ai, ai_prompt, created_at, updated_at`

func scanFilter(scanner interface {
	Scan(dest ...any) error
}) (*types.Filter, error) {
	var f types.Filter
	var conditions, actions []byte
	var aiPrompt sql.NullString
	err := scanner.Scan(
		&f.Id, &f.ExternalId, &f.UserId, &f.Name, &conditions, &actions,
		&f.Priority, &f.IsActive, &f.UseAI, &aiPrompt, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(conditions, &f.Conditions); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	if err := json.Unmarshal(actions, &f.Actions); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	f.AIPrompt = aiPrompt.String
	return &f, nil
}

func (r *PostgresBackend) CreateFilter(ctx context.Context, filter *types.Filter) (*types.Filter, error) {
	conditions, err := json.Marshal(filter.Conditions)
	if err != nil {
		return nil, fmt.Errorf("encode conditions: %w", err)
	}
	actions, err := json.Marshal(filter.Actions)
	if err != nil {
		return nil, fmt.Errorf("encode actions: %w", err)
	}

	query := `
		INSERT INTO filter (user_id, name, conditions, actions, priority, is_active, use_ai, ai_prompt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + filterColumns

	f, err := scanFilter(r.db.QueryRowContext(ctx, query,
		filter.UserId, filter.Name, conditions, actions,
		filter.Priority, filter.IsActive, filter.UseAI, nullable(filter.AIPrompt),
	))
	if err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}
	return f, nil
}

func (r *PostgresBackend) GetFilter(ctx context.Context, userId uint, externalId string) (*types.Filter, error) {
	query := `SELECT ` + filterColumns + ` FROM filter WHERE user_id = $1 AND external_id = $2`

	f, err := scanFilter(r.db.QueryRowContext(ctx, query, userId, externalId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &types.ErrFilterNotFound{ExternalId: externalId}
	}
	if err != nil {
		return nil, fmt.Errorf("get filter: %w", err)
	}
	return f, nil
}

// ListFilters returns filters in rule application order.
func (r *PostgresBackend) ListFilters(ctx context.Context, userId uint, activeOnly bool) ([]types.Filter, error) {
	query := `SELECT ` + filterColumns + ` FROM filter WHERE user_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY priority, id`

	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	var filters []types.Filter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		filters = append(filters, *f)
	}
	return filters, rows.Err()
}

func (r *PostgresBackend) UpdateFilter(ctx context.Context, filter *types.Filter) (*types.Filter, error) {
	conditions, err := json.Marshal(filter.Conditions)
	if err != nil {
		return nil, fmt.Errorf("encode conditions: %w", err)
	}
	actions, err := json.Marshal(filter.Actions)
	if err != nil {
		return nil, fmt.Errorf("encode actions: %w", err)
	}

	query := `
		UPDATE filter SET
			name = $3,
			conditions = $4,
			actions = $5,
			priority = $6,
			is_active = $7,
			use_ai = $8,
			ai_prompt = $9,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND external_id = $2
		RETURNING ` + filterColumns

	f, err := scanFilter(r.db.QueryRowContext(ctx, query,
		filter.UserId, filter.ExternalId, filter.Name, conditions, actions,
		filter.Priority, filter.IsActive, filter.UseAI, nullable(filter.AIPrompt),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &types.ErrFilterNotFound{ExternalId: filter.ExternalId}
	}
	if err != nil {
		return nil, fmt.Errorf("update filter: %w", err)
	}
	return f, nil
}

func (r *PostgresBackend) DeleteFilter(ctx context.Context, userId uint, externalId string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM filter WHERE user_id = $1 AND external_id = $2`, userId, externalId)
	if err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.ErrFilterNotFound{ExternalId: externalId}
	}
	return nil
}

// FindOrCreateTag returns the tag named name for the user, creating it
// when missing. The color only applies on create.
func (r *PostgresBackend) FindOrCreateTag(ctx context.Context, userId uint, name, color string) (*types.Tag, error) {
	query := `
		INSERT INTO tag (user_id, name, color)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, external_id, user_id, name, color, created_at
	`

	var t types.Tag
	var tagColor sql.NullString
	err := r.db.QueryRowContext(ctx, query, userId, name, nullable(color)).Scan(
		&t.Id, &t.ExternalId, &t.UserId, &t.Name, &tagColor, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find or create tag: %w", err)
	}
	t.Color = tagColor.String
	return &t, nil
}

func (r *PostgresBackend) ListTags(ctx context.Context, userId uint) ([]types.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, external_id, user_id, name, color, created_at FROM tag WHERE user_id = $1 ORDER BY name`,
		userId,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []types.Tag
	for rows.Next() {
		var t types.Tag
		var color sql.NullString
		if err := rows.Scan(&t.Id, &t.ExternalId, &t.UserId, &t.Name, &color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.Color = color.String
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TagMessage associates a tag with a message. Re-tagging is a no-op.
func (r *PostgresBackend) TagMessage(ctx context.Context, userId, messageId, tagId uint) error {
	query := `
		INSERT INTO message_tag (user_id, message_id, tag_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, tag_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userId, messageId, tagId); err != nil {
		return fmt.Errorf("tag message: %w", err)
	}
	return nil
}

func (r *PostgresBackend) ListMessageTags(ctx context.Context, userId, messageId uint) ([]types.Tag, error) {
	query := `
		SELECT t.id, t.external_id, t.user_id, t.name, t.color, t.created_at
		FROM tag t
		JOIN message_tag mt ON mt.tag_id = t.id
		WHERE mt.user_id = $1 AND mt.message_id = $2
		ORDER BY t.name
	`

	rows, err := r.db.QueryContext(ctx, query, userId, messageId)
	if err != nil {
		return nil, fmt.Errorf("list message tags: %w", err)
	}
	defer rows.Close()

	var tags []types.Tag
	for rows.Next() {
		var t types.Tag
		var color sql.NullString
		if err := rows.Scan(&t.Id, &t.ExternalId, &t.UserId, &t.Name, &color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.Color = color.String
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
