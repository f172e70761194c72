package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/breeze-mail/breeze/pkg/types"
)

const syncColumns = `id, user_id, account_id, sync_type, state, total_items,
	synced_items, error_message, started_at, completed_at, created_at, updated_at`

func scanSyncStatus(scanner interface {
	Scan(dest ...any) error
}) (*types.SyncStatus, error) {
	var s types.SyncStatus
	var errorMessage sql.NullString
	err := scanner.Scan(
		&s.Id, &s.UserId, &s.AccountId, &s.SyncType, &s.State, &s.TotalItems,
		&s.SyncedItems, &errorMessage, &s.StartedAt, &s.CompletedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ErrorMessage = errorMessage.String
	return &s, nil
}

// CreateSyncStatuses inserts one pending row per phase, replacing any
// previous rows for the account. A new sync always starts from a clean
// slate; history lives in the job log, not here.
func (r *PostgresBackend) CreateSyncStatuses(ctx context.Context, userId, accountId uint) ([]types.SyncStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sync_status WHERE user_id = $1 AND account_id = $2`,
		userId, accountId,
	); err != nil {
		return nil, fmt.Errorf("clear sync statuses: %w", err)
	}

	var statuses []types.SyncStatus
	for _, syncType := range types.AllSyncTypes {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO sync_status (user_id, account_id, sync_type, state)
			VALUES ($1, $2, $3, $4)
			RETURNING `+syncColumns,
			userId, accountId, syncType, types.SyncStatePending,
		)
		s, err := scanSyncStatus(row)
		if err != nil {
			return nil, fmt.Errorf("create sync status: %w", err)
		}
		statuses = append(statuses, *s)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return statuses, nil
}

func (r *PostgresBackend) GetSyncStatuses(ctx context.Context, userId, accountId uint) ([]types.SyncStatus, error) {
	query := `SELECT ` + syncColumns + ` FROM sync_status WHERE user_id = $1 AND account_id = $2 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userId, accountId)
	if err != nil {
		return nil, fmt.Errorf("get sync statuses: %w", err)
	}
	defer rows.Close()

	var statuses []types.SyncStatus
	for rows.Next() {
		s, err := scanSyncStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync status: %w", err)
		}
		statuses = append(statuses, *s)
	}
	return statuses, rows.Err()
}

func (r *PostgresBackend) StartSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType, totalItems int) (*types.SyncStatus, error) {
	query := `
		UPDATE sync_status SET
			state = $4,
			total_items = $5,
			synced_items = 0,
			error_message = NULL,
			started_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND account_id = $2 AND sync_type = $3
		RETURNING ` + syncColumns

	s, err := scanSyncStatus(r.db.QueryRowContext(ctx, query, userId, accountId, syncType, types.SyncStateInProgress, totalItems))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync status not found for account %d phase %s", accountId, syncType)
	}
	if err != nil {
		return nil, fmt.Errorf("start sync phase: %w", err)
	}
	return s, nil
}

// UpdateSyncProgress bumps synced_items so clients can render progress
// while the phase runs.
func (r *PostgresBackend) UpdateSyncProgress(ctx context.Context, userId, accountId uint, syncType types.SyncType, syncedItems int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_status SET
			synced_items = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND account_id = $2 AND sync_type = $3`,
		userId, accountId, syncType, syncedItems,
	)
	if err != nil {
		return fmt.Errorf("update sync progress: %w", err)
	}
	return nil
}

func (r *PostgresBackend) CompleteSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_status SET
			state = $4,
			completed_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND account_id = $2 AND sync_type = $3`,
		userId, accountId, syncType, types.SyncStateCompleted,
	)
	if err != nil {
		return fmt.Errorf("complete sync phase: %w", err)
	}
	return nil
}

func (r *PostgresBackend) FailSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType, errorMessage string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_status SET
			state = $4,
			error_message = $5,
			completed_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND account_id = $2 AND sync_type = $3`,
		userId, accountId, syncType, types.SyncStateFailed, errorMessage,
	)
	if err != nil {
		return fmt.Errorf("fail sync phase: %w", err)
	}
	return nil
}
