package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/breeze-mail/breeze/pkg/types"
)

const contactColumns = `id, user_id, account_id, gmail_contact_id, display_name,
	email_addresses, phone_numbers, organization, job_title, photo_url,
	created_at, updated_at`

// UpsertContact replaces the mirrored contact keyed by
// (user_id, account_id, gmail_contact_id).
func (r *PostgresBackend) UpsertContact(ctx context.Context, contact *types.Contact) (*types.Contact, error) {
	query := `
		INSERT INTO gmail_contact (
			user_id, account_id, gmail_contact_id, display_name,
			email_addresses, phone_numbers, organization, job_title, photo_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, account_id, gmail_contact_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email_addresses = EXCLUDED.email_addresses,
			phone_numbers = EXCLUDED.phone_numbers,
			organization = EXCLUDED.organization,
			job_title = EXCLUDED.job_title,
			photo_url = EXCLUDED.photo_url,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + contactColumns

	var c types.Contact
	err := r.db.QueryRowContext(ctx, query,
		contact.UserId, contact.AccountId, contact.GmailContactId, contact.DisplayName,
		pq.Array(contact.EmailAddresses), pq.Array(contact.PhoneNumbers),
		contact.Organization, contact.JobTitle, contact.PhotoUrl,
	).Scan(
		&c.Id, &c.UserId, &c.AccountId, &c.GmailContactId, &c.DisplayName,
		pq.Array(&c.EmailAddresses), pq.Array(&c.PhoneNumbers),
		&c.Organization, &c.JobTitle, &c.PhotoUrl, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert contact: %w", err)
	}
	return &c, nil
}

func (r *PostgresBackend) ListContacts(ctx context.Context, userId, accountId uint) ([]types.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM gmail_contact WHERE user_id = $1 AND account_id = $2 ORDER BY display_name`

	return r.queryContacts(ctx, query, userId, accountId)
}

// SearchContacts matches display name or any email address, used for
// recipient autocomplete.
func (r *PostgresBackend) SearchContacts(ctx context.Context, userId uint, query string, limit int) ([]types.Contact, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	sqlQuery := `SELECT ` + contactColumns + ` FROM gmail_contact
		WHERE user_id = $1 AND (
			display_name ILIKE $2 OR
			EXISTS (SELECT 1 FROM unnest(email_addresses) addr WHERE addr ILIKE $2)
		)
		ORDER BY display_name LIMIT $3`

	return r.queryContacts(ctx, sqlQuery, userId, "%"+query+"%", limit)
}

func (r *PostgresBackend) queryContacts(ctx context.Context, query string, args ...any) ([]types.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []types.Contact
	for rows.Next() {
		var c types.Contact
		err := rows.Scan(
			&c.Id, &c.UserId, &c.AccountId, &c.GmailContactId, &c.DisplayName,
			pq.Array(&c.EmailAddresses), pq.Array(&c.PhoneNumbers),
			&c.Organization, &c.JobTitle, &c.PhotoUrl, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
