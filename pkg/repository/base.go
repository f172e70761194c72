package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/breeze-mail/breeze/pkg/types"
)

// UserRepository manages users
type UserRepository interface {
	CreateUser(ctx context.Context, email string) (*types.User, error)
	GetUser(ctx context.Context, id uint) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

// AccountRepository manages connected provider accounts
type AccountRepository interface {
	UpsertAccount(ctx context.Context, userId uint, provider, emailAddress string, creds *types.Credentials) (*types.Account, error)
	GetAccount(ctx context.Context, userId, accountId uint) (*types.Account, error)
	GetAccountByProvider(ctx context.Context, userId uint, provider string) (*types.Account, error)
	ListAccounts(ctx context.Context, userId uint) ([]types.Account, error)
	UpdateAccountCredentials(ctx context.Context, accountId uint, creds *types.Credentials) error
	DeleteAccount(ctx context.Context, userId, accountId uint) error
}

// MessageRepository mirrors Gmail messages
type MessageRepository interface {
	UpsertMessage(ctx context.Context, msg *types.EmailMessage) (*types.EmailMessage, error)
	GetMessage(ctx context.Context, userId uint, gmailMessageId string) (*types.EmailMessage, error)
	ListMessages(ctx context.Context, userId, accountId uint, mailbox, query string, limit, offset int) ([]types.EmailMessage, error)
	UpdateMessageLabels(ctx context.Context, userId uint, gmailMessageId string, labelIds []string) (*types.EmailMessage, error)
	UpdateMessageBodies(ctx context.Context, userId uint, gmailMessageId, bodyText, bodyHtml string) error
	CountMessages(ctx context.Context, userId, accountId uint) (int, error)
}

// LabelRepository mirrors Gmail labels
type LabelRepository interface {
	UpsertLabel(ctx context.Context, label *types.Label) (*types.Label, error)
	ListLabels(ctx context.Context, userId, accountId uint) ([]types.Label, error)
}

// ContactRepository mirrors Google contacts
type ContactRepository interface {
	UpsertContact(ctx context.Context, contact *types.Contact) (*types.Contact, error)
	ListContacts(ctx context.Context, userId, accountId uint) ([]types.Contact, error)
	SearchContacts(ctx context.Context, userId uint, query string, limit int) ([]types.Contact, error)
}

// SyncRepository tracks directory sync progress
type SyncRepository interface {
	CreateSyncStatuses(ctx context.Context, userId, accountId uint) ([]types.SyncStatus, error)
	GetSyncStatuses(ctx context.Context, userId, accountId uint) ([]types.SyncStatus, error)
	StartSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType, totalItems int) (*types.SyncStatus, error)
	UpdateSyncProgress(ctx context.Context, userId, accountId uint, syncType types.SyncType, syncedItems int) error
	CompleteSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType) error
	FailSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType, errorMessage string) error
}

// OutgoingRepository logs outgoing mail attempts
type OutgoingRepository interface {
	LogOutgoingMail(ctx context.Context, entry *types.OutgoingMailLog) (*types.OutgoingMailLog, error)
	ListOutgoingMail(ctx context.Context, userId, accountId uint, limit int) ([]types.OutgoingMailLog, error)
}

// FilterRepository manages filters, tags, and tag associations
type FilterRepository interface {
	CreateFilter(ctx context.Context, filter *types.Filter) (*types.Filter, error)
	GetFilter(ctx context.Context, userId uint, externalId string) (*types.Filter, error)
	ListFilters(ctx context.Context, userId uint, activeOnly bool) ([]types.Filter, error)
	UpdateFilter(ctx context.Context, filter *types.Filter) (*types.Filter, error)
	DeleteFilter(ctx context.Context, userId uint, externalId string) error

	FindOrCreateTag(ctx context.Context, userId uint, name, color string) (*types.Tag, error)
	ListTags(ctx context.Context, userId uint) ([]types.Tag, error)
	TagMessage(ctx context.Context, userId, messageId, tagId uint) error
	ListMessageTags(ctx context.Context, userId, messageId uint) ([]types.Tag, error)
}

// TokenRepository manages API tokens
type TokenRepository interface {
	CreateToken(ctx context.Context, userId uint, name string, expiresAt *time.Time) (*types.Token, string, error)
	ListTokens(ctx context.Context, userId uint) ([]types.Token, error)
	RevokeToken(ctx context.Context, userId uint, externalId string) error
	AuthorizeToken(ctx context.Context, rawToken string) (*types.AuthInfo, error)
}

// SyncJobQueue distributes directory sync jobs to workers
type SyncJobQueue interface {
	Push(ctx context.Context, job *types.SyncJob) error
	Pop(ctx context.Context) (*types.SyncJob, error)
	Len(ctx context.Context) (int64, error)
}

// BackendRepository is the main Postgres repository for persistent data.
type BackendRepository interface {
	UserRepository
	AccountRepository
	MessageRepository
	LabelRepository
	ContactRepository
	SyncRepository
	OutgoingRepository
	FilterRepository
	TokenRepository

	DB() *sql.DB
	Ping(ctx context.Context) error
	Close() error
	RunMigrations() error
}

var _ BackendRepository = (*PostgresBackend)(nil)
