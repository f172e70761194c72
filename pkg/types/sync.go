package types

import "time"

type SyncType string

const (
	SyncTypeLabels   SyncType = "labels"
	SyncTypeContacts SyncType = "contacts"
	SyncTypeMessages SyncType = "messages"
)

// AllSyncTypes is the fixed phase order of a directory sync.
var AllSyncTypes = []SyncType{SyncTypeLabels, SyncTypeContacts, SyncTypeMessages}

type SyncState string

const (
	SyncStatePending    SyncState = "pending"
	SyncStateInProgress SyncState = "in_progress"
	SyncStateCompleted  SyncState = "completed"
	SyncStateFailed     SyncState = "failed"
)

// IsTerminal reports whether the state is final. Terminal rows are never
// retried automatically; a new sync request creates fresh rows.
func (s SyncState) IsTerminal() bool {
	return s == SyncStateCompleted || s == SyncStateFailed
}

// SyncStatus tracks the progress of one sync phase for one account.
type SyncStatus struct {
	Id           uint       `json:"id"`
	UserId       uint       `json:"user_id"`
	AccountId    uint       `json:"account_id"`
	SyncType     SyncType   `json:"sync_type"`
	State        SyncState  `json:"state"`
	TotalItems   int        `json:"total_items"`
	SyncedItems  int        `json:"synced_items"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SyncJob is the queue payload consumed by the sync worker.
type SyncJob struct {
	ExternalId string    `json:"external_id"`
	UserId     uint      `json:"user_id"`
	AccountId  uint      `json:"account_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
