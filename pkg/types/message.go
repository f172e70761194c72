package types

import "time"

// LabelUnread is the Gmail system label that marks a message unread.
// Read state is derived from it, never stored independently.
const LabelUnread = "UNREAD"

// Gmail system labels used for mailbox membership.
const (
	LabelInbox   = "INBOX"
	LabelSent    = "SENT"
	LabelStarred = "STARRED"
	LabelTrash   = "TRASH"
	LabelDraft   = "DRAFT"
)

// EmailMessage is a mirrored Gmail message. Rows are keyed by
// (user_id, account_id, gmail_message_id) and replaced wholesale on
// import; Gmail is the source of truth.
type EmailMessage struct {
	Id             uint       `json:"id"`
	UserId         uint       `json:"user_id"`
	AccountId      uint       `json:"account_id"`
	GmailMessageId string     `json:"gmail_message_id"`
	ThreadId       string     `json:"thread_id"`
	Subject        string     `json:"subject"`
	FromAddress    string     `json:"from_address"`
	ToAddresses    []string   `json:"to_addresses"`
	CcAddresses    []string   `json:"cc_addresses"`
	BccAddresses   []string   `json:"bcc_addresses"`
	Snippet        string     `json:"snippet"`
	LabelIds       []string   `json:"label_ids"`
	BodyText       string     `json:"body_text"`
	BodyHtml       string     `json:"body_html"`
	InternalDate   *time.Time `json:"internal_date,omitempty"`
	IsRead         bool       `json:"is_read"`
	SizeEstimate   int64      `json:"size_estimate"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsReadFromLabels derives read state from a label set.
func IsReadFromLabels(labels []string) bool {
	for _, l := range labels {
		if l == LabelUnread {
			return false
		}
	}
	return true
}

// Label mirrors a Gmail label. Upserted wholesale from the label list,
// never partially patched.
type Label struct {
	Id             uint      `json:"id"`
	UserId         uint      `json:"user_id"`
	AccountId      uint      `json:"account_id"`
	GmailLabelId   string    `json:"gmail_label_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Color          string    `json:"color"`
	MessagesTotal  int       `json:"messages_total"`
	MessagesUnread int       `json:"messages_unread"`
	ThreadsTotal   int       `json:"threads_total"`
	IsVisible      bool      `json:"is_visible"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Contact mirrors a Google People connection with at least one email
// address. Used for recipient autocomplete.
type Contact struct {
	Id             uint      `json:"id"`
	UserId         uint      `json:"user_id"`
	AccountId      uint      `json:"account_id"`
	GmailContactId string    `json:"gmail_contact_id"`
	DisplayName    string    `json:"display_name"`
	EmailAddresses []string  `json:"email_addresses"`
	PhoneNumbers   []string  `json:"phone_numbers"`
	Organization   string    `json:"organization"`
	JobTitle       string    `json:"job_title"`
	PhotoUrl       string    `json:"photo_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type OutgoingStatus string

const (
	OutgoingStatusSent   OutgoingStatus = "sent"
	OutgoingStatusFailed OutgoingStatus = "failed"
)

// OutgoingMailLog records every send attempt, success or failure.
// Fire-and-log: a failed send is never retried from this table.
type OutgoingMailLog struct {
	Id             uint           `json:"id"`
	UserId         uint           `json:"user_id"`
	AccountId      uint           `json:"account_id"`
	GmailMessageId string         `json:"gmail_message_id,omitempty"`
	ToAddresses    []string       `json:"to_addresses"`
	CcAddresses    []string       `json:"cc_addresses"`
	BccAddresses   []string       `json:"bcc_addresses"`
	Subject        string         `json:"subject"`
	Status         OutgoingStatus `json:"status"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
