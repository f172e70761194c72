package types

import "time"

// FilterConditions are matched against a message. All populated fields
// must match (logical AND); matching is case-insensitive substring
// except SenderDomain, which compares the address domain exactly.
type FilterConditions struct {
	SenderEmail     string `json:"sender_email,omitempty"`
	SenderDomain    string `json:"sender_domain,omitempty"`
	SubjectContains string `json:"subject_contains,omitempty"`
	BodyContains    string `json:"body_contains,omitempty"`
	Keyword         string `json:"keyword,omitempty"`
}

func (c FilterConditions) IsEmpty() bool {
	return c.SenderEmail == "" && c.SenderDomain == "" &&
		c.SubjectContains == "" && c.BodyContains == "" && c.Keyword == ""
}

// FilterActions are applied when a filter matches.
type FilterActions struct {
	AddTags     []string `json:"add_tags,omitempty"`
	AddLabelIds []string `json:"add_label_ids,omitempty"`
	MarkRead    bool     `json:"mark_read,omitempty"`
}

// Filter is a user-defined classification rule. Filters run in ascending
// Priority order; every active matching filter applies (no short-circuit).
type Filter struct {
	Id         uint             `json:"id"`
	ExternalId string           `json:"external_id"`
	UserId     uint             `json:"user_id"`
	Name       string           `json:"name"`
	Conditions FilterConditions `json:"conditions"`
	Actions    FilterActions    `json:"actions"`
	Priority   int              `json:"priority"`
	IsActive   bool             `json:"is_active"`
	UseAI      bool             `json:"use_ai"`
	AIPrompt   string           `json:"ai_prompt,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Tag is a user-scoped message tag, unique by (user_id, name).
type Tag struct {
	Id         uint      `json:"id"`
	ExternalId string    `json:"external_id"`
	UserId     uint      `json:"user_id"`
	Name       string    `json:"name"`
	Color      string    `json:"color,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
