package filters

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/gmail"
	"github.com/breeze-mail/breeze/pkg/openai"
	"github.com/breeze-mail/breeze/pkg/types"
)

// FilterStore is the repository surface the engine needs.
type FilterStore interface {
	ListFilters(ctx context.Context, userId uint, activeOnly bool) ([]types.Filter, error)
	FindOrCreateTag(ctx context.Context, userId uint, name, color string) (*types.Tag, error)
	TagMessage(ctx context.Context, userId, messageId, tagId uint) error
}

// ApplyResult is what a filter pass decided. Label changes are returned
// rather than applied; the caller owns the Gmail round trip.
type ApplyResult struct {
	MatchedFilters []string    `json:"matched_filters"`
	TagsAdded      []types.Tag `json:"tags_added"`
	AddLabelIds    []string    `json:"add_label_ids,omitempty"`
	MarkRead       bool        `json:"mark_read,omitempty"`
}

// Engine runs a user's active filters against a message. Every matching
// filter applies its actions; filters do not short-circuit each other.
type Engine struct {
	store      FilterStore
	classifier openai.Classifier
}

// NewEngine builds an engine. classifier may be nil; AI filters are
// skipped when it is.
func NewEngine(store FilterStore, classifier openai.Classifier) *Engine {
	return &Engine{store: store, classifier: classifier}
}

func (e *Engine) Apply(ctx context.Context, userId uint, msg *types.EmailMessage) (*ApplyResult, error) {
	filters, err := e.store.ListFilters(ctx, userId, true)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{}
	seenLabels := map[string]bool{}
	seenTags := map[string]bool{}

	for _, filter := range filters {
		matched, err := e.matches(ctx, &filter, msg)
		if err != nil {
			// A classifier outage must not block rule-based filters.
			log.Warn().Err(err).Str("filter", filter.Name).Msg("filter match failed, skipping")
			continue
		}
		if !matched {
			continue
		}

		result.MatchedFilters = append(result.MatchedFilters, filter.Name)

		for _, tagName := range filter.Actions.AddTags {
			if seenTags[tagName] {
				continue
			}
			seenTags[tagName] = true

			tag, err := e.store.FindOrCreateTag(ctx, userId, tagName, "")
			if err != nil {
				return nil, err
			}
			if err := e.store.TagMessage(ctx, userId, msg.Id, tag.Id); err != nil {
				return nil, err
			}
			result.TagsAdded = append(result.TagsAdded, *tag)
		}

		for _, labelId := range filter.Actions.AddLabelIds {
			if !seenLabels[labelId] {
				seenLabels[labelId] = true
				result.AddLabelIds = append(result.AddLabelIds, labelId)
			}
		}

		if filter.Actions.MarkRead {
			result.MarkRead = true
		}
	}

	return result, nil
}

func (e *Engine) matches(ctx context.Context, filter *types.Filter, msg *types.EmailMessage) (bool, error) {
	if filter.UseAI && filter.AIPrompt != "" {
		if e.classifier == nil {
			return false, nil
		}
		return e.classifier.Matches(ctx, filter.AIPrompt, openai.EmailInput{
			From:    msg.FromAddress,
			Subject: msg.Subject,
			Body:    msg.BodyText,
		})
	}
	return MatchesConditions(filter.Conditions, msg), nil
}

// MatchesConditions checks rule conditions against a message. All
// populated conditions must hold. Empty conditions never match.
func MatchesConditions(c types.FilterConditions, msg *types.EmailMessage) bool {
	if c.IsEmpty() {
		return false
	}

	if c.SenderEmail != "" && !containsFold(msg.FromAddress, c.SenderEmail) {
		return false
	}
	if c.SenderDomain != "" {
		domain := gmail.AddressDomain(msg.FromAddress)
		if !strings.EqualFold(domain, c.SenderDomain) {
			return false
		}
	}
	if c.SubjectContains != "" && !containsFold(msg.Subject, c.SubjectContains) {
		return false
	}
	if c.BodyContains != "" && !containsFold(msg.BodyText, c.BodyContains) {
		return false
	}
	if c.Keyword != "" &&
		!containsFold(msg.Subject, c.Keyword) &&
		!containsFold(msg.BodyText, c.Keyword) &&
		!containsFold(msg.Snippet, c.Keyword) {
		return false
	}

	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
