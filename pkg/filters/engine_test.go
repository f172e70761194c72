package filters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/breeze-mail/breeze/pkg/openai"
	"github.com/breeze-mail/breeze/pkg/types"
)

type fakeStore struct {
	filters []types.Filter
	tags    map[string]*types.Tag
	tagged  []uint
	nextId  uint
}

func newFakeStore(filters ...types.Filter) *fakeStore {
	return &fakeStore{filters: filters, tags: map[string]*types.Tag{}}
}

func (s *fakeStore) ListFilters(ctx context.Context, userId uint, activeOnly bool) ([]types.Filter, error) {
	return s.filters, nil
}

func (s *fakeStore) FindOrCreateTag(ctx context.Context, userId uint, name, color string) (*types.Tag, error) {
	if tag, ok := s.tags[name]; ok {
		return tag, nil
	}
	s.nextId++
	tag := &types.Tag{Id: s.nextId, UserId: userId, Name: name, Color: color}
	s.tags[name] = tag
	return tag, nil
}

func (s *fakeStore) TagMessage(ctx context.Context, userId, messageId, tagId uint) error {
	s.tagged = append(s.tagged, tagId)
	return nil
}

type stubClassifier struct {
	answer bool
	err    error
	calls  int
}

func (c *stubClassifier) Matches(ctx context.Context, prompt string, email openai.EmailInput) (bool, error) {
	c.calls++
	return c.answer, c.err
}

func TestMatchesConditions(t *testing.T) {
	msg := &types.EmailMessage{
		FromAddress: "Kayak <deals@msg.kayak.com>",
		Subject:     "Flight Deals This Week",
		BodyText:    "Fares from Boston starting at $99",
		Snippet:     "Fares from Boston",
	}

	cases := []struct {
		name string
		cond types.FilterConditions
		want bool
	}{
		{"empty never matches", types.FilterConditions{}, false},
		{"sender email substring", types.FilterConditions{SenderEmail: "deals@"}, true},
		{"sender domain exact", types.FilterConditions{SenderDomain: "msg.kayak.com"}, true},
		{"sender domain is not substring", types.FilterConditions{SenderDomain: "kayak.com"}, false},
		{"subject case-insensitive", types.FilterConditions{SubjectContains: "flight deals"}, true},
		{"body contains", types.FilterConditions{BodyContains: "$99"}, true},
		{"keyword searches subject body snippet", types.FilterConditions{Keyword: "boston"}, true},
		{"all conditions must hold", types.FilterConditions{SubjectContains: "flight", BodyContains: "nope"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchesConditions(tc.cond, msg))
		})
	}
}

func TestEngine_ApplyTagsAndLabels(t *testing.T) {
	store := newFakeStore(
		types.Filter{
			Name:       "travel",
			Conditions: types.FilterConditions{SenderDomain: "msg.kayak.com"},
			Actions:    types.FilterActions{AddTags: []string{"Travel"}, AddLabelIds: []string{"Label_1"}},
		},
		types.Filter{
			Name:       "deals",
			Conditions: types.FilterConditions{SubjectContains: "deals"},
			Actions:    types.FilterActions{AddTags: []string{"Travel", "Deals"}, AddLabelIds: []string{"Label_1"}, MarkRead: true},
		},
	)
	engine := NewEngine(store, nil)

	result, err := engine.Apply(context.Background(), 1, &types.EmailMessage{
		Id:          10,
		FromAddress: "deals@msg.kayak.com",
		Subject:     "Weekend Deals",
	})
	assert.NoError(t, err)

	assert.Equal(t, []string{"travel", "deals"}, result.MatchedFilters)

	// Tags and labels are deduplicated across filters
	assert.Len(t, result.TagsAdded, 2)
	assert.Equal(t, []string{"Label_1"}, result.AddLabelIds)
	assert.True(t, result.MarkRead)
	assert.Len(t, store.tagged, 2)
}

func TestEngine_NoMatches(t *testing.T) {
	store := newFakeStore(types.Filter{
		Name:       "newsletter",
		Conditions: types.FilterConditions{SenderDomain: "substack.com"},
	})
	engine := NewEngine(store, nil)

	result, err := engine.Apply(context.Background(), 1, &types.EmailMessage{
		FromAddress: "bob@example.com",
	})
	assert.NoError(t, err)
	assert.Empty(t, result.MatchedFilters)
	assert.Empty(t, result.TagsAdded)
	assert.False(t, result.MarkRead)
}

func TestEngine_AIFilter(t *testing.T) {
	classifier := &stubClassifier{answer: true}
	store := newFakeStore(types.Filter{
		Name:     "ai-receipts",
		UseAI:    true,
		AIPrompt: "Is this a purchase receipt?",
		Actions:  types.FilterActions{AddTags: []string{"Receipts"}},
	})
	engine := NewEngine(store, classifier)

	result, err := engine.Apply(context.Background(), 1, &types.EmailMessage{
		Id:      10,
		Subject: "Your order confirmation",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, []string{"ai-receipts"}, result.MatchedFilters)
}

func TestEngine_AIFilterSkippedWithoutClassifier(t *testing.T) {
	store := newFakeStore(types.Filter{
		Name:     "ai-receipts",
		UseAI:    true,
		AIPrompt: "Is this a purchase receipt?",
	})
	engine := NewEngine(store, nil)

	result, err := engine.Apply(context.Background(), 1, &types.EmailMessage{Subject: "anything"})
	assert.NoError(t, err)
	assert.Empty(t, result.MatchedFilters)
}

func TestEngine_ClassifierErrorSkipsFilterOnly(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("upstream 500")}
	store := newFakeStore(
		types.Filter{
			Name:     "ai-broken",
			UseAI:    true,
			AIPrompt: "anything",
		},
		types.Filter{
			Name:       "rule-based",
			Conditions: types.FilterConditions{SubjectContains: "order"},
			Actions:    types.FilterActions{MarkRead: true},
		},
	)
	engine := NewEngine(store, classifier)

	result, err := engine.Apply(context.Background(), 1, &types.EmailMessage{Subject: "Your order"})
	assert.NoError(t, err)

	// The classifier outage skips only the AI filter
	assert.Equal(t, []string{"rule-based"}, result.MatchedFilters)
	assert.True(t, result.MarkRead)
}
