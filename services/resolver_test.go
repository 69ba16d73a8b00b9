package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/logging"
	"portfolio-backend/models"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	all    []models.ArticleSummary
	drafts []models.ArticleSummary
	body   map[string]*models.ArticleBody
	err    error

	allCalls   atomic.Int32
	draftCalls atomic.Int32
}

func (f *fakeSource) FetchAllArticles(context.Context) []models.ArticleSummary {
	f.allCalls.Add(1)
	return f.all
}

func (f *fakeSource) FetchDraftArticles(context.Context) []models.ArticleSummary {
	f.draftCalls.Add(1)
	return f.drafts
}

func (f *fakeSource) FetchArticleBody(_ context.Context, id string) (*models.ArticleBody, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.body[id]
	if !ok {
		return nil, ErrArticleNotFound
	}
	return b, nil
}

func at(s string) *time.Time {
	t, err := parseTimestamp(s)
	if err != nil {
		panic(err)
	}
	t = t.UTC()
	return &t
}

func article(id, slug string, publishedAt *time.Time) models.ArticleSummary {
	return models.ArticleSummary{DocumentID: id, Slug: slug, Title: "post " + id, PublishedAt: publishedAt}
}

func ids(list []models.ArticleSummary) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.DocumentID)
	}
	return out
}

func TestResolvePublication_DedupScenario(t *testing.T) {
	all := []models.ArticleSummary{article("a", "hello", at("2024-01-01"))}
	drafts := []models.ArticleSummary{
		article("a", "hello", at("2024-01-01")),
		article("b", "", nil),
	}

	view := ResolvePublication(all, drafts, testNow)

	assert.Equal(t, []string{"a"}, ids(view.Published))
	assert.Equal(t, []string{"b"}, ids(view.ComingSoon))
}

func TestResolvePublication_OnlyDrafts(t *testing.T) {
	drafts := []models.ArticleSummary{article("c", "", nil)}

	view := ResolvePublication(nil, drafts, testNow)

	assert.Empty(t, view.Published)
	assert.Equal(t, []string{"c"}, ids(view.ComingSoon))
}

func TestResolvePublication_NeverInBothBuckets(t *testing.T) {
	all := []models.ArticleSummary{
		article("a", "a", at("2024-03-01T10:00:00Z")),
		article("b", "b", at("2024-02-01T10:00:00Z")),
	}
	// the draft query disagrees about status for both a and b
	drafts := []models.ArticleSummary{
		article("a", "a", nil),
		article("b", "", nil),
		article("c", "", nil),
	}

	view := ResolvePublication(all, drafts, testNow)

	published := map[string]bool{}
	for _, a := range view.Published {
		published[a.DocumentID] = true
	}
	for _, d := range view.ComingSoon {
		assert.False(t, published[d.DocumentID], "%s is in both buckets", d.DocumentID)
	}
	assert.Equal(t, []string{"c"}, ids(view.ComingSoon))
}

func TestResolvePublication_FutureDatedNotPublished(t *testing.T) {
	future := testNow.Add(time.Hour)
	all := []models.ArticleSummary{
		article("live", "live", at("2025-05-01T00:00:00Z")),
		article("later", "later", &future),
	}

	view := ResolvePublication(all, nil, testNow)

	assert.Equal(t, []string{"live"}, ids(view.Published))
	assert.Empty(t, view.ComingSoon)
}

func TestResolvePublication_FutureDatedDraftIsComingSoon(t *testing.T) {
	future := testNow.Add(48 * time.Hour)
	drafts := []models.ArticleSummary{article("sched", "sched", &future)}

	view := ResolvePublication(nil, drafts, testNow)

	assert.Equal(t, []string{"sched"}, ids(view.ComingSoon))
}

func TestResolvePublication_PublishedAtNowIsLive(t *testing.T) {
	now := testNow
	view := ResolvePublication([]models.ArticleSummary{article("edge", "edge", &now)}, nil, testNow)
	assert.Equal(t, []string{"edge"}, ids(view.Published))
}

func TestResolvePublication_SortsNewestFirst(t *testing.T) {
	all := []models.ArticleSummary{
		article("t2", "t2", at("2024-02-01T00:00:00Z")),
		article("t3", "t3", at("2024-01-01T00:00:00Z")),
		article("t1", "t1", at("2024-03-01T00:00:00Z")),
		article("draft", "", nil),
	}

	view := ResolvePublication(all, nil, testNow)

	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(view.Published))
}

func TestResolvePublication_StableForTies(t *testing.T) {
	same := at("2024-01-01T00:00:00Z")
	all := []models.ArticleSummary{
		article("x", "x", same),
		article("y", "y", same),
		article("z", "z", same),
	}

	view := ResolvePublication(all, nil, testNow)

	assert.Equal(t, []string{"x", "y", "z"}, ids(view.Published))
}

func TestResolvePublication_EmptyInputs(t *testing.T) {
	view := ResolvePublication(nil, nil, testNow)

	require.NotNil(t, view.Published)
	require.NotNil(t, view.ComingSoon)
	assert.Empty(t, view.Published)
	assert.Empty(t, view.ComingSoon)
}

func TestResolvePublication_OnlyPublished(t *testing.T) {
	all := []models.ArticleSummary{article("a", "a", at("2024-01-01"))}

	view := ResolvePublication(all, []models.ArticleSummary{}, testNow)

	assert.Equal(t, []string{"a"}, ids(view.Published))
	assert.Empty(t, view.ComingSoon)
}

func TestResolvePublication_DraftsWithoutDocumentIDAlwaysSurface(t *testing.T) {
	all := []models.ArticleSummary{article("a", "a", at("2024-01-01"))}
	drafts := []models.ArticleSummary{
		{Title: "untitled one"},
		{Title: "untitled two"},
	}

	view := ResolvePublication(all, drafts, testNow)

	require.Len(t, view.ComingSoon, 2)
	assert.Equal(t, "untitled one", view.ComingSoon[0].Title)
	assert.Equal(t, "untitled two", view.ComingSoon[1].Title)
}

func TestResolvePublication_CollapsesRepeatedDocumentIDs(t *testing.T) {
	all := []models.ArticleSummary{
		article("a", "a-old", at("2024-01-01")),
		article("a", "a-new", at("2024-04-01")),
	}
	drafts := []models.ArticleSummary{
		article("d", "", nil),
		article("d", "", nil),
	}

	view := ResolvePublication(all, drafts, testNow)

	require.Len(t, view.Published, 1)
	assert.Equal(t, "a-new", view.Published[0].Slug)
	assert.Equal(t, []string{"d"}, ids(view.ComingSoon))
}

func TestResolverResolve_QueriesBothSources(t *testing.T) {
	src := &fakeSource{
		all:    []models.ArticleSummary{article("a", "hello", at("2024-01-01"))},
		drafts: []models.ArticleSummary{article("b", "", nil)},
	}
	r := NewResolver(src, logging.Discard()).WithClock(func() time.Time { return testNow })

	view := r.Resolve(context.Background())

	assert.Equal(t, int32(1), src.allCalls.Load())
	assert.Equal(t, int32(1), src.draftCalls.Load())
	assert.Equal(t, []string{"a"}, ids(view.Published))
	assert.Equal(t, []string{"b"}, ids(view.ComingSoon))
}

// rendezvousSource only answers once both queries are in flight.
type rendezvousSource struct {
	allStarted   chan struct{}
	draftStarted chan struct{}
	timeout      time.Duration

	allSawDraft atomic.Bool
	draftSawAll atomic.Bool
}

func newRendezvousSource() *rendezvousSource {
	return &rendezvousSource{
		allStarted:   make(chan struct{}),
		draftStarted: make(chan struct{}),
		timeout:      2 * time.Second,
	}
}

func (r *rendezvousSource) FetchAllArticles(context.Context) []models.ArticleSummary {
	close(r.allStarted)
	select {
	case <-r.draftStarted:
		r.allSawDraft.Store(true)
	case <-time.After(r.timeout):
	}
	return []models.ArticleSummary{article("a", "hello", at("2024-01-01"))}
}

func (r *rendezvousSource) FetchDraftArticles(context.Context) []models.ArticleSummary {
	close(r.draftStarted)
	select {
	case <-r.allStarted:
		r.draftSawAll.Store(true)
	case <-time.After(r.timeout):
	}
	return []models.ArticleSummary{article("b", "", nil)}
}

func TestResolverResolve_QueriesRunConcurrently(t *testing.T) {
	src := newRendezvousSource()
	r := NewResolver(src, logging.Discard()).WithClock(func() time.Time { return testNow })

	done := make(chan models.PublicationView, 1)
	go func() { done <- r.Resolve(context.Background()) }()

	var view models.PublicationView
	select {
	case view = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Resolve did not return")
	}

	assert.True(t, src.allSawDraft.Load(), "all query finished without the draft query in flight")
	assert.True(t, src.draftSawAll.Load(), "draft query finished without the all query in flight")
	assert.Equal(t, []string{"a"}, ids(view.Published))
	assert.Equal(t, []string{"b"}, ids(view.ComingSoon))
}

func TestResolverResolve_EmptySources(t *testing.T) {
	r := NewResolver(&fakeSource{}, logging.Discard())

	view := r.Resolve(context.Background())

	assert.Empty(t, view.Published)
	assert.Empty(t, view.ComingSoon)
}

func TestCountScheduledOutsideDrafts(t *testing.T) {
	future := testNow.Add(time.Hour)
	all := []models.ArticleSummary{
		article("s1", "s1", &future),
		article("s2", "s2", &future),
		article("p", "p", at("2024-01-01")),
	}
	drafts := []models.ArticleSummary{article("s2", "s2", nil)}

	assert.Equal(t, 1, countScheduledOutsideDrafts(all, drafts, testNow))
}
