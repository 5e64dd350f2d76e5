package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akili/internal/articles"
	"akili/internal/events"
	"akili/internal/testutil"
	"akili/pkg/models"
)

type fakeProvider struct {
	items []Item
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(context.Context, Params) ([]Item, error) {
	p.calls++
	return p.items, p.err
}

type classifierFunc func(text string) (string, error)

func (f classifierFunc) Classify(_ context.Context, text string) (string, error) { return f(text) }

// memStore is an in-memory Store with an optional write failure per title.
type memStore struct {
	mu        sync.Mutex
	titles    map[string]bool
	created   []models.Article
	failWrite map[string]bool
}

func newMemStore(existing ...string) *memStore {
	s := &memStore{titles: map[string]bool{}, failWrite: map[string]bool{}}
	for _, t := range existing {
		s.titles[t] = true
	}
	return s
}

func (s *memStore) ExistsByTitle(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.titles[title], nil
}

func (s *memStore) Create(_ context.Context, a *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite[a.Title] {
		return errors.New("disk full")
	}
	a.ID = fmt.Sprintf("id-%d", len(s.created)+1)
	s.titles[a.Title] = true
	s.created = append(s.created, *a)
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) Publish(ev events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(p Provider, c Classifier, store Store, pub events.Publisher) *Service {
	svc := NewService(p, c, store, pub, nil)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func TestRunThreeItemScenario(t *testing.T) {
	provider := &fakeProvider{items: []Item{
		{Title: "Fed holds rates", ShortDescription: "Central bank pauses", URL: "https://n.test/1", TopImage: "https://img.test/1.jpg", Source: "Reuters", PublishDate: "2025-05-30T10:00:00Z"},
		{Title: "Already stored", ShortDescription: "old news", URL: "https://n.test/2"},
		{Title: "Olympic final tonight", ShortDescription: "Tennis stars meet", URL: "https://n.test/3"},
	}}
	classifier := classifierFunc(func(text string) (string, error) {
		if text == "Fed holds rates. Central bank pauses" {
			return "Finance", nil
		}
		return "", errors.New("quota exceeded")
	})
	store := newMemStore("Already stored")
	pub := &eventLog{}

	res, err := newTestService(provider, classifier, store, pub).Run(context.Background(), Params{})
	require.NoError(t, err)

	want := []models.Article{
		{
			Title: "Fed holds rates", Content: "Central bank pauses", Excerpt: "Central bank pauses",
			Author: "Reuters", PublishDate: "2025-05-30T10:00:00Z", Category: "Finance",
			ImageURL: "https://img.test/1.jpg", Tags: []string{}, ReadTime: "5 min read",
			Status: models.StatusPublished, SourceURL: "https://n.test/1",
		},
		{
			Title: "Olympic final tonight", Content: "Tennis stars meet", Excerpt: "Tennis stars meet",
			Author: "Unknown", PublishDate: "2025-06-01T12:00:00Z", Category: "Sports",
			ImageURL: "/api/placeholder/800/500", Tags: []string{}, ReadTime: "5 min read",
			Status: models.StatusPublished, SourceURL: "https://n.test/3",
		},
	}

	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Failed)
	if diff := cmp.Diff(want, res.Items, cmpopts.IgnoreFields(models.Article{}, "ID", "CreatedAt", "UpdatedAt")); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.IngestCompleted, pub.events[0].Type)
	assert.Len(t, pub.events[0].IDs, 2)
}

func TestRunIsIdempotent(t *testing.T) {
	repo := articles.NewRepo(testutil.NewDB(t))
	provider := &fakeProvider{items: []Item{
		{Title: "Senate passes budget", ShortDescription: "vote tally"},
		{Title: "New chip unveiled", ShortDescription: "faster"},
	}}
	svc := newTestService(provider, nil, repo, nil)

	first, err := svc.Run(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	second, err := svc.Run(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.Skipped)
	assert.Empty(t, second.Items)

	total, err := repo.Count(context.Background(), articles.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	stored, err := repo.List(context.Background(), articles.ListQuery{OrderBy: articles.OrderCreatedAt})
	require.NoError(t, err)
	cats := map[string]string{}
	for _, a := range stored {
		cats[a.Title] = a.Category
	}
	assert.Equal(t, map[string]string{"Senate passes budget": "Politics", "New chip unveiled": "Tech"}, cats)
}

func TestRunDedupsWithinBatch(t *testing.T) {
	provider := &fakeProvider{items: []Item{
		{Title: "Same story", Source: "first"},
		{Title: "Same story", Source: "second"},
		{Title: "  "},
		{Title: "Other story"},
	}}
	store := newMemStore()

	svc := newTestService(provider, nil, store, nil)
	svc.Concurrency = 8
	res, err := svc.Run(context.Background(), Params{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Same story", res.Items[0].Title)
	assert.Equal(t, "first", res.Items[0].Author)
	assert.Equal(t, "Other story", res.Items[1].Title)
}

func TestRunIsolatesItemFailures(t *testing.T) {
	provider := &fakeProvider{items: []Item{
		{Title: "one"}, {Title: "two"}, {Title: "three"},
	}}
	store := newMemStore()
	store.failWrite["two"] = true

	res, err := newTestService(provider, nil, store, nil).Run(context.Background(), Params{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Added)
	assert.Equal(t, []Failure{{Title: "two", Error: "disk full"}}, res.Failed)
	assert.Equal(t, "one", res.Items[0].Title)
	assert.Equal(t, "three", res.Items[1].Title)
}

func TestRunProviderErrorAbortsBeforeWrites(t *testing.T) {
	provider := &fakeProvider{err: errors.New("newsnow: status 429: slow down")}
	store := newMemStore()
	pub := &eventLog{}

	res, err := newTestService(provider, nil, store, pub).Run(context.Background(), Params{})
	require.EqualError(t, err, "newsnow: status 429: slow down")
	assert.Equal(t, 0, res.Added)
	assert.Empty(t, store.created)
	assert.Empty(t, pub.events)
}

func TestRunSequentialKeepsOrder(t *testing.T) {
	var items []Item
	for i := 0; i < 20; i++ {
		items = append(items, Item{Title: fmt.Sprintf("story %02d", i)})
	}
	store := newMemStore()
	svc := newTestService(&fakeProvider{items: items}, nil, store, nil)
	svc.Concurrency = 1

	res, err := svc.Run(context.Background(), Params{})
	require.NoError(t, err)
	require.Len(t, store.created, 20)
	for i := range items {
		assert.Equal(t, items[i].Title, store.created[i].Title)
		assert.Equal(t, items[i].Title, res.Items[i].Title)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newMemStore()
	_, err := newTestService(&fakeProvider{items: []Item{{Title: "x"}}}, nil, store, nil).Run(ctx, Params{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.created)
}
