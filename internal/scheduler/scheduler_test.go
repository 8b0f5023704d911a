package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdeck/newswire/internal/apperr"
	"github.com/newsdeck/newswire/internal/domain"
	"github.com/newsdeck/newswire/internal/storage"
	"github.com/newsdeck/newswire/internal/storage/inmem"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	items []domain.RawItem
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *fakePublisher) Publish(room string, event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) byType(t domain.EventType) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func rawItem(title, link string) domain.RawItem {
	return domain.RawItem{
		Title:       title,
		Description: title + " description text",
		Link:        link,
		Category:    "technology",
	}
}

func newTestScheduler(f *fakeFetcher, opts ...Option) (*Scheduler, *inmem.Repository, *fakePublisher, *fakeClock) {
	repo := inmem.NewRepository()
	pub := &fakePublisher{}
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(f, repo, pub, opts...), repo, pub, clock
}

func TestTick_PersistsAndPublishesSingleArticle(t *testing.T) {
	f := &fakeFetcher{items: []domain.RawItem{rawItem("Fed raises interest rates again", "https://a.example/1")}}
	s, repo, pub, _ := newTestScheduler(f)

	result, err := s.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Added)

	all, err := repo.FindAll(context.Background(), storage.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusPublished, all[0].Status)

	events := pub.byType(domain.EventNewArticle)
	require.Len(t, events, 1)
}

func TestTick_PublishesBulkUpdateForMultipleArticles(t *testing.T) {
	f := &fakeFetcher{items: []domain.RawItem{
		rawItem("Quarterly earnings beat analyst expectations", "https://a.example/1"),
		rawItem("Volcano eruption forces island evacuation", "https://b.example/2"),
	}}
	s, _, pub, _ := newTestScheduler(f)

	result, err := s.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)

	bulks := pub.byType(domain.EventBulkUpdate)
	require.Len(t, bulks, 1)
	payload, ok := bulks[0].Payload.(domain.BulkPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.Count)
	assert.Empty(t, pub.byType(domain.EventNewArticle))
}

func TestTick_DedupesWithinSameTick(t *testing.T) {
	f := &fakeFetcher{items: []domain.RawItem{
		rawItem("Coca-Cola Releases New Cane Sugar Coke", "https://a.example/1"),
		rawItem("Coca Cola release new cane sugar coke", "https://b.example/2"),
	}}
	s, repo, _, _ := newTestScheduler(f)

	result, err := s.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Duplicates)

	all, _ := repo.FindAll(context.Background(), storage.Filter{})
	assert.Len(t, all, 1)
}

func TestTick_DedupesAgainstExistingCorpus(t *testing.T) {
	f := &fakeFetcher{items: []domain.RawItem{rawItem("Fed raises interest rates again", "https://a.example/1")}}
	s, repo, _, _ := newTestScheduler(f)

	_, err := repo.Create(context.Background(), domain.Article{
		Title:     "fed raises interest rates again",
		SourceURL: "https://older.example/1",
		Status:    domain.StatusPublished,
	})
	require.NoError(t, err)

	result, err := s.Tick(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result.Added)
	assert.Equal(t, 1, result.Duplicates)
}

func TestTick_InvalidItemSkippedBatchContinues(t *testing.T) {
	f := &fakeFetcher{items: []domain.RawItem{
		{Description: "item with no title"},
		rawItem("Valid headline survives the batch", "https://a.example/1"),
	}}
	s, _, _, _ := newTestScheduler(f)

	result, err := s.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Invalid)
	assert.Equal(t, 1, result.Added)
}

func TestTick_BudgetCeiling(t *testing.T) {
	f := &fakeFetcher{}
	s, _, _, _ := newTestScheduler(f)

	for i := 0; i < MaxDailyCalls; i++ {
		_, err := s.Tick(context.Background())
		require.NoError(t, err)
	}
	require.Equal(t, MaxDailyCalls, f.Calls())

	_, err := s.Tick(context.Background())

	assert.ErrorIs(t, err, apperr.ErrBudgetExhausted)
	assert.Equal(t, MaxDailyCalls, f.Calls(), "provider must not be contacted past the budget")
	assert.Equal(t, MaxDailyCalls, s.Status().DailyCallCount)
	assert.Zero(t, s.Status().RemainingCalls)
}

func TestTick_BudgetRollsOverAfter24h(t *testing.T) {
	f := &fakeFetcher{}
	s, _, _, clock := newTestScheduler(f)

	for i := 0; i < MaxDailyCalls; i++ {
		_, err := s.Tick(context.Background())
		require.NoError(t, err)
	}
	_, err := s.Tick(context.Background())
	require.ErrorIs(t, err, apperr.ErrBudgetExhausted)

	clock.Advance(25 * time.Hour)

	_, err = s.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Status().DailyCallCount)
}

func TestTick_ProviderFailureStillCountsAgainstBudget(t *testing.T) {
	f := &fakeFetcher{err: errors.New("connection refused")}
	s, _, _, _ := newTestScheduler(f)

	_, err := s.Tick(context.Background())

	require.Error(t, err)
	var pe *apperr.ProviderError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, s.Status().DailyCallCount, "a spent call is spent even on failure")
}

func TestStatus_AfterFiveTicks(t *testing.T) {
	f := &fakeFetcher{}
	s, _, _, _ := newTestScheduler(f)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	for i := 0; i < 5; i++ {
		_, err := s.Tick(context.Background())
		require.NoError(t, err)
	}

	status := s.Status()
	assert.True(t, status.IsRunning)
	assert.Equal(t, 5, status.DailyCallCount)
	assert.Equal(t, 19, status.RemainingCalls)
}

func TestStartStop_Transitions(t *testing.T) {
	f := &fakeFetcher{}
	s, _, _, _ := newTestScheduler(f, WithTickInterval(time.Hour))

	assert.False(t, s.Status().IsRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Status().IsRunning)
	assert.ErrorIs(t, s.Start(context.Background()), apperr.ErrSchedulerRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.Status().IsRunning)
	assert.ErrorIs(t, s.Stop(), apperr.ErrSchedulerStopped)
}

func TestTick_DraftModeWhenAutoPublishDisabled(t *testing.T) {
	f := &fakeFetcher{items: []domain.RawItem{rawItem("Manual review headline", "https://a.example/1")}}
	s, repo, _, _ := newTestScheduler(f, WithAutoPublish(false))

	_, err := s.Tick(context.Background())
	require.NoError(t, err)

	all, _ := repo.FindAll(context.Background(), storage.Filter{})
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusDraft, all[0].Status)
}

func TestTick_BreakingCategoryPublishesBreakingNews(t *testing.T) {
	f := &fakeFetcher{items: []domain.RawItem{rawItem("Severe storm warning issued", "https://a.example/1")}}
	s, _, pub, _ := newTestScheduler(f, WithBreakingCategories([]string{"technology"}))

	_, err := s.Tick(context.Background())
	require.NoError(t, err)

	breaking := pub.byType(domain.EventBreakingNews)
	require.Len(t, breaking, 1)
	assert.True(t, breaking[0].Breaking)
}

func TestTick_PublishesAPIStatus(t *testing.T) {
	f := &fakeFetcher{}
	s, _, pub, _ := newTestScheduler(f)

	_, err := s.Tick(context.Background())
	require.NoError(t, err)

	statuses := pub.byType(domain.EventAPIStatus)
	require.NotEmpty(t, statuses)
	payload, ok := statuses[0].Payload.(Status)
	require.True(t, ok)
	assert.Equal(t, 1, payload.DailyCallCount)
}

// conflictRepo simulates a store-level uniqueness rejection that the
// in-memory dedup pass could not see.
type conflictRepo struct {
	*inmem.Repository
	conflicts map[string]struct{}
}

func (r *conflictRepo) Create(ctx context.Context, article domain.Article) (uuid.UUID, error) {
	if _, ok := r.conflicts[article.Title]; ok {
		return uuid.UUID{}, storage.ErrDuplicate
	}
	return r.Repository.Create(ctx, article)
}

func TestTick_StorageConflictCountedAsDuplicate(t *testing.T) {
	f := &fakeFetcher{items: []domain.RawItem{
		rawItem("Senate passes infrastructure spending bill", "https://a.example/1"),
		rawItem("Rare comet visible over northern hemisphere", "https://b.example/2"),
	}}
	repo := &conflictRepo{
		Repository: inmem.NewRepository(),
		conflicts:  map[string]struct{}{"Senate passes infrastructure spending bill": {}},
	}
	pub := &fakePublisher{}
	s := New(f, repo, pub, WithClock(newFakeClock()))

	result, err := s.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Failed)

	// Only the persisted article is broadcast.
	events := pub.byType(domain.EventNewArticle)
	require.Len(t, events, 1)
}
