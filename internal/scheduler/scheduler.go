package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/newsdeck/newswire/internal/apperr"
	"github.com/newsdeck/newswire/internal/dedup"
	"github.com/newsdeck/newswire/internal/domain"
	"github.com/newsdeck/newswire/internal/normalize"
	"github.com/newsdeck/newswire/internal/provider"
	"github.com/newsdeck/newswire/internal/storage"
)

const (
	// MaxDailyCalls caps provider calls per rolling 24h window.
	MaxDailyCalls = 24

	budgetWindow        = 24 * time.Hour
	defaultTickInterval = time.Hour
	defaultFetchTimeout = 20 * time.Second
)

// Publisher is the hub-facing port; the scheduler never blocks on it.
type Publisher interface {
	Publish(room string, event domain.Event)
}

// Clock is injectable for deterministic budget-window tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Status is the read-only scheduler state exposed to the admin surface.
type Status struct {
	IsRunning      bool `json:"isRunning"`
	DailyCallCount int  `json:"dailyCallCount"`
	RemainingCalls int  `json:"remainingCalls"`
}

// TickResult reports what one ingestion tick did.
type TickResult struct {
	Fetched    int `json:"fetched"`
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	Failed     int `json:"failed"`
}

// state holds the budget accounting; guarded by stateMu so Status stays
// readable while a tick is in flight.
type state struct {
	isRunning      bool
	dailyCallCount int
	windowStart    time.Time
}

// Scheduler owns the daily call budget and drives the ingestion pipeline:
// provider fetch -> normalize -> dedupe -> persist -> broadcast.
type Scheduler struct {
	fetcher    provider.Fetcher
	repo       storage.ArticleRepository
	publisher  Publisher
	normalizer *normalize.Normalizer
	clock      Clock

	tickInterval time.Duration
	fetchTimeout time.Duration
	autoPublish  bool
	breakingCats map[string]struct{}

	// tickMu serializes ticks: a manual fetch never overlaps a timed one.
	tickMu  sync.Mutex
	stateMu sync.Mutex
	state   state

	stopCh chan struct{}
	doneCh chan struct{}
}

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.tickInterval = d }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.fetchTimeout = d }
}

// WithAutoPublish selects whether survivors are persisted as PUBLISHED
// (ingestion path) or left as DRAFT for manual review.
func WithAutoPublish(enabled bool) Option {
	return func(s *Scheduler) { s.autoPublish = enabled }
}

// WithBreakingCategories marks categories whose articles are broadcast
// as breaking-news.
func WithBreakingCategories(categories []string) Option {
	return func(s *Scheduler) {
		for _, c := range categories {
			s.breakingCats[c] = struct{}{}
		}
	}
}

func New(fetcher provider.Fetcher, repo storage.ArticleRepository, publisher Publisher, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:      fetcher,
		repo:         repo,
		publisher:    publisher,
		normalizer:   normalize.New(),
		clock:        systemClock{},
		tickInterval: defaultTickInterval,
		fetchTimeout: defaultFetchTimeout,
		autoPublish:  true,
		breakingCats: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.state.windowStart = s.clock.Now()
	s.normalizer.Clock = s.clock.Now

	return s
}

// Start begins periodic ticking. Hourly by default, spending the 24-call
// daily budget evenly.
func (s *Scheduler) Start(ctx context.Context) error {
	s.stateMu.Lock()
	if s.state.isRunning {
		s.stateMu.Unlock()
		return apperr.ErrSchedulerRunning
	}
	s.state.isRunning = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.stateMu.Unlock()

	go s.loop(ctx, s.stopCh, s.doneCh)
	slog.Info("Scheduler started", "interval", s.tickInterval)

	return nil
}

// Stop cancels the periodic timer. An in-flight tick finishes.
func (s *Scheduler) Stop() error {
	s.stateMu.Lock()
	if !s.state.isRunning {
		s.stateMu.Unlock()
		return apperr.ErrSchedulerStopped
	}
	s.state.isRunning = false
	close(s.stopCh)
	done := s.doneCh
	s.stateMu.Unlock()

	<-done
	slog.Info("Scheduler stopped")

	return nil
}

func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				slog.Error("Scheduled tick failed", "error", err)
			}
		}
	}
}

// Status returns the current read model. Side-effect-free and available
// even while a tick is in flight or failing.
func (s *Scheduler) Status() Status {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	return Status{
		IsRunning:      s.state.isRunning,
		DailyCallCount: s.state.dailyCallCount,
		RemainingCalls: MaxDailyCalls - s.state.dailyCallCount,
	}
}

// Tick runs one ingestion attempt. Callable whether or not the periodic
// loop is running (manual fetch); ticks serialize on a single guard.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	var result TickResult

	if err := s.spendBudgetCall(); err != nil {
		return result, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	raws, err := s.fetcher.Fetch(fetchCtx)
	cancel()
	if err != nil {
		// The spent call still counts against the budget.
		s.publishStatus()
		var pe *apperr.ProviderError
		if errors.As(err, &pe) {
			return result, err
		}
		return result, apperr.NewProvider(err)
	}
	result.Fetched = len(raws)

	corpus, err := s.repo.FindAll(ctx, storage.Filter{})
	if err != nil {
		return result, fmt.Errorf("failed to load corpus: %w", err)
	}

	var added []domain.Article
	for _, raw := range raws {
		article, err := s.normalizer.Normalize(raw)
		if err != nil {
			result.Invalid++
			slog.Debug("Skipping invalid item", "error", err, "link", raw.Link)
			continue
		}

		// Dedupe against the known corpus, including items admitted
		// earlier in this same tick.
		decision := dedup.Dedupe(corpus, article)
		if !decision.Keep {
			result.Duplicates++
			slog.Debug("Dropping duplicate item", "title", article.Title, "reason", decision.Reason)
			continue
		}

		if s.autoPublish {
			article.Status = domain.StatusPublished
		}

		if _, err := s.repo.Create(ctx, article); err != nil {
			// A uniqueness conflict in the store is a duplicate that the
			// in-memory pass could not see, not a persistence failure.
			if errors.Is(err, storage.ErrDuplicate) {
				result.Duplicates++
				slog.Debug("Dropping duplicate item", "title", article.Title, "reason", "storage conflict")
				continue
			}
			result.Failed++
			slog.Error("Failed to persist article", "error", apperr.NewPersistence(article.Title, err))
			continue
		}

		corpus = append(corpus, article)
		added = append(added, article)
	}
	result.Added = len(added)

	s.broadcast(added)
	s.publishStatus()

	slog.Info("Tick completed",
		"fetched", result.Fetched,
		"added", result.Added,
		"duplicates", result.Duplicates,
		"invalid", result.Invalid,
		"failed", result.Failed,
	)

	return result, nil
}

// spendBudgetCall lazily rolls the 24h window, then either rejects the
// attempt or counts the call. A counted call is spent even if the fetch
// later fails.
func (s *Scheduler) spendBudgetCall() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	now := s.clock.Now()
	if now.Sub(s.state.windowStart) > budgetWindow {
		s.state.dailyCallCount = 0
		s.state.windowStart = now
		slog.Info("Budget window rolled", "windowStart", now)
	}

	if s.state.dailyCallCount >= MaxDailyCalls {
		return apperr.ErrBudgetExhausted
	}
	s.state.dailyCallCount++

	return nil
}

func (s *Scheduler) broadcast(added []domain.Article) {
	if s.publisher == nil || len(added) == 0 {
		return
	}

	now := s.clock.Now()
	if len(added) == 1 {
		a := added[0]
		_, breaking := s.breakingCats[a.Category]
		s.publisher.Publish(domain.DefaultRoom, domain.NewArticleEvent(a, breaking, now))
		return
	}

	s.publisher.Publish(domain.DefaultRoom, domain.NewBulkUpdateEvent(added, now))
}

func (s *Scheduler) publishStatus() {
	if s.publisher == nil {
		return
	}

	s.publisher.Publish(domain.DefaultRoom, domain.Event{
		Type:      domain.EventAPIStatus,
		Timestamp: s.clock.Now(),
		Payload:   s.Status(),
	})
}
