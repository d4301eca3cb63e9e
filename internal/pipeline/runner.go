// Package pipeline orchestrates one digest run: fetch the feed, filter
// out previously seen articles, and only when something new appeared,
// render and dispatch the digest. The whole run is a straight-line
// sequence with that single conditional branch; nothing is retried and
// no intermediate state is kept beyond the store writes.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"arsdigest/internal/delivery"
	"arsdigest/internal/digest"
	"arsdigest/internal/types"
)

// FeedSource produces the current article sequence from the remote feed.
type FeedSource interface {
	Fetch(ctx context.Context, url string) ([]types.Article, error)
}

// ArticleStore partitions articles into seen and new, durably recording
// the new ones.
type ArticleStore interface {
	FilterNew(ctx context.Context, articles []types.Article) ([]types.Article, error)
}

// DigestRenderer turns new articles plus today's date into the email
// document.
type DigestRenderer interface {
	Render(items []types.Article, now time.Time) (digest.RenderedEmail, error)
}

// DigestDispatcher performs the best-effort send.
type DigestDispatcher interface {
	Dispatch(ctx context.Context, content digest.RenderedEmail) delivery.Outcome
}

// Report summarizes one run for logging and tests.
type Report struct {
	Fetched   int
	New       int
	Delivered bool
	MessageID string
}

// Runner wires the four stages together. Fetch and storage failures
// abort the run; delivery failures are recorded in the Report and the
// Outcome log, never returned.
type Runner struct {
	feedURL    string
	source     FeedSource
	store      ArticleStore
	renderer   DigestRenderer
	dispatcher DigestDispatcher
	now        func() time.Time
	logger     *slog.Logger
}

// RunnerConfig holds the dependencies for constructing a Runner.
type RunnerConfig struct {
	FeedURL    string
	Source     FeedSource
	Store      ArticleStore
	Renderer   DigestRenderer
	Dispatcher DigestDispatcher
	// Now supplies the calendar date for the digest header; defaults to
	// time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		feedURL:    cfg.FeedURL,
		source:     cfg.Source,
		store:      cfg.Store,
		renderer:   cfg.Renderer,
		dispatcher: cfg.Dispatcher,
		now:        now,
		logger:     logger,
	}
}

// Run executes one digest cycle. The returned error is non-nil only for
// fetch, storage, or render failures; a failed send still yields a nil
// error, with the failure visible in the Report.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	articles, err := r.source.Fetch(ctx, r.feedURL)
	if err != nil {
		return Report{}, err
	}

	fresh, err := r.store.FilterNew(ctx, articles)
	if err != nil {
		return Report{Fetched: len(articles)}, err
	}

	report := Report{Fetched: len(articles), New: len(fresh)}

	if len(fresh) == 0 {
		r.logger.InfoContext(ctx, "no new articles, skipping digest",
			"fetched", report.Fetched,
		)
		return report, nil
	}

	content, err := r.renderer.Render(fresh, r.now())
	if err != nil {
		return report, err
	}

	outcome := r.dispatcher.Dispatch(ctx, content)
	report.Delivered = outcome.Delivered
	report.MessageID = outcome.MessageID

	r.logger.InfoContext(ctx, "digest run complete",
		"fetched", report.Fetched,
		"new", report.New,
		"delivered", report.Delivered,
	)

	return report, nil
}
