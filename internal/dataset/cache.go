package dataset

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"aitools.app/recommender/common/logger"
	"aitools.app/recommender/internal/metrics"
	"aitools.app/recommender/internal/model"
)

const (
	DefaultTTL          = 300 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

// Clock abstracts time for TTL checks.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type Options struct {
	SourceURL    string
	TTL          time.Duration // <= 0 disables caching
	FetchTimeout time.Duration
	Fetcher      Fetcher // defaults to an HTTP fetcher bounded by FetchTimeout
	Clock        Clock   // defaults to time.Now
	Metrics      *metrics.Metrics
}

type entry struct {
	rows      []model.ToolRecord
	fetchedAt time.Time
}

// Cache serves the normalized dataset, refreshing it from the source when the
// cached copy is missing or older than the TTL. Failed refreshes leave the
// previous entry untouched.
type Cache struct {
	sourceURL    string
	ttl          time.Duration
	fetchTimeout time.Duration
	fetcher      Fetcher
	clock        Clock
	metrics      *metrics.Metrics

	mu    sync.RWMutex
	entry *entry
	group singleflight.Group
}

func NewCache(opts Options) *Cache {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Fetcher == nil {
		opts.Fetcher = NewHTTPFetcher(opts.FetchTimeout)
	}
	if opts.Clock == nil {
		opts.Clock = ClockFunc(time.Now)
	}

	return &Cache{
		sourceURL:    opts.SourceURL,
		ttl:          opts.TTL,
		fetchTimeout: opts.FetchTimeout,
		fetcher:      opts.Fetcher,
		clock:        opts.Clock,
		metrics:      opts.Metrics,
	}
}

// Rows returns the current dataset. With force, the TTL check is skipped and
// the source is always fetched. Concurrent refreshes of the same kind share one
// fetch; callers reading a fresh entry never wait on it.
func (c *Cache) Rows(ctx context.Context, force bool) ([]model.ToolRecord, error) {
	if c.sourceURL == "" {
		return nil, ErrNoSource
	}

	if !force {
		if rows, ok := c.fresh(); ok {
			c.metrics.CacheHit()
			return slices.Clone(rows), nil
		}
	}

	// Forced reads never join a non-forced flight, which may return the
	// entry without fetching.
	key := c.sourceURL
	if force {
		key += "#force"
	}

	// The shared refresh must not die with whichever caller started it.
	refreshCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if !force {
			if rows, ok := c.fresh(); ok {
				return rows, nil
			}
		}
		return c.refresh(refreshCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]model.ToolRecord)), nil
	}
}

// Snapshot returns the cached rows and their fetch time without touching the network.
func (c *Cache) Snapshot() ([]model.ToolRecord, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil {
		return nil, time.Time{}, false
	}
	return slices.Clone(c.entry.rows), c.entry.fetchedAt, true
}

func (c *Cache) fresh() ([]model.ToolRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil || c.ttl <= 0 {
		return nil, false
	}
	if c.clock.Now().Sub(c.entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.entry.rows, true
}

func (c *Cache) refresh(ctx context.Context) ([]model.ToolRecord, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SourceURL: logger.Ptr(redactURL(c.sourceURL)),
		Component: "recommender.dataset.cache",
	})

	sc := logger.StartSpan(ctx, "dataset.refresh", trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	ctx = sc.Context()

	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	start := time.Now()
	payload, err := c.fetcher.Fetch(ctx, c.sourceURL)
	if err != nil {
		sc.RecordError(err)
		c.metrics.ObserveFetch(metrics.ResultError, "", time.Since(start), 0)
		slog.WarnContext(ctx, "dataset fetch failed", "error", err)
		return nil, err
	}

	format := ClassifyFormat(c.sourceURL, payload.ContentType)
	ctx = logger.WithLogFields(ctx, logger.LogFields{Format: logger.Ptr(string(format))})

	rows, err := Parse(format, payload.Body)
	if err != nil {
		sc.RecordError(err)
		c.metrics.ObserveFetch(metrics.ResultError, string(format), time.Since(start), 0)
		slog.WarnContext(ctx, "dataset parse failed", "error", err, "bytes", len(payload.Body))
		return nil, err
	}

	c.mu.Lock()
	c.entry = &entry{rows: rows, fetchedAt: c.clock.Now()}
	c.mu.Unlock()

	sc.SetAttributes(
		attribute.String("dataset.format", string(format)),
		attribute.Int("dataset.rows", len(rows)),
	)
	c.metrics.ObserveFetch(metrics.ResultSuccess, string(format), time.Since(start), len(rows))
	slog.InfoContext(ctx, "dataset refreshed",
		"rows", len(rows),
		"bytes", len(payload.Body),
		"duration_ms", time.Since(start).Milliseconds())

	return rows, nil
}

// redactURL drops the query string, which often carries sheet keys or tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
