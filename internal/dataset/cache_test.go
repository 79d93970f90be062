package dataset_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"aitools.app/recommender/internal/dataset"
	"aitools.app/recommender/internal/metrics"
	"aitools.app/recommender/internal/model"
)

type fakeFetcher struct {
	calls   atomic.Int32
	fetchFn func(ctx context.Context, url string) (*dataset.Payload, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*dataset.Payload, error) {
	f.calls.Add(1)
	return f.fetchFn(ctx, url)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func csvPayload(body string) func(context.Context, string) (*dataset.Payload, error) {
	return func(context.Context, string) (*dataset.Payload, error) {
		return &dataset.Payload{Body: []byte(body), ContentType: "text/csv"}, nil
	}
}

var _ = Describe("Cache", func() {
	var (
		ctx     context.Context
		fetcher *fakeFetcher
		clock   *fakeClock
		cache   *dataset.Cache
	)

	BeforeEach(func() {
		ctx = context.Background()
		fetcher = &fakeFetcher{fetchFn: csvPayload("nombre,nivel,enlace\nFoo,Easy,http://x\n")}
		clock = &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
		cache = dataset.NewCache(dataset.Options{
			SourceURL: "https://data.example.com/tools.csv",
			TTL:       300 * time.Second,
			Fetcher:   fetcher,
			Clock:     clock,
		})
	})

	Context("when no source is configured", func() {
		It("fails with a configuration error without fetching", func() {
			cache = dataset.NewCache(dataset.Options{Fetcher: fetcher, Clock: clock})

			rows, err := cache.Rows(ctx, false)

			Expect(rows).To(BeNil())
			Expect(err).To(MatchError(dataset.ErrNoSource))
			Expect(errors.Is(err, dataset.ErrNotConfigured)).To(BeTrue())
			Expect(fetcher.calls.Load()).To(BeZero())
		})
	})

	It("returns normalized rows", func() {
		rows, err := cache.Rows(ctx, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(Equal([]model.ToolRecord{{Name: "Foo", DifficultyLevel: "Easy", Link: "http://x"}}))
	})

	It("fetches once within the TTL window", func() {
		_, err := cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(299 * time.Second)
		_, err = cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(fetcher.calls.Load()).To(Equal(int32(1)))
	})

	It("refetches when forced", func() {
		_, err := cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())

		_, err = cache.Rows(ctx, true)
		Expect(err).NotTo(HaveOccurred())

		Expect(fetcher.calls.Load()).To(Equal(int32(2)))
	})

	It("refetches once the TTL has elapsed", func() {
		_, err := cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())

		fetcher.fetchFn = csvPayload("name\nBar\n")
		clock.Advance(300 * time.Second)
		rows, err := cache.Rows(ctx, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(ConsistOf(model.ToolRecord{Name: "Bar"}))
		Expect(fetcher.calls.Load()).To(Equal(int32(2)))
	})

	It("caches an empty dataset like any other", func() {
		fetcher.fetchFn = csvPayload("name,link\n")

		rows, err := cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())

		_, err = cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(fetcher.calls.Load()).To(Equal(int32(1)))
	})

	It("never caches when the TTL is zero", func() {
		cache = dataset.NewCache(dataset.Options{
			SourceURL: "https://data.example.com/tools.csv",
			Fetcher:   fetcher,
			Clock:     clock,
		})

		_, _ = cache.Rows(ctx, false)
		_, _ = cache.Rows(ctx, false)

		Expect(fetcher.calls.Load()).To(Equal(int32(2)))
	})

	Context("when a refresh fails", func() {
		BeforeEach(func() {
			_, err := cache.Rows(ctx, false)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the previous entry on a non-success status", func() {
			_, fetchedAt, _ := cache.Snapshot()
			fetcher.fetchFn = func(context.Context, string) (*dataset.Payload, error) {
				return nil, &dataset.FetchError{StatusCode: 503}
			}

			rows, err := cache.Rows(ctx, true)

			Expect(rows).To(BeNil())
			var fetchErr *dataset.FetchError
			Expect(errors.As(err, &fetchErr)).To(BeTrue())
			Expect(fetchErr.StatusCode).To(Equal(503))
			Expect(err.Error()).To(ContainSubstring("503"))

			cached, at, ok := cache.Snapshot()
			Expect(ok).To(BeTrue())
			Expect(at).To(Equal(fetchedAt))
			Expect(cached).To(ConsistOf(model.ToolRecord{Name: "Foo", DifficultyLevel: "Easy", Link: "http://x"}))
		})

		It("keeps the previous entry on malformed content", func() {
			cache = dataset.NewCache(dataset.Options{
				SourceURL: "https://data.example.com/tools.json",
				TTL:       300 * time.Second,
				Fetcher:   fetcher,
				Clock:     clock,
			})
			fetcher.fetchFn = func(context.Context, string) (*dataset.Payload, error) {
				return &dataset.Payload{Body: []byte(`[{"name":"Foo"}]`)}, nil
			}
			_, err := cache.Rows(ctx, false)
			Expect(err).NotTo(HaveOccurred())

			fetcher.fetchFn = func(context.Context, string) (*dataset.Payload, error) {
				return &dataset.Payload{Body: []byte(`{"oops":true}`)}, nil
			}
			_, err = cache.Rows(ctx, true)
			Expect(errors.Is(err, dataset.ErrParse)).To(BeTrue())

			cached, _, _ := cache.Snapshot()
			Expect(cached).To(ConsistOf(model.ToolRecord{Name: "Foo"}))
		})

		It("does not fall back to stale rows after expiry", func() {
			fetcher.fetchFn = func(context.Context, string) (*dataset.Payload, error) {
				return nil, &dataset.FetchError{StatusCode: 500}
			}
			clock.Advance(time.Hour)

			rows, err := cache.Rows(ctx, false)

			Expect(err).To(HaveOccurred())
			Expect(rows).To(BeNil())
		})
	})

	It("shares one fetch between concurrent cold readers", func() {
		release := make(chan struct{})
		fetcher.fetchFn = func(context.Context, string) (*dataset.Payload, error) {
			<-release
			return &dataset.Payload{Body: []byte("name\nFoo\n"), ContentType: "text/csv"}, nil
		}

		var wg sync.WaitGroup
		results := make(chan []model.ToolRecord, 10)
		for range 10 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				rows, err := cache.Rows(ctx, false)
				Expect(err).NotTo(HaveOccurred())
				results <- rows
			}()
		}

		Eventually(fetcher.calls.Load).Should(Equal(int32(1)))
		close(release)
		wg.Wait()
		close(results)

		Expect(fetcher.calls.Load()).To(Equal(int32(1)))
		for rows := range results {
			Expect(rows).To(ConsistOf(model.ToolRecord{Name: "Foo"}))
		}
	})

	It("returns when the caller gives up but still completes the refresh", func() {
		release := make(chan struct{})
		fetcher.fetchFn = func(context.Context, string) (*dataset.Payload, error) {
			<-release
			return &dataset.Payload{Body: []byte("name\nFoo\n"), ContentType: "text/csv"}, nil
		}

		callCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			_, err := cache.Rows(callCtx, false)
			done <- err
		}()

		Eventually(fetcher.calls.Load).Should(Equal(int32(1)))
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))

		close(release)
		Eventually(func() bool {
			_, _, ok := cache.Snapshot()
			return ok
		}).Should(BeTrue())
	})

	It("hands out copies of the cached rows", func() {
		rows, err := cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		rows[0].Name = "mutated"

		again, err := cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(again[0].Name).To(Equal("Foo"))
	})

	It("fetches for a forced read while a plain refresh is in flight", func() {
		_, err := cache.Rows(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		clock.Advance(301 * time.Second)

		plainStarted := make(chan struct{})
		release := make(chan struct{})
		fetcher.fetchFn = func(ctx context.Context, url string) (*dataset.Payload, error) {
			if fetcher.calls.Load() == 2 {
				close(plainStarted)
				<-release
			}
			return csvPayload("nombre\nBar\n")(ctx, url)
		}

		plainDone := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			_, err := cache.Rows(ctx, false)
			plainDone <- err
		}()
		Eventually(plainStarted).Should(BeClosed())

		forced := make(chan []model.ToolRecord, 1)
		go func() {
			defer GinkgoRecover()
			rows, err := cache.Rows(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			forced <- rows
		}()

		var rows []model.ToolRecord
		Eventually(forced).Should(Receive(&rows))
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Name).To(Equal("Bar"))
		Expect(fetcher.calls.Load()).To(Equal(int32(3)))

		close(release)
		Eventually(plainDone).Should(Receive(BeNil()))
	})

	It("records cache hits and fetches", func() {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		cache = dataset.NewCache(dataset.Options{
			SourceURL: "https://data.example.com/tools.csv",
			TTL:       time.Minute,
			Fetcher:   fetcher,
			Clock:     clock,
			Metrics:   m,
		})

		_, _ = cache.Rows(ctx, false)
		_, _ = cache.Rows(ctx, false)
		_, _ = cache.Rows(ctx, false)

		Expect(testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP recommender_dataset_cache_hits_total Dataset reads served from the in-memory cache
# TYPE recommender_dataset_cache_hits_total counter
recommender_dataset_cache_hits_total 2
# HELP recommender_dataset_fetches_total Dataset refreshes from the remote source by result and format
# TYPE recommender_dataset_fetches_total counter
recommender_dataset_fetches_total{format="csv",result="success"} 1
`), "recommender_dataset_cache_hits_total", "recommender_dataset_fetches_total")).To(Succeed())
	})
})
