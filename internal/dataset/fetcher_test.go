package dataset_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"aitools.app/recommender/internal/dataset"
)

var _ = Describe("HTTPFetcher", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)
	})

	It("returns the body and content type", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			_, _ = w.Write([]byte("name\nFoo\n"))
		}

		payload, err := dataset.NewHTTPFetcher(time.Second).Fetch(context.Background(), server.URL)

		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload.Body)).To(Equal("name\nFoo\n"))
		Expect(payload.ContentType).To(Equal("text/csv; charset=utf-8"))
	})

	It("reports non-success statuses with the status code", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}

		_, err := dataset.NewHTTPFetcher(time.Second).Fetch(context.Background(), server.URL)

		var fetchErr *dataset.FetchError
		Expect(errors.As(err, &fetchErr)).To(BeTrue())
		Expect(fetchErr.StatusCode).To(Equal(http.StatusNotFound))
		Expect(errors.Is(err, dataset.ErrFetch)).To(BeTrue())
	})

	It("gives up after the timeout", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}

		_, err := dataset.NewHTTPFetcher(50*time.Millisecond).Fetch(context.Background(), server.URL)

		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, dataset.ErrFetch)).To(BeTrue())
	})

	It("wraps transport failures", func() {
		_, err := dataset.NewHTTPFetcher(time.Second).Fetch(context.Background(), "http://127.0.0.1:1/tools.csv")

		Expect(errors.Is(err, dataset.ErrFetch)).To(BeTrue())
	})
})
