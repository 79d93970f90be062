package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultMaxBodyBytes = 32 << 20

// Payload is a successfully downloaded dataset body.
type Payload struct {
	Body        []byte
	ContentType string
}

// Fetcher downloads the raw dataset. Implementations return *FetchError for
// non-success statuses and wrap transport failures with ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Payload, error)
}

type httpFetcher struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPFetcher returns a Fetcher backed by an instrumented http.Client.
// timeout bounds the whole request including reading the body.
func NewHTTPFetcher(timeout time.Duration) Fetcher {
	return &httpFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxBodyBytes: defaultMaxBodyBytes,
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrFetch, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrFetch, f.maxBodyBytes)
	}

	return &Payload{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
