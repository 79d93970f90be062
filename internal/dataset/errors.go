package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured marks errors caused by a missing deployment setting.
	ErrNotConfigured = errors.New("configuration error")
	ErrNoSource      = fmt.Errorf("%w: no data source configured (DATA_URL)", ErrNotConfigured)

	ErrFetch = errors.New("fetching dataset")
	ErrParse = errors.New("parsing dataset")
)

// FetchError reports a non-success status from the dataset source.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: source returned status %d", ErrFetch, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return ErrFetch
}
