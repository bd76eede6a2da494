package summarizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when a run is requested over input that contains
// no analyzable text. It is raised before any model call is made.
var ErrEmptyInput = errors.New("no analyzable text in input")

// RateLimitError reports that the remote backend kept throttling the call
// after all retry attempts were spent.
type RateLimitError struct {
	Purpose  string
	Attempts int
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts for %s: consider reducing chunk size, slowing requests, or upgrading quota: %v",
		e.Attempts, e.Purpose, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateOrQuota reports whether err looks like a throttling or quota
// condition. Besides the typed error it also sniffs the message text, since
// errors crossing the backend boundary may arrive flattened to strings.
func IsRateOrQuota(err error) bool {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate") || strings.Contains(msg, "quota")
}
