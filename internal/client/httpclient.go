package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// maxRedirects bounds how many redirects a single API call follows.
const maxRedirects = 5

var ErrTooManyRedirects = errors.New("too many redirects")

// CreateHTTPClient initializes an HTTP client with a request timeout and a bounded, logged redirect policy.
func CreateHTTPClient(log *slog.Logger, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped at %s after %d", ErrTooManyRedirects, req.URL.Redacted(), len(via))
			}
			log.Debug("Redirected to URL", "URL", req.URL, "hops", len(via))

			return nil
		},
	}
}
