package balldontlie

import (
	"fmt"
	"net/http"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrMissingAPIKey        = crerr.New("balldontlie api key is not configured")
	ErrMalformedResponse    = crerr.New("balldontlie returned a malformed response")
	ErrPageLimitExceeded    = crerr.New("balldontlie pagination did not terminate")
	errBalldontlieTransient = crerr.New("balldontlie transient failure")
)

// StatusError is a non-2xx response. Body is abbreviated.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("balldontlie status=%d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("balldontlie status=%d %s body=%s", e.StatusCode, e.Status, e.Body)
}

// Retryable reports 429 and 5xx responses.
func (e *StatusError) Retryable() bool {
	return isRetryableStatus(e.StatusCode)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if crerr.Is(err, errBalldontlieTransient) {
		return true
	}
	var statusErr *StatusError
	return crerr.As(err, &statusErr) && statusErr.Retryable()
}
