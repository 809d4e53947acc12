package usecase

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
)

// FetchError is a failed fetch of a mandatory entity kind. It aborts the analysis.
type FetchError struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s key=%s: %v", e.Kind, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
