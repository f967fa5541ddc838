package remote

import (
	"errors"
	"fmt"
)

var errNotArray = errors.New("expected a JSON array")

// NetworkError means a request to the remote could not complete or did not return 200.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("error fetching %s: got status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("error fetching %s: %v", e.URL, e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the contents API answered with something other than a JSON array.
type MalformedResponseError struct {
	URL string
	Err error
}

func (e MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

func (e MalformedResponseError) Unwrap() error {
	return e.Err
}
