package graphql

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheMiss is returned under CacheOnly when the cache has no entry
	// for the request.
	ErrCacheMiss = errors.New("graphql: no cached result for request")

	// ErrNoClient is the error a Query settles on when its context carries
	// no Client.
	ErrNoClient = errors.New("graphql: no client in context; wrap it with NewContext")
)

// HTTPError represents an HTTP error with status code and response body.
type HTTPError struct {
	Body       string
	StatusCode int
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("returned error %v: %s", e.StatusCode, e.Body)
}
