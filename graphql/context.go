package graphql

import (
	"context"
	"fmt"
	"strings"
)

// FetchPolicy decides whether a request is answered from the cache, the
// network, or both.
type FetchPolicy int

const (
	// CacheFirst answers from the cache when it can and otherwise fetches
	// and caches the result.
	CacheFirst FetchPolicy = iota
	// NetworkOnly always fetches, then caches the result.
	NetworkOnly
	// CacheOnly never fetches; a miss is ErrCacheMiss.
	CacheOnly
	// NoCache always fetches and leaves the cache untouched.
	NoCache
)

var fetchPolicyNames = map[FetchPolicy]string{
	CacheFirst:  "cache-first",
	NetworkOnly: "network-only",
	CacheOnly:   "cache-only",
	NoCache:     "no-cache",
}

func (p FetchPolicy) String() string {
	if name, ok := fetchPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("FetchPolicy(%d)", int(p))
}

// ParseFetchPolicy accepts the names printed by FetchPolicy.String.  The
// empty string is CacheFirst.
func ParseFetchPolicy(s string) (FetchPolicy, error) {
	if s == "" {
		return CacheFirst, nil
	}
	for p, name := range fetchPolicyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown fetch policy %q", s)
}

type (
	clientKey      struct{}
	fetchPolicyKey struct{}
	cacheKeySink   struct{}
)

// NewContext returns a copy of ctx that carries client.  UseQuery finds its
// client this way.
func NewContext(ctx context.Context, client *Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// FromContext returns the client stored by NewContext, if any.
func FromContext(ctx context.Context) (*Client, bool) {
	client, ok := ctx.Value(clientKey{}).(*Client)
	return client, ok && client != nil
}

// WithFetchPolicyContext overrides the client's default fetch policy for
// requests made with the returned context.
func WithFetchPolicyContext(ctx context.Context, policy FetchPolicy) context.Context {
	return context.WithValue(ctx, fetchPolicyKey{}, policy)
}

func fetchPolicyFromContext(ctx context.Context, fallback FetchPolicy) FetchPolicy {
	if p, ok := ctx.Value(fetchPolicyKey{}).(FetchPolicy); ok {
		return p
	}
	return fallback
}

// withCacheKeySink asks MakeRequest to report the cache key it used.
func withCacheKeySink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, cacheKeySink{}, sink)
}

func reportCacheKey(ctx context.Context, key string) {
	if sink, ok := ctx.Value(cacheKeySink{}).(*string); ok && sink != nil {
		*sink = key
	}
}
