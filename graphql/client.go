package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	genql "github.com/Khan/genqlient/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Doer is the subset of *http.Client the Client needs.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client makes GraphQL requests over HTTP and keeps their results in an
// InMemoryCache.  It implements genqlient's graphql.Client, so generated
// operation functions accept it directly.
//
// Concurrent requests with the same cache key share a single round trip.
// The shared round trip is detached from the callers' contexts and bounded
// by the request timeout instead, so a caller that gives up only stops its
// own wait.
type Client struct {
	endpoint   string
	httpClient Doer
	cache      *InMemoryCache
	policy     FetchPolicy
	timeout    time.Duration
	logger     *zap.Logger
	metrics    *Metrics
	flight     singleflight.Group
}

// DefaultRequestTimeout bounds a round trip when WithRequestTimeout is not
// given.
const DefaultRequestTimeout = 30 * time.Second

var _ genql.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithCache sets the response cache.  Without it the Client behaves as if
// every request used NoCache, and CacheOnly requests always miss.
func WithCache(cache *InMemoryCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithFetchPolicy sets the default fetch policy (CacheFirst if unset).
func WithFetchPolicy(policy FetchPolicy) Option {
	return func(c *Client) { c.policy = policy }
}

// WithRequestTimeout bounds each round trip to the server.  Non-positive
// values keep DefaultRequestTimeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) { c.metrics = metrics }
}

// NewClient returns a Client which makes requests to the given endpoint.
//
// The client makes POST requests using standard GraphQL HTTP-over-JSON
// transport.  It will use the given http client, or http.DefaultClient if a
// nil client is passed.
func NewClient(endpoint string, httpClient Doer, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		policy:     CacheFirst,
		timeout:    DefaultRequestTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns the client's cache, which may be nil.
func (c *Client) Cache() *InMemoryCache {
	return c.cache
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// fetchResult is the decoded body of a GraphQL HTTP response, with data kept
// raw so that it can be cached and shared between waiting callers.
type fetchResult struct {
	Data       json.RawMessage        `json:"data"`
	Errors     gqlerror.List          `json:"errors,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// MakeRequest implements genqlient's graphql.Client.
func (c *Client) MakeRequest(ctx context.Context, req *genql.Request, resp *genql.Response) error {
	if ctx == nil {
		ctx = context.Background()
	}
	policy := fetchPolicyFromContext(ctx, c.policy)

	key, err := cacheKey(req.OpName, req.Query, req.Variables)
	if err != nil {
		return err
	}
	reportCacheKey(ctx, key)
	logger := c.logger.With(zap.String("operation", req.OpName), zap.Stringer("policy", policy))

	if policy == CacheFirst || policy == CacheOnly {
		data, hit := c.lookup(key)
		c.metrics.observeCache(req.OpName, hit)
		if hit {
			logger.Debug("graphql cache hit")
			return decodeData(data, resp)
		}
		if policy == CacheOnly {
			return ErrCacheMiss
		}
	}

	result, shared, err := c.do(ctx, key, req)
	if err != nil {
		logger.Warn("graphql request failed", zap.Error(err))
		return err
	}
	if shared {
		logger.Debug("graphql request shared with an in-flight duplicate")
	}

	resp.Extensions = result.Extensions
	if len(result.Errors) > 0 {
		resp.Errors = result.Errors
		logger.Warn("graphql response carried errors", zap.Error(result.Errors))
		return result.Errors
	}

	if c.cache != nil && policy != NoCache {
		c.cache.Put(key, result.Data)
	}
	return decodeData(result.Data, resp)
}

// do joins or starts the round trip for key and waits for it or for ctx,
// whichever comes first.
func (c *Client) do(ctx context.Context, key string, req *genql.Request) (*fetchResult, bool, error) {
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fetchCtx, req)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		return res.Val.(*fetchResult), res.Shared, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (c *Client) lookup(key string) (json.RawMessage, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) fetch(ctx context.Context, req *genql.Request) (*fetchResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("graphql: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("graphql: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(req.OpName, "error", http.MethodPost, time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("graphql: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	code := strconv.Itoa(httpResp.StatusCode)
	if httpResp.StatusCode != http.StatusOK {
		c.metrics.observeRequest(req.OpName, code, http.MethodPost, time.Since(start).Seconds(), 0)
		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			respBody = []byte(fmt.Sprintf("<unreadable: %v>", err))
		}
		return nil, &HTTPError{
			StatusCode: httpResp.StatusCode,
			Body:       string(respBody),
		}
	}

	var result fetchResult
	err = json.NewDecoder(httpResp.Body).Decode(&result)
	c.metrics.observeRequest(req.OpName, code, http.MethodPost, time.Since(start).Seconds(), len(result.Errors))
	if err != nil {
		return nil, fmt.Errorf("graphql: decode response: %w", err)
	}
	c.logger.Debug("graphql request completed",
		zap.String("operation", req.OpName),
		zap.Duration("elapsed", time.Since(start)))
	return &result, nil
}

func decodeData(data json.RawMessage, resp *genql.Response) error {
	if resp.Data == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, resp.Data); err != nil {
		return fmt.Errorf("graphql: decode data: %w", err)
	}
	return nil
}
