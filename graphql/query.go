package graphql

import (
	"context"
	"sync"

	genql "github.com/Khan/genqlient/graphql"
	"go.uber.org/zap"
)

// Result is the state of a Query at one point in time.  Exactly one of
// Loading, Err != nil, or a settled Data (possibly nil) describes it.
type Result[T any] struct {
	Loading bool
	Err     error
	Data    *T
}

// Settled reports whether the query is no longer loading.
func (r Result[T]) Settled() bool { return !r.Loading }

// Fetcher runs one operation against client.  Generated operation
// functions fit this shape once their variables are bound, e.g.
//
//	func(ctx context.Context, c genql.Client) (*GetUserResponse, error) {
//		return GetUser(ctx, c, id)
//	}
type Fetcher[T any] func(ctx context.Context, client genql.Client) (*T, error)

// Query is a reactive binding of one operation to the Client found in its
// context.  It starts loading as soon as it is created, publishes every
// state change to its subscribers, and re-reads the cache whenever another
// request rewrites the entry it was answered from.
type Query[T any] struct {
	fetch  Fetcher[T]
	client *Client
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	result   Result[T]
	watchID  string
	settled  chan struct{}
	closed   bool
	runs     sync.WaitGroup
	watchers *subscriptionMap[Result[T]]
}

// UseQuery binds fetch to the Client stored in ctx (see NewContext) and
// starts the first fetch.  Cancelling ctx or calling Close stops the query.
func UseQuery[T any](ctx context.Context, fetch Fetcher[T]) *Query[T] {
	ctx, cancel := context.WithCancel(ctx)
	q := &Query[T]{
		fetch:    fetch,
		ctx:      ctx,
		cancel:   cancel,
		result:   Result[T]{Loading: true},
		settled:  make(chan struct{}),
		watchers: newSubscriptionMap[Result[T]](),
		logger:   zap.NewNop(),
	}

	client, ok := FromContext(ctx)
	if !ok {
		q.settle(Result[T]{Err: ErrNoClient})
		return q
	}
	q.client = client
	q.logger = client.logger

	q.start(fetchPolicyFromContext(ctx, client.policy))
	return q
}

// Result returns the current state.
func (q *Query[T]) Result() Result[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.result
}

// Subscribe returns a channel of state changes, primed with the current
// state.  A slow reader only sees the latest state.  The channel is closed
// by Unsubscribe or Close.
func (q *Query[T]) Subscribe() (subscriptionID string, changes <-chan Result[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	id, ch := q.watchers.Create("")
	if q.closed {
		_ = q.watchers.Unsubscribe(id)
		return id, ch
	}
	q.watchers.Publish("", q.result)
	return id, ch
}

func (q *Query[T]) Unsubscribe(subscriptionID string) error {
	return q.watchers.Unsubscribe(subscriptionID)
}

// Wait blocks until the first fetch settles or ctx is done, and returns the
// state at that moment.
func (q *Query[T]) Wait(ctx context.Context) Result[T] {
	select {
	case <-q.settled:
	case <-ctx.Done():
	}
	return q.Result()
}

// Refetch discards the cached entry by fetching from the network, moving
// the query back to loading in the meantime.
func (q *Query[T]) Refetch() {
	if q.client == nil {
		return
	}
	q.start(NetworkOnly)
}

// Close cancels any in-flight fetch, stops watching the cache and closes
// every subscriber channel.  It is safe to call more than once.
func (q *Query[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	watchID := q.watchID
	q.mu.Unlock()

	q.cancel()
	if watchID != "" && q.client.cache != nil {
		_ = q.client.cache.Unwatch(watchID)
	}
	q.runs.Wait()
	q.watchers.CloseAll()
}

func (q *Query[T]) start(policy FetchPolicy) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.runs.Add(1)
	q.mu.Unlock()

	q.publish(Result[T]{Loading: true})
	go func() {
		defer q.runs.Done()
		q.run(policy)
	}()
}

func (q *Query[T]) run(policy FetchPolicy) {
	var key string
	ctx := withCacheKeySink(WithFetchPolicyContext(q.ctx, policy), &key)
	data, err := q.fetch(ctx, q.client)
	if err != nil {
		q.logger.Warn("query failed", zap.Error(err))
		q.settle(Result[T]{Err: err})
		return
	}
	q.watch(key)
	q.settle(Result[T]{Data: data})
}

// watch starts re-reading the cache on writes to key, once per query.
func (q *Query[T]) watch(key string) {
	cache := q.client.cache
	if key == "" || cache == nil {
		return
	}
	q.mu.Lock()
	if q.closed || q.watchID != "" {
		q.mu.Unlock()
		return
	}
	id, changes := cache.Watch(key)
	q.watchID = id
	q.runs.Add(1)
	q.mu.Unlock()

	go func() {
		defer q.runs.Done()
		for {
			select {
			case <-q.ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				q.reread()
			}
		}
	}()
}

func (q *Query[T]) reread() {
	data, err := q.fetch(WithFetchPolicyContext(q.ctx, CacheOnly), q.client)
	if err != nil {
		// The entry can be evicted between the write and this read; the
		// state we already published stays valid.
		return
	}
	q.publish(Result[T]{Data: data})
}

func (q *Query[T]) settle(r Result[T]) {
	q.publish(r)
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case <-q.settled:
	default:
		close(q.settled)
	}
}

func (q *Query[T]) publish(r Result[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.result = r
	q.watchers.Publish("", r)
}
