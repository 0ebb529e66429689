package graphql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	genql "github.com/Khan/genqlient/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchTest(ctx context.Context, client genql.Client) (*testData, error) {
	var data testData
	err := client.MakeRequest(ctx, newTestRequest(), &genql.Response{Data: &data})
	return &data, err
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// next reads the next state from changes or fails the test.
func next[T any](t *testing.T, changes <-chan Result[T]) Result[T] {
	t.Helper()
	select {
	case r, ok := <-changes:
		require.True(t, ok, "subscription closed")
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a state change")
		return Result[T]{}
	}
}

func TestUseQuerySettlesWithData(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"data": {"test": "hello"}}`))
	}))
	defer server.Close()

	ctx := NewContext(context.Background(), newCachingClient(t, server.URL))
	q := UseQuery(ctx, fetchTest)
	defer q.Close()

	_, changes := q.Subscribe()
	assert.True(t, next(t, changes).Loading)
	close(release)

	r := next(t, changes)
	require.False(t, r.Loading)
	require.NoError(t, r.Err)
	assert.Equal(t, "hello", r.Data.Test)
	assert.Equal(t, r, q.Wait(waitCtx(t)))
}

func TestUseQuerySettlesWithError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx := NewContext(context.Background(), newCachingClient(t, server.URL))
	q := UseQuery(ctx, fetchTest)
	defer q.Close()

	r := q.Wait(waitCtx(t))
	assert.False(t, r.Loading)
	var httpErr *HTTPError
	assert.ErrorAs(t, r.Err, &httpErr)
}

func TestUseQueryWithoutClient(t *testing.T) {
	q := UseQuery(context.Background(), fetchTest)
	defer q.Close()

	r := q.Wait(waitCtx(t))
	assert.ErrorIs(t, r.Err, ErrNoClient)
	assert.Nil(t, r.Data)
}

func TestUseQueryRefetch(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			_, _ = w.Write([]byte(`{"data": {"test": "first"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": {"test": "second"}}`))
	}))
	defer server.Close()

	ctx := NewContext(context.Background(), newCachingClient(t, server.URL))
	q := UseQuery(ctx, fetchTest)
	defer q.Close()
	require.Equal(t, "first", q.Wait(waitCtx(t)).Data.Test)

	_, changes := q.Subscribe()
	next(t, changes) // current state
	q.Refetch()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-changes:
			if r.Data != nil && r.Data.Test == "second" {
				assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
				return
			}
		case <-deadline:
			t.Fatal("refetch never published the new data")
		}
	}
}

func TestUseQueryFollowsCacheWrites(t *testing.T) {
	var answer atomic.Value
	answer.Store(`{"data": {"test": "old"}}`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(answer.Load().(string)))
	}))
	defer server.Close()

	client := newCachingClient(t, server.URL)
	ctx := NewContext(context.Background(), client)
	q := UseQuery(ctx, fetchTest)
	defer q.Close()
	require.Equal(t, "old", q.Wait(waitCtx(t)).Data.Test)

	_, changes := q.Subscribe()
	next(t, changes)

	// Another caller refreshes the same entry.
	answer.Store(`{"data": {"test": "new"}}`)
	_, err := fetchTest(WithFetchPolicyContext(context.Background(), NetworkOnly), client)
	require.NoError(t, err)

	assert.Equal(t, "new", next(t, changes).Data.Test)
}

func TestQueryCloseClosesSubscribers(t *testing.T) {
	server, _ := countingServer(t, "x")
	ctx := NewContext(context.Background(), newCachingClient(t, server.URL))
	q := UseQuery(ctx, fetchTest)
	q.Wait(waitCtx(t))

	_, changes := q.Subscribe()
	next(t, changes)
	q.Close()
	q.Close()

	_, ok := <-changes
	assert.False(t, ok)

	_, late := q.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing after Close yields a closed channel")
}
