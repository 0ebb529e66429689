package graphql

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewInMemoryCache(2)
	require.NoError(t, err)

	cache.Put("a", json.RawMessage(`1`))
	cache.Put("b", json.RawMessage(`2`))
	_, ok := cache.Get("a") // a is now most recent
	require.True(t, ok)
	cache.Put("c", json.RawMessage(`3`))

	_, ok = cache.Get("b")
	assert.False(t, ok)
	got, ok := cache.Get("a")
	assert.True(t, ok)
	assert.JSONEq(t, `1`, string(got))
	assert.Equal(t, 2, cache.Len())
}

func TestInMemoryCacheEvictAndReset(t *testing.T) {
	cache, err := NewInMemoryCache(0)
	require.NoError(t, err)

	cache.Put("a", json.RawMessage(`1`))
	cache.Put("b", json.RawMessage(`2`))
	cache.Evict("a")
	_, ok := cache.Get("a")
	assert.False(t, ok)

	cache.Reset()
	assert.Zero(t, cache.Len())
}

func TestInMemoryCachePutCopiesData(t *testing.T) {
	cache, err := NewInMemoryCache(1)
	require.NoError(t, err)

	data := json.RawMessage(`{"x":1}`)
	cache.Put("a", data)
	data[5] = '2'

	got, _ := cache.Get("a")
	assert.JSONEq(t, `{"x":1}`, string(got))
}

func TestInMemoryCacheWatch(t *testing.T) {
	cache, err := NewInMemoryCache(4)
	require.NoError(t, err)

	id, changes := cache.Watch("a")
	cache.Put("b", json.RawMessage(`2`))
	select {
	case <-changes:
		t.Fatal("watcher on a woke for b")
	default:
	}

	cache.Put("a", json.RawMessage(`1`))
	_, ok := <-changes
	assert.True(t, ok)

	require.NoError(t, cache.Unwatch(id))
	_, ok = <-changes
	assert.False(t, ok)
	assert.Error(t, cache.Unwatch(id))
}

func TestCacheKey(t *testing.T) {
	type vars struct {
		ID string `json:"id"`
	}

	fromStruct, err := cacheKey("GetUser", "query", &vars{ID: "1"})
	require.NoError(t, err)
	fromMap, err := cacheKey("GetUser", "query", map[string]interface{}{"id": "1"})
	require.NoError(t, err)
	other, err := cacheKey("GetUser", "query", &vars{ID: "2"})
	require.NoError(t, err)
	otherQuery, err := cacheKey("GetUser", "query GetUser { user { id } }", &vars{ID: "1"})
	require.NoError(t, err)
	unnamed, err := cacheKey("", "query { a }", nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fromStruct, "GetUser:"), fromStruct)
	assert.True(t, strings.HasSuffix(fromStruct, `:{"id":"1"}`), fromStruct)
	assert.Equal(t, fromStruct, fromMap)
	assert.NotEqual(t, fromStruct, other)
	assert.NotEqual(t, fromStruct, otherQuery, "same name and variables, different document")
	assert.True(t, strings.HasSuffix(unnamed, ":null"), unnamed)
}
