package graphql

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// subscriptionMap maps subscription IDs to subscriptions.  It backs both the
// cache's key watchers and the subscribers of a Query.
type subscriptionMap[T any] struct {
	map_ map[string]*subscription[T]
	sync.Mutex
}

type subscription[T any] struct {
	dataChan chan T
	// key restricts the subscription to values published under it; the
	// empty key receives everything.
	key    string
	id     string
	closed bool
}

func newSubscriptionMap[T any]() *subscriptionMap[T] {
	return &subscriptionMap[T]{map_: make(map[string]*subscription[T])}
}

// Create registers a new subscription and returns its ID and channel.  The
// channel holds at most one pending value: a slow reader only ever sees the
// latest one.
func (s *subscriptionMap[T]) Create(key string) (string, <-chan T) {
	s.Lock()
	defer s.Unlock()
	id := uuid.NewString()
	sub := &subscription[T]{
		id:       id,
		key:      key,
		dataChan: make(chan T, 1),
	}
	s.map_[id] = sub
	return id, sub.dataChan
}

// Publish delivers v to every open subscription registered under key (and
// to those registered under the empty key).
func (s *subscriptionMap[T]) Publish(key string, v T) {
	s.Lock()
	defer s.Unlock()
	for _, sub := range s.map_ {
		if sub.closed || (sub.key != "" && sub.key != key) {
			continue
		}
		select {
		case sub.dataChan <- v:
			continue
		default:
		}
		// Full: replace the stale value.
		select {
		case <-sub.dataChan:
		default:
		}
		select {
		case sub.dataChan <- v:
		default:
		}
	}
}

func (s *subscriptionMap[T]) Unsubscribe(subscriptionID string) error {
	s.Lock()
	defer s.Unlock()
	sub, ok := s.map_[subscriptionID]
	if !ok {
		return fmt.Errorf("tried to unsubscribe from unknown subscription with ID '%s'", subscriptionID)
	}
	sub.close()
	delete(s.map_, subscriptionID)
	return nil
}

// CloseAll closes and forgets every subscription.
func (s *subscriptionMap[T]) CloseAll() {
	s.Lock()
	defer s.Unlock()
	for id, sub := range s.map_ {
		sub.close()
		delete(s.map_, id)
	}
}

func (s *subscriptionMap[T]) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.map_)
}

func (sub *subscription[T]) close() {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.dataChan)
}
