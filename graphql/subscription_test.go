package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_subscriptionMap_Unsubscribe(t *testing.T) {
	tests := []struct {
		name    string
		closeID func(s *subscriptionMap[int], id string) string
		wantErr bool
	}{
		{
			name:    "existing subscription",
			closeID: func(_ *subscriptionMap[int], id string) string { return id },
		},
		{
			name: "already unsubscribed",
			closeID: func(s *subscriptionMap[int], id string) string {
				_ = s.Unsubscribe(id)
				return id
			},
			wantErr: true,
		},
		{
			name:    "unknown subscription",
			closeID: func(_ *subscriptionMap[int], _ string) string { return "doesnotexist" },
			wantErr: true,
		},
	}
	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			s := newSubscriptionMap[int]()
			id, _ := s.Create("")
			err := s.Unsubscribe(tt.closeID(s, id))
			if (err != nil) != tt.wantErr {
				t.Errorf("subscriptionMap.Unsubscribe() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscriptionMapPublishKeepsLatest(t *testing.T) {
	s := newSubscriptionMap[int]()
	_, ch := s.Create("")

	s.Publish("k", 1)
	s.Publish("k", 2)
	s.Publish("k", 3)

	assert.Equal(t, 3, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %v", v)
	default:
	}
}

func TestSubscriptionMapPublishFiltersByKey(t *testing.T) {
	s := newSubscriptionMap[string]()
	_, a := s.Create("a")
	_, b := s.Create("b")

	s.Publish("a", "hello")

	assert.Equal(t, "hello", <-a)
	select {
	case v := <-b:
		t.Fatalf("subscription on b got %q", v)
	default:
	}
}

func TestSubscriptionMapCloseAll(t *testing.T) {
	s := newSubscriptionMap[int]()
	_, a := s.Create("")
	_, b := s.Create("x")
	require.Equal(t, 2, s.Len())

	s.CloseAll()

	_, ok := <-a
	assert.False(t, ok)
	_, ok = <-b
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}
