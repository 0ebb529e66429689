package server

import (
	"context"
	"sync"

	"github.com/graphql-go/graphql"
)

// User is a user served by the demo server.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Store looks users up by id.
type Store interface {
	UserByID(ctx context.Context, id string) (*User, bool)
}

// MemoryStore is a Store backed by a map.  It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryStore(users ...User) *MemoryStore {
	s := &MemoryStore{users: make(map[string]User, len(users))}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

// SampleUsers is the data the demo server starts with.
func SampleUsers() []User {
	return []User{
		{ID: "1", Name: "Alice"},
		{ID: "2", Name: "Bob"},
	}
}

func (s *MemoryStore) Put(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryStore) UserByID(_ context.Context, id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	return &u, true
}

var userType = graphql.NewObject(
	graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.String,
			},
			"name": &graphql.Field{
				Type: graphql.String,
			},
		},
	},
)

// NewSchema builds the executable schema
//
//	type Query { user(id: String): User }
//
// resolving users from store.  Unknown ids resolve to null.
func NewSchema(store Store) (graphql.Schema, error) {
	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"user": &graphql.Field{
					Type:        userType,
					Description: "Get user by id",
					Args: graphql.FieldConfigArgument{
						"id": &graphql.ArgumentConfig{
							Type: graphql.String,
						},
					},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						id, ok := p.Args["id"].(string)
						if !ok {
							return nil, nil
						}
						user, found := store.UserByID(p.Context, id)
						if !found {
							return nil, nil
						}
						return user, nil
					},
				},
			},
		},
	)

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}
