package view

import (
	"context"

	genql "github.com/Khan/genqlient/graphql"

	"github.com/graphql-sample/userview/graphql"
)

const (
	LoadingText  = "Loading..."
	ErrorText    = "Error :("
	NotFoundText = "No user found"
)

// UserState is the state of a mounted UserView.
type UserState = graphql.Result[GetUserResponse]

// UserView shows one user, looked up by ID.
type UserView struct {
	ID string
}

// Mount starts the GetUser query for u.ID against the client in ctx.  The
// caller must Close the returned query.
func (u UserView) Mount(ctx context.Context) *graphql.Query[GetUserResponse] {
	id := u.ID
	return graphql.UseQuery(ctx, func(ctx context.Context, client genql.Client) (*GetUserResponse, error) {
		return GetUser(ctx, client, id)
	})
}

// Render maps a query state to exactly one of the loading, error, found and
// not-found outputs.  The error itself is never shown.
func (u UserView) Render(state UserState) *Node {
	switch {
	case state.Loading:
		return P(LoadingText)
	case state.Err != nil:
		return P(ErrorText)
	case state.Data == nil || state.Data.User == nil:
		return P(NotFoundText)
	}
	user := state.Data.User
	return Div(
		P("User ID: "+user.Id),
		P("User Name: "+user.Name),
	)
}

//go:generate go run github.com/Khan/genqlient genqlient.yaml
