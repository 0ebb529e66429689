// Package view renders the GetUser query's states, as text for a terminal or
// as an HTML page.
package view

import (
	"context"
	"fmt"
	"io"

	"github.com/graphql-sample/userview/graphql"
)

// Title heads every render of the App.
const Title = "GraphQL sample 🚀"

// App is the root component: a heading above one UserView.
type App struct {
	User UserView
}

// NewApp returns the App mounted with the given user id.
func NewApp(userID string) App {
	return App{User: UserView{ID: userID}}
}

func (a App) Render(state UserState) *Node {
	return Div(
		H2(Title),
		a.User.Render(state),
	)
}

// Run provides client to the App's subtree, mounts it and writes one text
// render to w per state change.  It returns once the query settles, or, if
// follow is set, when ctx is done.
func (a App) Run(ctx context.Context, client *graphql.Client, w io.Writer, follow bool) error {
	ctx, cancel := context.WithCancel(graphql.NewContext(ctx, client))
	defer cancel()

	q := a.User.Mount(ctx)
	defer q.Close()
	_, changes := q.Subscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-changes:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(w, "%s\n\n", a.Render(state)); err != nil {
				return err
			}
			if !follow && state.Settled() {
				return nil
			}
		}
	}
}
