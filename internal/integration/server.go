package integration

import (
	"net/http/httptest"

	"go.uber.org/zap"

	"github.com/graphql-sample/userview/internal/server"
)

// RunServer starts the demo server on a local port, seeded with users, and
// returns it with the URL of its GraphQL endpoint.
func RunServer(users ...server.User) (srv *httptest.Server, endpoint string) {
	if len(users) == 0 {
		users = server.SampleUsers()
	}
	schema, err := server.NewSchema(server.NewMemoryStore(users...))
	if err != nil {
		panic(err)
	}
	srv = httptest.NewServer(server.NewHandler(schema, []string{"*"}, zap.NewNop()))
	return srv, srv.URL + "/graphql"
}
