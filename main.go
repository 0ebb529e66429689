// userview renders one user fetched over GraphQL.
//
// To run userview against the demo server:
//
//	go run ./cmd/userserver &
//	go run github.com/graphql-sample/userview
//
// Pass --listen :3000 to serve the same view as a web page instead.  For
// programmatic access, see the "view" and "graphql" packages.
package main

import (
	"github.com/graphql-sample/userview/view"
)

func main() {
	view.Main()
}
