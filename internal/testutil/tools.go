// In principle this should be "+build ignore", but for some reason
// `go mod tidy` ignores such files, so we use another build tag we never
// intend to set.

//go:build tools
// +build tools

package testutil

import (
	// Keep genqlient in go.mod so that `go generate ./view` can `go run` the
	// pinned version.
	_ "github.com/Khan/genqlient"
)
