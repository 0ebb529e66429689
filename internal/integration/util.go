package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// RepoRoot returns the root of the userview repository.
func RepoRoot(t *testing.T) string {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller non-ok")
	}

	root := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Fatal(fmt.Errorf("doesn't look like repo root: %v", err))
	}
	return root
}

// ReadRepoFile returns the content of a repo-root-relative file.
func ReadRepoFile(t *testing.T, relFilename string) string {
	content, err := os.ReadFile(filepath.Join(RepoRoot(t), relFilename))
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}
