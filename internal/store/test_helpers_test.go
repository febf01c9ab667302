package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/animgraph/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun writes a run record and returns it.
func createTestRun(t *testing.T, s *Store, id string) ir.RunRecord {
	t.Helper()
	run := ir.RunRecord{ID: id, Name: "test", Source: "testdata/test.yaml", Digest: "abc123"}
	if err := s.WriteRun(t.Context(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run
}
