package testsupport

import (
	"testing"

	"reelsplit/internal/config"
	"reelsplit/internal/queue"
)

// MustOpenStore opens a run store backed by the test config's temp
// directories and closes it when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}
