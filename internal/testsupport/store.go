package testsupport

import (
	"context"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewStory creates a pending story item for tests using the provided store.
func NewStory(t testing.TB, store *queue.Store, storyPath, title string) *queue.Item {
	t.Helper()

	item, err := store.NewStory(context.Background(), storyPath, title)
	if err != nil {
		t.Fatalf("store.NewStory: %v", err)
	}
	return item
}
