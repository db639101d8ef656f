package queue_test

import (
	"context"
	"testing"

	"storyreel/internal/queue"
	"storyreel/internal/testsupport"
)

func TestNewStoryAndLifecycle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item, err := store.NewStory(ctx, "/stories/midnight_garden.txt", "Midnight Garden")
	if err != nil {
		t.Fatalf("NewStory: %v", err)
	}
	if item.ID == 0 || item.Status != queue.StatusPending {
		t.Fatalf("unexpected new item: %+v", item)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}

	item.Status = queue.StatusSynthesized
	item.AudioFile = "/work/midnight_garden.wav"
	item.AudioSeconds = 92.5
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusSynthesized {
		t.Fatalf("status not persisted: %q", fetched.Status)
	}
	if fetched.AudioSeconds != 92.5 {
		t.Fatalf("audio duration not persisted: %v", fetched.AudioSeconds)
	}
	if fetched.Title != "Midnight Garden" {
		t.Fatalf("title not persisted: %q", fetched.Title)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item, err := store.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing item, got %+v", item)
	}
}

func TestNextForStatusesOrdersOldestFirst(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, err := store.NewStory(ctx, "/stories/a.txt", "A")
	if err != nil {
		t.Fatalf("NewStory: %v", err)
	}
	if _, err := store.NewStory(ctx, "/stories/b.txt", "B"); err != nil {
		t.Fatalf("NewStory: %v", err)
	}

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending item %d, got %+v", first.ID, next)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	done, err := store.NewStory(ctx, "/stories/done.txt", "")
	if err != nil {
		t.Fatalf("NewStory: %v", err)
	}
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := store.NewStory(ctx, "/stories/todo.txt", ""); err != nil {
		t.Fatalf("NewStory: %v", err)
	}

	completed, err := store.List(ctx, queue.StatusCompleted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != done.ID {
		t.Fatalf("unexpected completed list: %+v", completed)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
}

func TestResetStuckProcessingRollsBack(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	cases := map[queue.Status]queue.Status{
		queue.StatusSynthesizing: queue.StatusPending,
		queue.StatusRendering:    queue.StatusSynthesized,
		queue.StatusSegmenting:   queue.StatusRendered,
	}
	ids := make(map[int64]queue.Status, len(cases))
	for from, to := range cases {
		item, err := store.NewStory(ctx, "/stories/"+string(from)+".txt", "")
		if err != nil {
			t.Fatalf("NewStory: %v", err)
		}
		item.Status = from
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}
		ids[item.ID] = to
	}

	affected, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if affected != int64(len(cases)) {
		t.Fatalf("expected %d rollbacks, got %d", len(cases), affected)
	}
	for id, want := range ids {
		item, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if item.Status != want {
			t.Fatalf("item %d rolled back to %q, want %q", id, item.Status, want)
		}
	}
}

func TestRetryFailedAndClear(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	failed, err := store.NewStory(ctx, "/stories/broken.txt", "")
	if err != nil {
		t.Fatalf("NewStory: %v", err)
	}
	failed.SetFailed("piper exploded")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	review, err := store.NewStory(ctx, "/stories/review.txt", "")
	if err != nil {
		t.Fatalf("NewStory: %v", err)
	}
	review.SetReview("voice model missing")
	if err := store.Update(ctx, review); err != nil {
		t.Fatalf("Update: %v", err)
	}

	retried, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if retried != 2 {
		t.Fatalf("expected 2 retried, got %d", retried)
	}

	item, err := store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item.Status != queue.StatusPending || item.ErrorMessage != "" {
		t.Fatalf("retry did not reset item: %+v", item)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 cleared, got %d", removed)
	}
}

func TestSummaryCountsStates(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	states := []queue.Status{
		queue.StatusPending,
		queue.StatusRendering,
		queue.StatusFailed,
		queue.StatusCompleted,
	}
	for i, status := range states {
		item, err := store.NewStory(ctx, "/stories/s.txt", "")
		if err != nil {
			t.Fatalf("NewStory %d: %v", i, err)
		}
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
	}

	summary, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Total != 4 || summary.Pending != 1 || summary.Processing != 1 ||
		summary.Failed != 1 || summary.Completed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Rendering "); !ok || status != queue.StatusRendering {
		t.Fatalf("unexpected parse: %q %v", status, ok)
	}
	if _, ok := queue.ParseStatus("exploded"); ok {
		t.Fatal("expected unknown status to fail")
	}
}
