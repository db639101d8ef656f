package stage

import (
	"context"

	"storyreel/internal/queue"
)

// Handler is what the pipeline manager drives for each queue item: Prepare
// records initial progress before the status flips to processing, Execute
// does the work and mutates the item, and HealthCheck reports whether the
// stage could run at all (voice model present, backgrounds available, and
// so on) without touching any item.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}
