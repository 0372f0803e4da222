package scheduler

import "context"

// Job is a unit of work the worker pool can run. Execute must honor the
// context's cancellation; UserID and Description exist for logging and
// metrics only.
type Job interface {
	Execute(ctx context.Context) error
	UserID() string
	Description() string
}
