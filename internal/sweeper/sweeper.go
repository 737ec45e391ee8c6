package sweeper

import (
	"context"
)

// Sweeper is a long-running background task that performs periodic maintenance
type Sweeper interface {
	// Start runs the sweeper until the context is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the sweeper and waits for in-progress work
	Stop(ctx context.Context) error

	// Name returns the sweeper's name for logging
	Name() string
}
