// Package autoscaler implements the autoscaler control loop (C5): a
// queue-depth-driven worker fleet sizer with hysteresis, reconciled
// through an orchestrator driver abstraction.
package autoscaler

import "context"

// Driver is the orchestrator abstraction: two operations, implemented
// by a local container-compose driver or a cloud machines-API driver
// depending on runtime configuration.
type Driver interface {
	// ListWorkers returns the number of worker instances currently
	// running.
	ListWorkers(ctx context.Context) (int, error)

	// ScaleTo reconciles the live fleet to exactly n workers.
	ScaleTo(ctx context.Context, n int) error
}
