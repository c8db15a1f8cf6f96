// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run starts the worker and must return promptly; long-running work is done
// in goroutines that end when ctx is cancelled or Stop is called. Stop blocks
// until the worker has fully exited.
type Worker interface {
	Run(ctx context.Context)
	Stop()
}
