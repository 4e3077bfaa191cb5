package driven

import "context"

// ChangeWatcher pushes filesystem changes under a root directory.
type ChangeWatcher interface {
	// Watch emits the absolute path of every regular file that was created
	// or written. The channel is closed when ctx is cancelled.
	Watch(ctx context.Context, root string) (<-chan string, error)

	// Close releases resources.
	Close() error
}
