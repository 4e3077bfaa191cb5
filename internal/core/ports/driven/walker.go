package driven

import "context"

// FileWalker enumerates the files of a directory tree.
type FileWalker interface {
	// ListFiles returns the absolute paths of all regular files under root,
	// recursively. Directories are excluded. Paths are returned sorted.
	ListFiles(ctx context.Context, root string) ([]string, error)
}
