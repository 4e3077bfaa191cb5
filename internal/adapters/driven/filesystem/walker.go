package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
	"github.com/custodia-labs/reshelve/internal/logger"
)

// Ensure Walker implements the interface.
var _ driven.FileWalker = (*Walker)(nil)

// Walker lists the regular files of a directory tree.
type Walker struct {
	includeHidden bool
}

// NewWalker creates a walker. Hidden files and directories are skipped
// unless includeHidden is true.
func NewWalker(includeHidden bool) *Walker {
	return &Walker{includeHidden: includeHidden}
}

// ListFiles returns the absolute, sorted paths of every regular file under root.
// Symlinks to regular files are included; symlinked directories are not followed.
// Only errors on root itself are returned.
func (w *Walker) ListFiles(ctx context.Context, root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("root path error: directory does not exist: %s", absRoot)
		}
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: not a directory: %s", absRoot)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			// Unreadable entries below the root are skipped.
			logger.Warn("Skip directory %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path != absRoot && !w.includeHidden && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if isRegularFile(path, d) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, err)
	}

	sort.Strings(files)
	return files, nil
}

// isRegularFile follows symlinks, so a link to a file counts as a file.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// isHidden checks if any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
