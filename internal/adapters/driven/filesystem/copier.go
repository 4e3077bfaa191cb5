package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
)

// Ensure Copier implements the interface.
var _ driven.FileCopier = (*Copier)(nil)

// Copier copies files on the local filesystem.
type Copier struct {
	chmod   func(name string, mode fs.FileMode) error
	chtimes func(name string, atime, mtime time.Time) error
}

// NewCopier creates a new copier.
func NewCopier() *Copier {
	return &Copier{
		chmod:   os.Chmod,
		chtimes: os.Chtimes,
	}
}

// Exists reports whether anything is present at path.
// A symlink counts as present even when its target is missing.
func (c *Copier) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// EnsureDir creates path and all missing ancestors.
func (c *Copier) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// Copy copies content, permission bits and modification time from src to dst.
// dst must not exist yet; a dst left by a failed copy is removed.
func (c *Copier) Copy(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return fmt.Errorf("%w: %s", domain.ErrSameFile, dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy content: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close destination: %w", err)
	}

	// OpenFile's mode is subject to umask.
	if err := c.chmod(dst, srcInfo.Mode().Perm()); err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy permissions: %w", err)
	}
	if err := c.chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy timestamps: %w", err)
	}

	return nil
}
