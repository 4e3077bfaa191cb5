package driven

// FileCopier performs the filesystem side effects of a run.
type FileCopier interface {
	// Exists reports whether anything is present at path.
	Exists(path string) bool

	// EnsureDir creates path and any missing ancestors.
	// No-op if the directory already exists.
	EnsureDir(path string) error

	// Copy copies content, permissions and modification time from src to dst.
	// Returns domain.ErrSameFile if both resolve to the same file.
	Copy(src, dst string) error
}
