// Package filesystem implements the driven ports that touch the local disk:
// the tree walker, the file copier and the fsnotify-backed change watcher.
//
// Hidden entries (names starting with a dot) are skipped by the walker and
// the watcher unless explicitly included.
package filesystem
