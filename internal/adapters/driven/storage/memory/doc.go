// Package memory provides in-memory implementations of the driven stores.
// They back the service and command tests and never touch the disk.
package memory
