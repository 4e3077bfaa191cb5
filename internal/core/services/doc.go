// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The schema validator and path transformer are pure functions of the
// schema; the organiser is the only service that touches the filesystem,
// and only through driven ports.
package services
