// Package journal persists run results.
//
// It currently supports:
//   - Per-task run records (one row per worker outcome)
//   - Per-run summary records
//
// Drivers: "none" (disabled), "file" (JSON Lines), "sqlite" (build tag).
package journal
