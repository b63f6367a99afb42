// Package services sits between the transports (HTTP handlers, CLI commands)
// and the cleaner/analysis packages.
//
// DatasetService owns one Cleaner and serialises access to it: Clean and
// Save take the write lock, table reads and analyses take the read lock.
// Analysis queries fall back to the report defaults from configuration when
// a field is left empty.
//
// HealthService reports liveness, readiness (source readable, dataset state)
// and version information.
package services
