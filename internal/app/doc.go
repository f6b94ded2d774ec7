// Package app wires the absence services into an HTTP server.
//
// NewApplication takes a loaded configuration, initializes telemetry and the
// services, and builds the chi router:
//
//	POST /api/v1/absences/summary    summarize an uploaded export
//	POST /api/v1/absences/normalize  list normalized entries of an upload
//	GET  /api/health[/ready|/live]   health probes
//	GET  /api/version                build information
//	GET  /metrics                    prometheus exposition
//
// Run serves until the context is cancelled or the process is interrupted,
// then shuts the server down within the configured shutdown timeout.
package app
