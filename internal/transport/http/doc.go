// Package http implements the HTTP handlers of the absence service.
//
// Handlers stay thin: they parse the request, delegate to a service and
// format the response. Errors are rendered as RFC 7807 problem documents
// through errors.ErrorHandler.
//
// # Endpoints
//
//	POST /api/v1/absences/summary    per-person totals of an uploaded export
//	POST /api/v1/absences/normalize  one converted entry per input row
//	GET  /api/health                 liveness and version
//	GET  /api/health/ready           reports directory check
//	GET  /api/health/live            runtime details
//	GET  /api/version                build information
//
// The absence endpoints accept the export as the raw request body (CSV, or
// xlsx with its spreadsheet content type) or as the "file" part of a
// multipart form. Query parameters unit, policy and rounding override the
// server configuration per request. Responses are JSON unless the format
// parameter or the Accept header asks for text/csv or xlsx.
package http
