// Package api contains the HTTP contract of the absence service.
// Version v1 represents the current stable API version.
package api

// ProcessRequest carries the per-request processing overrides read from the
// query string of the summary and normalize endpoints. Empty fields fall back
// to the server configuration.
type ProcessRequest struct {
	Unit     string `json:"unit" query:"unit" validate:"omitempty,oneof=hours minutes"`
	Policy   string `json:"policy" query:"policy" validate:"omitempty,oneof=fail-fast skip"`
	Rounding string `json:"rounding" query:"rounding" validate:"omitempty,oneof=truncate round"`
}
