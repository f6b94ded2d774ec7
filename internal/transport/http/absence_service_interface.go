package http

import (
	"context"
	"io"

	"absencecli/internal/dataprocessing"
)

// AbsenceServiceInterface defines the processing operations used by the absence handler
type AbsenceServiceInterface interface {
	SummarizeUpload(ctx context.Context, r io.Reader, name string, opts dataprocessing.ProcessingOptions) (*dataprocessing.Result, error)
	NormalizeUpload(ctx context.Context, r io.Reader, name string, opts dataprocessing.ProcessingOptions) (*dataprocessing.Result, error)
}
