package services

import "errors"

// Absence service errors
var (
	ErrNoInput           = errors.New("no input file given and no export found in the imports directory")
	ErrUnsupportedUpload = errors.New("unsupported upload format")
)
