package config

const (
	AppName = "absences"

	// Rate limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Uploads
	DefaultMaxUploadBytes = 10 << 20 // 10MB
	MaxInputFileSize      = 50 << 20

	// File paths (relative to executable)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"

	SummaryFilePrefix    = "absence_summary"
	NormalizedFilePrefix = "absence_entries"

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Input file extensions accepted by the readers
var SupportedInputExtensions = []string{".csv", ".txt", ".xlsx"}
