// Package config loads the absences configuration.
//
// Values are layered: built-in defaults, then an optional YAML file
// (config.yaml, configs/config.yaml or the file named by ABSENCE_CONFIG),
// then environment variables. Variables follow the pattern
// ABSENCE_<SECTION>_<KEY>:
//
//	ABSENCE_PROCESSING_UNIT=minutes
//	ABSENCE_PROCESSING_ERROR_POLICY=skip
//	ABSENCE_EXPORT_FORMATS=csv,xlsx
//	ABSENCE_SERVER_PORT=9090
//	ABSENCE_LOGGING_LEVEL=debug
//
// The merged result is validated with struct tags before use.
//
// Paths are always resolved relative to the executable unless paths.root is
// set:
//
//	paths, err := cfg.ResolvePaths()
//	out := paths.GetSummaryPath(time.Now(), "csv")
package config
