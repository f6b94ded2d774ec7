// Package cli implements the absences command line.
//
//	absences summarize [file] [--out path] [--unit hours|minutes] [--policy fail-fast|skip]
//	                   [--rounding truncate|round] [--format csv,xlsx,json] [--metrics-textfile path]
//	absences normalize <file> [--out path] [--unit ...] [--policy ...]
//	absences serve [--port N]
//	absences version
//
// Logs go to stderr (or the configured log file) so stdout carries only
// command output.
package cli
