// Package shared holds helpers used across the absences codebase that do not
// belong to any single layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and fixtures for attendance export files:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteExport(t, t.TempDir(), testutil.SampleExportRows())
//	    ...
//	}
package shared
