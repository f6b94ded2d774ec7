package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.ExecutableDir))
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(paths.DataDir, "imports"), paths.ImportsDir)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	paths := PathsFrom(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ImportsDir, paths.ReportsDir, paths.LogsDir} {
		assert.True(t, FileExists(dir), dir)
	}
}

func TestPaths_FileHelpers(t *testing.T) {
	paths := PathsFrom("/srv/absences")
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"summary csv", paths.GetSummaryPath(date, "csv"), "/srv/absences/data/reports/absence_summary_20240304.csv"},
		{"summary xlsx", paths.GetSummaryPath(date, "xlsx"), "/srv/absences/data/reports/absence_summary_20240304.xlsx"},
		{"report", paths.GetReportPath("x.json"), "/srv/absences/data/reports/x.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), tt.got)
		})
	}
}
