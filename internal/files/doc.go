// Package files locates attendance exports on disk.
//
// Discovery lists the exports dropped into data/imports and picks the newest
// one when the summarize command is run without an input file.
//
//	discovery := files.NewDiscovery(paths.ExecutableDir, config.SupportedInputExtensions)
//	latest, err := discovery.LatestExport(paths.ImportsDir)
package files
