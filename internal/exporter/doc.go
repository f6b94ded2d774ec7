// Package exporter writes absence summaries and normalized entries.
//
// CSVWriter encodes ';' separated tables with an optional UTF-8 BOM for
// Excel. Exporter builds on it to write the summary in csv, xlsx and json
// formats, in parallel and atomically (temp file + rename), and to stream
// the same tables to stdout or an HTTP response.
//
// Example usage:
//
//	exp := exporter.NewExporter(paths, logger, metrics, exporter.Options{Delimiter: ';'})
//	files, err := exp.ExportSummaries(ctx, exporter.SummaryReport{
//		GeneratedAt: time.Now(),
//		Unit:        domain.UnitHours,
//		Persons:     summaries,
//	}, "", []exporter.Format{exporter.FormatCSV, exporter.FormatXLSX})
package exporter
