// Package dataprocessing turns attendance exports into per-person absence totals.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. ExportReader: reads ';' separated or .xlsx exports into RawEntry rows
// 2. DurationNormalizer: classifies each absence field and converts it to school-hours
// 3. Aggregator: sums durations per person and status into PersonSummary values
//
// Pipeline wires normalizer and aggregator together with tracing and metrics.
//
// # Usage
//
//	reader := dataprocessing.NewExportReader(logger, dataprocessing.DefaultReadOptions())
//	raws, err := reader.ReadFile(ctx, "export.csv")
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.NewPipeline(logger, nil, nil).Summarize(ctx, raws, dataprocessing.DefaultOptions())
//
// # Data Flow
//
//	Export → ExportReader → RawEntry → DurationNormalizer → NormalizedEntry → Aggregator → PersonSummary
//
// # Absence field shapes
//
//	"04.03.2024 (08:00 - 09:07)"   clock range, (end - start) minutes / 67
//	"01.03.2024 - 03.03.2024"      date range, (days + 1) * 4
//	"ganztägig"                    full day, 4
//
// Shapes are recognised by splitting on " - " and classifying the nearest
// token on each side, never by character offsets.
//
// # Error Handling
//
// Row failures are *errors.ParseError values carrying the row number and the
// raw text. ErrorPolicy decides whether the first one aborts the batch
// (fail-fast) or rows are dropped and reported (skip).
package dataprocessing
