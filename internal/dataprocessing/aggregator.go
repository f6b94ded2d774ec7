package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"absencecli/internal/infrastructure"
	"absencecli/pkg/contracts/domain"
)

// truncateScale is the resolution sums are rounded to before truncation.
// It absorbs float drift that grows with the number of summed entries, so
// 1000 entries of 45 minutes summed as 45/67 school-hours still give 45000.
// Real fractions are multiples of 1/67 and stay far above it.
const truncateScale = 1e6

// Aggregator folds normalized entries into one summary per person
type Aggregator struct {
	logger   *slog.Logger
	unit     domain.Unit
	rounding Rounding
}

// AggregatorConfig holds configuration options for the Aggregator.
type AggregatorConfig struct {
	Unit     domain.Unit
	Rounding Rounding
}

// DefaultAggregatorConfig returns school-hours with truncation
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{Unit: domain.UnitHours, Rounding: RoundingTruncate}
}

// NewAggregator creates a new aggregator with the given configuration.
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Unit == "" {
		config.Unit = domain.UnitHours
	}
	if config.Rounding == "" {
		config.Rounding = RoundingTruncate
	}

	return &Aggregator{
		logger:   infrastructure.WithComponent(logger, "aggregator"),
		unit:     config.Unit,
		rounding: config.Rounding,
	}
}

// personTotals accumulates school-hours per status
type personTotals struct {
	excused   float64
	unexcused float64
}

// Aggregate groups entries by person and returns summaries sorted by name.
// Every entry contributes to exactly one summary. Empty input yields an empty
// slice; aggregation never fails.
func (a *Aggregator) Aggregate(ctx context.Context, entries []domain.NormalizedEntry) []domain.PersonSummary {
	a.logger.DebugContext(ctx, "aggregating absence entries",
		slog.Int("entry_count", len(entries)))

	if len(entries) == 0 {
		return []domain.PersonSummary{}
	}

	byPerson := a.groupByPerson(entries)

	names := make([]string, 0, len(byPerson))
	for name := range byPerson {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]domain.PersonSummary, 0, len(names))
	for _, name := range names {
		totals := byPerson[name]
		excused := a.toInteger(totals.excused)
		unexcused := a.toInteger(totals.unexcused)
		summaries = append(summaries, domain.PersonSummary{
			PersonName:     name,
			ExcusedTotal:   excused,
			UnexcusedTotal: unexcused,
			GrandTotal:     excused + unexcused,
			Unit:           a.unit,
		})
	}

	a.logger.InfoContext(ctx, "aggregated absence totals",
		slog.Int("entry_count", len(entries)),
		slog.Int("person_count", len(summaries)),
		slog.String("unit", string(a.unit)),
		slog.String("rounding", string(a.rounding)))

	return summaries
}

func (a *Aggregator) groupByPerson(entries []domain.NormalizedEntry) map[string]*personTotals {
	byPerson := make(map[string]*personTotals)
	for _, e := range entries {
		t, ok := byPerson[e.PersonName]
		if !ok {
			t = &personTotals{}
			byPerson[e.PersonName] = t
		}
		switch e.Status {
		case domain.StatusExcused:
			t.excused += e.Duration
		default:
			t.unexcused += e.Duration
		}
	}
	return byPerson
}

// toInteger converts a school-hour sum to the output unit and drops the fraction
func (a *Aggregator) toInteger(hours float64) int64 {
	v := a.unit.FromSchoolHours(hours)
	if a.rounding == RoundingRound {
		return int64(math.Round(v))
	}
	return int64(math.Trunc(math.Round(v*truncateScale) / truncateScale))
}
