package dataprocessing

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absencecli/pkg/contracts/domain"
)

func entry(name string, hours float64, status domain.Status) domain.NormalizedEntry {
	return domain.NormalizedEntry{PersonName: name, Duration: hours, Status: status, Kind: domain.KindFullDay}
}

func TestAggregator_Aggregate(t *testing.T) {
	tests := []struct {
		name    string
		config  AggregatorConfig
		entries []domain.NormalizedEntry
		want    []domain.PersonSummary
	}{
		{
			name:   "grouped and sorted by name",
			config: DefaultAggregatorConfig(),
			entries: []domain.NormalizedEntry{
				entry("Bob", 2, domain.StatusExcused),
				entry("Alice", 1, domain.StatusExcused),
				entry("Alice", 4, domain.StatusUnexcused),
			},
			want: []domain.PersonSummary{
				{PersonName: "Alice", ExcusedTotal: 1, UnexcusedTotal: 4, GrandTotal: 5, Unit: domain.UnitHours},
				{PersonName: "Bob", ExcusedTotal: 2, UnexcusedTotal: 0, GrandTotal: 2, Unit: domain.UnitHours},
			},
		},
		{
			name:   "fractions truncate per status",
			config: DefaultAggregatorConfig(),
			entries: []domain.NormalizedEntry{
				entry("Alice", 45.0/67.0, domain.StatusExcused),
				entry("Alice", 45.0/67.0, domain.StatusExcused),
				entry("Alice", 0.9, domain.StatusUnexcused),
			},
			want: []domain.PersonSummary{
				{PersonName: "Alice", ExcusedTotal: 1, UnexcusedTotal: 0, GrandTotal: 1, Unit: domain.UnitHours},
			},
		},
		{
			name:   "round mode",
			config: AggregatorConfig{Unit: domain.UnitHours, Rounding: RoundingRound},
			entries: []domain.NormalizedEntry{
				entry("Alice", 45.0/67.0, domain.StatusExcused),
				entry("Alice", 45.0/67.0, domain.StatusExcused),
				entry("Alice", 0.5, domain.StatusUnexcused),
			},
			want: []domain.PersonSummary{
				{PersonName: "Alice", ExcusedTotal: 1, UnexcusedTotal: 1, GrandTotal: 2, Unit: domain.UnitHours},
			},
		},
		{
			name:   "minutes survive float conversion",
			config: AggregatorConfig{Unit: domain.UnitMinutes},
			entries: []domain.NormalizedEntry{
				entry("Alice", 45.0/67.0, domain.StatusExcused),
				entry("Alice", 45.0/67.0, domain.StatusExcused),
				entry("Alice", 4, domain.StatusUnexcused),
			},
			want: []domain.PersonSummary{
				{PersonName: "Alice", ExcusedTotal: 90, UnexcusedTotal: 268, GrandTotal: 358, Unit: domain.UnitMinutes},
			},
		},
		{
			name:    "empty input",
			config:  DefaultAggregatorConfig(),
			entries: nil,
			want:    []domain.PersonSummary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAggregator(nil, tt.config).Aggregate(context.Background(), tt.entries)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregator_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	names := []string{"Chris", "alice", "Bob", "Ümit", "Alice"}

	entries := make([]domain.NormalizedEntry, 0, 200)
	var totalHours float64
	for i := 0; i < 200; i++ {
		status := domain.StatusUnexcused
		if rng.Intn(2) == 0 {
			status = domain.StatusExcused
		}
		hours := float64(rng.Intn(12)+1) * 4
		totalHours += hours
		entries = append(entries, entry(names[rng.Intn(len(names))], hours, status))
	}

	agg := NewAggregator(nil, DefaultAggregatorConfig())
	first := agg.Aggregate(context.Background(), entries)

	t.Run("grand total is the sum of both statuses", func(t *testing.T) {
		for _, s := range first {
			assert.Equal(t, s.ExcusedTotal+s.UnexcusedTotal, s.GrandTotal, s.PersonName)
		}
	})

	t.Run("every entry counted once", func(t *testing.T) {
		var sum int64
		for _, s := range first {
			sum += s.GrandTotal
		}
		assert.Equal(t, int64(totalHours), sum)
	})

	t.Run("one summary per distinct name in ascending order", func(t *testing.T) {
		seen := map[string]bool{}
		for _, e := range entries {
			seen[e.PersonName] = true
		}
		require.Len(t, first, len(seen))
		for i := 1; i < len(first); i++ {
			assert.Less(t, first[i-1].PersonName, first[i].PersonName)
		}
	})

	t.Run("idempotent under input order", func(t *testing.T) {
		shuffled := append([]domain.NormalizedEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assert.Equal(t, first, agg.Aggregate(context.Background(), entries))
		assert.Equal(t, first, agg.Aggregate(context.Background(), shuffled))
	})
}

func TestAggregator_TotalsMatchDurationsUpToTruncation(t *testing.T) {
	entries := []domain.NormalizedEntry{
		entry("Alice", 1.0, domain.StatusExcused),
		entry("Alice", 50.0/67.0, domain.StatusExcused),
		entry("Alice", 30.0/67.0, domain.StatusUnexcused),
		entry("Bob", 12, domain.StatusUnexcused),
	}
	var sum float64
	for _, e := range entries {
		sum += e.Duration
	}

	var total int64
	for _, s := range NewAggregator(nil, DefaultAggregatorConfig()).Aggregate(context.Background(), entries) {
		total += s.GrandTotal
	}

	// each of the two statuses per person may lose less than one unit
	assert.LessOrEqual(t, float64(total), sum)
	assert.Greater(t, float64(total), sum-4)
}

func TestAggregator_ManyFractionalEntriesInMinutes(t *testing.T) {
	const count = 1000

	for _, minutes := range []int{1, 13, 45, 66} {
		t.Run(fmt.Sprintf("%d minutes", minutes), func(t *testing.T) {
			entries := make([]domain.NormalizedEntry, count)
			for i := range entries {
				entries[i] = entry("Alice", float64(minutes)/domain.SchoolHourMinutes, domain.StatusExcused)
			}

			got := NewAggregator(nil, AggregatorConfig{Unit: domain.UnitMinutes}).Aggregate(context.Background(), entries)
			require.Len(t, got, 1)
			assert.Equal(t, int64(minutes*count), got[0].ExcusedTotal)
			assert.Equal(t, int64(minutes*count), got[0].GrandTotal)
		})
	}
}
