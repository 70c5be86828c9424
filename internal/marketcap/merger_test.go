package marketcap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ndxcap/internal/contracts"
)

func record(date, name string, value int64) contracts.MarketCapRecord {
	return contracts.MarketCapRecord{
		Date:     date,
		Name:     name,
		FullName: name,
		Category: "Technology",
		Value:    value,
	}
}

func TestMerger_Plan_FreshStart(t *testing.T) {
	m := NewMerger(day("2020-01-01"), testLogger())

	plan := m.Plan(contracts.Dataset{}, day("2024-06-15"))

	assert.Equal(t, StateFreshStart, plan.State)
	assert.True(t, plan.FetchStart.Equal(day("2020-01-01")))
	assert.True(t, plan.Cutoff.Equal(day("2020-01-01")))
}

func TestMerger_Plan_Resume(t *testing.T) {
	m := NewMerger(day("2020-01-01"), testLogger())
	existing := contracts.Dataset{
		record("2024-05-30", "AAPL", 3_000_000_000),
		record("2024-06-01", "AAPL", 3_000_000_000),
	}

	plan := m.Plan(existing, day("2024-06-10"))

	assert.Equal(t, StateResume, plan.State)
	// resume = last + 1 day; fetch start backs off by the context window
	assert.True(t, plan.Cutoff.Equal(day("2024-06-02")))
	assert.True(t, plan.FetchStart.Equal(day("2024-06-02").AddDate(0, 0, -ContextDays)))
}

func TestMerger_Plan_UpToDate(t *testing.T) {
	m := NewMerger(day("2020-01-01"), testLogger())

	tests := []struct {
		name     string
		lastDate string
		today    string
	}{
		{"last date is today", "2024-06-10", "2024-06-10"},
		{"last date after today", "2024-06-11", "2024-06-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := contracts.Dataset{record(tt.lastDate, "AAPL", 3_000_000_000)}
			plan := m.Plan(existing, day(tt.today))
			assert.Equal(t, StateUpToDate, plan.State)
		})
	}
}

func TestMerger_Reconcile_OverwritesWindowWithoutDuplicates(t *testing.T) {
	m := NewMerger(day("2020-01-01"), testLogger())

	// Persisted data ends 2024-06-01
	existing := contracts.Dataset{
		record("2024-05-31", "AAPL", 3_000_000_000),
		record("2024-06-01", "AAPL", 3_100_000_000),
		record("2024-06-01", "MSFT", 2_900_000_000),
	}

	plan := m.Plan(existing, day("2024-06-10"))
	require.Equal(t, StateResume, plan.State)

	// Computed batch includes context rows before the cutoff plus the new window
	computed := contracts.Dataset{
		record("2024-05-31", "AAPL", 3_000_000_001), // context only, discarded
		record("2024-06-01", "AAPL", 3_100_000_001), // context only, discarded
		record("2024-06-03", "AAPL", 3_200_000_000),
		record("2024-06-03", "MSFT", 2_950_000_000),
		record("2024-06-10", "AAPL", 3_300_000_000),
	}

	merged, state, changed := m.Reconcile(existing, computed, plan)

	assert.Equal(t, StatePartialFetchApplied, state)
	assert.True(t, changed)

	// Records at or before the last persisted date are untouched
	assert.Contains(t, merged, existing[0])
	assert.Contains(t, merged, existing[1])
	assert.Contains(t, merged, existing[2])

	// Context rows were not persisted
	assert.NotContains(t, merged, computed[0])
	assert.NotContains(t, merged, computed[1])

	// New window applied
	assert.Contains(t, merged, computed[2])
	assert.Contains(t, merged, computed[4])

	// No duplicate (date, name) pairs
	seen := make(map[string]struct{})
	for _, r := range merged {
		key := fmt.Sprintf("%s|%s", r.Date, r.Name)
		_, dup := seen[key]
		require.Falsef(t, dup, "duplicate record %s", key)
		seen[key] = struct{}{}
	}
}

func TestMerger_Reconcile_StaleWindowRecordsDropped(t *testing.T) {
	m := NewMerger(day("2020-01-01"), testLogger())

	existing := contracts.Dataset{
		record("2024-06-01", "AAPL", 3_000_000_000),
	}
	plan := FetchPlan{
		State:      StateResume,
		FetchStart: day("2024-02-23"),
		Cutoff:     day("2024-06-01"), // recompute from 06-01 onward
	}
	computed := contracts.Dataset{
		record("2024-06-01", "AAPL", 3_050_000_000),
	}

	merged, _, changed := m.Reconcile(existing, computed, plan)

	assert.True(t, changed)
	require.Len(t, merged, 1)
	assert.Equal(t, int64(3_050_000_000), merged[0].Value, "recomputed window supersedes stale records")
}

func TestMerger_Reconcile_EmptyDeltaIsNoOp(t *testing.T) {
	m := NewMerger(day("2020-01-01"), testLogger())

	existing := contracts.Dataset{
		record("2024-06-01", "AAPL", 3_000_000_000),
	}
	plan := m.Plan(existing, day("2024-06-10"))

	// Provider returned only context-window rows (e.g. holidays since)
	computed := contracts.Dataset{
		record("2024-05-31", "AAPL", 3_000_000_000),
		record("2024-06-01", "AAPL", 3_000_000_000),
	}

	merged, state, changed := m.Reconcile(existing, computed, plan)

	assert.Equal(t, StatePartialFetchApplied, state)
	assert.False(t, changed, "empty delta must not trigger a write")
	assert.Equal(t, existing, merged)
}

func TestMerger_Reconcile_FreshStartKeepsState(t *testing.T) {
	m := NewMerger(day("2020-01-01"), testLogger())

	plan := m.Plan(contracts.Dataset{}, day("2024-06-10"))
	computed := contracts.Dataset{
		record("2020-01-02", "AAPL", 1_500_000_000),
	}

	merged, state, changed := m.Reconcile(contracts.Dataset{}, computed, plan)

	assert.Equal(t, StateFreshStart, state)
	assert.True(t, changed)
	assert.Equal(t, computed, merged)
}
