package marketcap

import (
	"time"

	"github.com/wonny/ndxcap/internal/contracts"
	"github.com/wonny/ndxcap/pkg/logger"
)

// ContextDays is the extra trailing history fetched on a resume so the
// growth lookback is satisfied at the first new date. It exceeds the
// 63-period window with margin for non-trading days.
const ContextDays = 100

// RunState describes where a pipeline run sits in the incremental cycle
type RunState string

const (
	// StateFreshStart means no usable prior dataset; fetch from the epoch
	StateFreshStart RunState = "fresh_start"
	// StateResume means prior data exists and a new window will be fetched
	StateResume RunState = "resume"
	// StateUpToDate means the dataset already covers today; nothing to do
	StateUpToDate RunState = "up_to_date"
	// StatePartialFetchApplied means a resume window was reconciled
	// (possibly with zero new records)
	StatePartialFetchApplied RunState = "partial_fetch_applied"
)

// FetchPlan is the merger's decision for one run
type FetchPlan struct {
	State      RunState
	FetchStart time.Time // first date requested from the provider
	Cutoff     time.Time // first date that will be persisted
}

// Merger owns the incremental-refresh state machine: it plans the fetch
// window from persisted state and reconciles new records into it.
// ⭐ SSOT: 증분 병합 로직은 이 타입에서만
type Merger struct {
	epochStart time.Time
	logger     *logger.Logger
}

// NewMerger creates a merger with the fresh-start epoch date
func NewMerger(epochStart time.Time, log *logger.Logger) *Merger {
	return &Merger{
		epochStart: contracts.Day(epochStart),
		logger:     log,
	}
}

// Plan inspects the persisted dataset and decides the fetch window.
//
// Empty dataset → FRESH_START from the epoch. Otherwise the run resumes the
// day after the last persisted date, fetching ContextDays of extra trailing
// history that is discarded after growth computation. A resume date beyond
// today means the store is already current and no fetch happens.
func (m *Merger) Plan(existing contracts.Dataset, today time.Time) FetchPlan {
	today = contracts.Day(today)

	last, ok := existing.LastDate()
	if !ok {
		m.logger.WithField("epoch_start", m.epochStart.Format(contracts.DateFormat)).
			Info("No prior dataset, starting fresh")
		return FetchPlan{
			State:      StateFreshStart,
			FetchStart: m.epochStart,
			Cutoff:     m.epochStart,
		}
	}

	resume := last.AddDate(0, 0, 1)
	if resume.After(today) {
		m.logger.WithField("last_date", last.Format(contracts.DateFormat)).
			Info("Dataset already up to date")
		return FetchPlan{State: StateUpToDate}
	}

	m.logger.WithFields(map[string]interface{}{
		"last_date":   last.Format(contracts.DateFormat),
		"resume_date": resume.Format(contracts.DateFormat),
	}).Info("Resuming from prior dataset")

	return FetchPlan{
		State:      StateResume,
		FetchStart: resume.AddDate(0, 0, -ContextDays),
		Cutoff:     resume,
	}
}

// Reconcile merges freshly computed records into the persisted dataset.
//
// Computed records before the cutoff are context-only rows and are dropped.
// Persisted records at or after the cutoff are removed before the new batch
// is appended, so a rerun over the same window overwrites rather than
// duplicates. The returned bool reports whether the dataset changed and
// needs a write; an empty delta leaves the store untouched.
func (m *Merger) Reconcile(existing, computed contracts.Dataset, plan FetchPlan) (contracts.Dataset, RunState, bool) {
	cutoffStr := plan.Cutoff.Format(contracts.DateFormat)

	fresh := make(contracts.Dataset, 0, len(computed))
	for _, r := range computed {
		if r.Date >= cutoffStr { // ISO dates compare lexicographically
			fresh = append(fresh, r)
		}
	}

	m.warnOnCoverageGap(computed, plan)

	if len(fresh) == 0 {
		m.logger.Info("No new records after cutoff filtering, skipping write")
		state := plan.State
		if state == StateResume {
			state = StatePartialFetchApplied
		}
		return existing, state, false
	}

	// Defensive overwrite of the recomputed window: drop anything a prior
	// partial or stale run left at or after the cutoff.
	kept := make(contracts.Dataset, 0, len(existing)+len(fresh))
	dropped := 0
	for _, r := range existing {
		if r.Date >= cutoffStr {
			dropped++
			continue
		}
		kept = append(kept, r)
	}

	merged := append(kept, fresh...)

	m.logger.WithFields(map[string]interface{}{
		"kept":    len(kept),
		"dropped": dropped,
		"new":     len(fresh),
		"total":   len(merged),
	}).Info("Reconciled dataset")

	state := plan.State
	if state == StateResume {
		state = StatePartialFetchApplied
	}
	return merged, state, true
}

// warnOnCoverageGap flags a truncated upstream range: if the provider
// returned nothing before the cutoff on a resume, the growth context is
// missing and the window boundary may hide a coverage hole. Logged, not
// fixed; the batch is still applied.
func (m *Merger) warnOnCoverageGap(computed contracts.Dataset, plan FetchPlan) {
	if plan.State != StateResume || len(computed) == 0 {
		return
	}

	cutoffStr := plan.Cutoff.Format(contracts.DateFormat)
	for _, r := range computed {
		if r.Date < cutoffStr {
			return // context rows present, window looks healthy
		}
	}

	m.logger.WithFields(map[string]interface{}{
		"cutoff":      cutoffStr,
		"fetch_start": plan.FetchStart.Format(contracts.DateFormat),
	}).Warn("Fetched range has no context before cutoff, possible coverage gap")
}
