/*
Package progress implements the progress curve engine.

PURPOSE:
  Converts a set of scheduled work items (each with a date span, a relative
  weight, and a sparse history of progress snapshots) into three aligned
  daily series for the site dashboard:

  - Contractual curve: linear time elapsed over the contract period
  - Scheduled curve:   weighted completion implied by item end dates
  - Actual curve:      weighted progress from real reported snapshots

KEY CONCEPTS:
  - Sparse in, dense axis out: items report progress irregularly; the
    output shares one daily x-axis so the three lines can be plotted
    together. Scheduled and actual values stay sparse WITHIN that axis
    (nil per day where no event exists); connecting the gaps is the
    chart's concern, not the engine's.
  - LOCF: "progress as of day D" is the latest snapshot dated on or
    before D (last observation carried forward).
  - Weights: an item's share of total project effort. Missing weight
    defaults to 1, so an unweighted schedule degrades to a plain count.

DESIGN PRINCIPLES:
  1. Pure functions: no I/O, no retained state, bit-identical output for
     identical input. Callers that want caching memoize outside.
  2. Tolerant of record defects: an item missing its dates contributes
     nothing rather than failing the whole computation.
  3. Role-free: whether the contractual line is visible is the caller's
     decision, passed in as a plain boolean.

SEE ALSO:
  - resolver.go: LOCF snapshot resolution
  - curve.go: weighted completion curve
  - engine.go: the three-series assembly
*/
package progress

import (
	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
)

// =============================================================================
// WORK ITEM - Read-only input from the scheduling subsystem
// =============================================================================

// Snapshot is a single reported progress observation for a work item.
// Progress is a percentage in [0, 100].
type Snapshot struct {
	Date     generic.Date
	Progress decimal.Decimal
}

// WorkItem is a schedulable unit of construction work. It is owned and
// mutated by the task-management subsystem; this engine only reads it.
type WorkItem struct {
	ID   string
	Name string

	// Start and End are the scheduled span. Items missing either are
	// excluded from curve construction (they contribute nothing; this is
	// not an error).
	Start *generic.Date
	End   *generic.Date

	// Weight is the item's share of total project effort. nil means 1.
	// Zero and negative weights are accepted; they simply contribute
	// nothing to the weighted sums.
	Weight *decimal.Decimal

	// History holds progress snapshots in insertion order, which is not
	// necessarily date order.
	History []Snapshot

	// CurrentProgress is a scalar fallback consulted only when no
	// snapshot precedes the queried date.
	CurrentProgress *decimal.Decimal
}

// EffectiveWeight returns the item's weight, defaulting to 1 when unset.
func (w WorkItem) EffectiveWeight() decimal.Decimal {
	if w.Weight == nil {
		return decimal.NewFromInt(1)
	}
	return *w.Weight
}

// HasSpan reports whether the item carries a coherent schedule span and
// is therefore eligible for curve construction. A reversed span (end
// before start) is a record defect and excluded like a missing date.
func (w WorkItem) HasSpan() bool {
	if w.Start == nil || w.End == nil || w.Start.IsZero() || w.End.IsZero() {
		return false
	}
	return !w.End.Before(*w.Start)
}

// =============================================================================
// OUTPUT - One record per day on the shared x-axis
// =============================================================================

// DailyProgressPoint is one day of the merged output. A nil field means
// the corresponding series has no value on that day; consumers must not
// conflate that with zero.
type DailyProgressPoint struct {
	Date        generic.Date
	Contractual *decimal.Decimal
	Scheduled   *decimal.Decimal
	Actual      *decimal.Decimal
}

// CurvePoint is one emitted point of a sparse curve.
type CurvePoint struct {
	Date    generic.Date
	Percent decimal.Decimal
}
