package progress

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
)

// =============================================================================
// WEIGHTED COMPLETION CURVE - Scheduled progress implied by end dates
// =============================================================================

// CompletionCurve builds the scheduled (weighted completion) curve: walk
// the items in end-date order accumulating weight, and at each distinct
// end date emit the cumulative share of total weight reached once every
// item ending that day is folded in. A synthetic zero point at the
// earliest start anchors the curve's left edge.
//
// The result is sparse and step-wise: points exist only at completion
// dates. It is monotonically non-decreasing and, when every item carries a
// valid span, its final point is exactly 100.
//
// Items without both dates are skipped. When nothing remains, or the
// summed weight is not positive, the curve is undefined and nil is
// returned (never a division by zero).
func CompletionCurve(items []WorkItem) []CurvePoint {
	scheduled := make([]WorkItem, 0, len(items))
	for _, item := range items {
		if item.HasSpan() {
			scheduled = append(scheduled, item)
		}
	}
	if len(scheduled) == 0 {
		return nil
	}

	totalWeight := decimal.Zero
	for _, item := range scheduled {
		totalWeight = totalWeight.Add(item.EffectiveWeight())
	}
	if !totalWeight.IsPositive() {
		return nil
	}

	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].End.Before(*scheduled[j].End)
	})

	earliestStart := *scheduled[0].Start
	for _, item := range scheduled[1:] {
		if item.Start.Before(earliestStart) {
			earliestStart = *item.Start
		}
	}

	var points []CurvePoint
	cumulative := decimal.Zero
	for i := 0; i < len(scheduled); {
		end := scheduled[i].End.Normalize()
		// Fold in every item completing on this day before emitting,
		// so ties produce a single point with the combined total.
		for i < len(scheduled) && scheduled[i].End.Equal(end) {
			cumulative = cumulative.Add(scheduled[i].EffectiveWeight())
			i++
		}
		points = append(points, CurvePoint{
			Date:    end,
			Percent: cumulative.Div(totalWeight).Mul(generic.Hundred),
		})
	}

	// Anchor at zero on the earliest start, unless an item completes on
	// that very day (the completion point then owns the date).
	if earliestStart.Before(points[0].Date) {
		points = append([]CurvePoint{{Date: earliestStart.Normalize(), Percent: decimal.Zero}}, points...)
	}

	return points
}

// ScheduledTotalWeight sums effective weights over items eligible for
// curve construction. Shared by the scheduled and actual curves so both
// normalize against the same denominator.
func ScheduledTotalWeight(items []WorkItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.HasSpan() {
			total = total.Add(item.EffectiveWeight())
		}
	}
	return total
}
