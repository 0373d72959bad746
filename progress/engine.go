package progress

import (
	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
)

// =============================================================================
// PROGRESS CURVE ENGINE - Three aligned daily series
// =============================================================================

// ComputeSeries produces the merged daily output: one record per calendar
// day in the overall window, each carrying whichever of the three curve
// values is defined for that day.
//
// The window is the UNION of three candidate spans: the contract period
// (only when includeContractCurve is set), the min-start..max-end span of
// the scheduled items, and the span of all reported snapshot dates. Union
// rather than intersection, because the three lines share one x-axis and
// no real data point may be dropped just because another curve's span is
// narrower. When no source yields a span the contract period is the
// fallback; absent that too, the series is empty.
//
// includeContractCurve is a plain visibility flag supplied by the caller.
// The engine knows nothing about roles or identity.
func ComputeSeries(items []WorkItem, contract *generic.Period, includeContractCurve bool) []DailyProgressPoint {
	window, ok := seriesWindow(items, contract, includeContractCurve)
	if !ok {
		return nil
	}

	scheduled := indexCurve(CompletionCurve(items))
	actual := actualCurve(items)

	var points []DailyProgressPoint
	for _, day := range window.Days() {
		point := DailyProgressPoint{Date: day}
		if includeContractCurve && contract != nil && contract.Validate() == nil {
			point.Contractual = generic.DecimalPtr(contractualAt(*contract, day))
		}
		if pct, found := scheduled[day]; found {
			point.Scheduled = generic.DecimalPtr(pct)
		}
		if pct, found := actual[day]; found {
			point.Actual = generic.DecimalPtr(pct)
		}
		points = append(points, point)
	}
	return points
}

// seriesWindow determines the overall date window. Returns false when no
// data source yields one.
func seriesWindow(items []WorkItem, contract *generic.Period, includeContractCurve bool) (generic.Period, bool) {
	var starts, ends []generic.Date

	if includeContractCurve && contract != nil && contract.Validate() == nil {
		starts = append(starts, contract.Start)
		ends = append(ends, contract.End)
	}

	for _, item := range items {
		if item.HasSpan() {
			starts = append(starts, *item.Start)
			ends = append(ends, *item.End)
		}
	}

	// Snapshot dates count for the window even when the owning item has
	// no schedule span: a reported observation is real data.
	for _, item := range items {
		for _, snap := range item.History {
			starts = append(starts, snap.Date)
			ends = append(ends, snap.Date)
		}
	}

	if len(starts) == 0 {
		if contract != nil && contract.Validate() == nil {
			return *contract, true
		}
		return generic.Period{}, false
	}

	window := generic.Period{Start: starts[0], End: ends[0]}
	for _, d := range starts[1:] {
		if d.Before(window.Start) {
			window.Start = d
		}
	}
	for _, d := range ends[1:] {
		if d.After(window.End) {
			window.End = d
		}
	}
	return generic.Period{Start: window.Start.Normalize(), End: window.End.Normalize()}, true
}

// contractualAt evaluates the linear contract line for one day: 0 before
// the contract starts, 100 after it ends, linear time elapsed in between.
func contractualAt(contract generic.Period, day generic.Date) decimal.Decimal {
	if day.Before(contract.Start) {
		return decimal.Zero
	}
	if day.After(contract.End) {
		return generic.Hundred
	}
	totalDays := generic.DaysBetween(contract.Start, contract.End)
	if totalDays < 1 {
		// Zero-length contract: keep the divisor positive. With no time
		// elapsed the single day evaluates to 0.
		totalDays = 1
	}
	elapsed := decimal.NewFromInt(int64(generic.DaysBetween(contract.Start, day)))
	return generic.Ratio(elapsed, decimal.NewFromInt(int64(totalDays)))
}

// actualCurve builds the sparse actual-progress values keyed by day.
//
// A day is emitted only when at least one item reported a snapshot exactly
// on it; carry-forward is used for valuation, never for deciding which
// days exist. Emitted values are the weighted mean of every scheduled
// item's resolved progress, normalized by the same total weight the
// scheduled curve uses. With no snapshots anywhere, or a non-positive
// total weight, the curve is entirely undefined.
func actualCurve(items []WorkItem) map[generic.Date]decimal.Decimal {
	eventDays := make(map[generic.Date]struct{})
	for _, item := range items {
		for _, snap := range item.History {
			eventDays[snap.Date.Normalize()] = struct{}{}
		}
	}
	if len(eventDays) == 0 {
		return nil
	}

	totalWeight := ScheduledTotalWeight(items)
	if !totalWeight.IsPositive() {
		return nil
	}

	values := make(map[generic.Date]decimal.Decimal, len(eventDays))
	for day := range eventDays {
		weighted := decimal.Zero
		for _, item := range items {
			if !item.HasSpan() {
				continue
			}
			weighted = weighted.Add(item.EffectiveWeight().Mul(ResolveProgressAt(item, day)))
		}
		values[day] = weighted.Div(totalWeight)
	}
	return values
}

func indexCurve(points []CurvePoint) map[generic.Date]decimal.Decimal {
	if len(points) == 0 {
		return nil
	}
	index := make(map[generic.Date]decimal.Decimal, len(points))
	for _, p := range points {
		index[p.Date.Normalize()] = p.Percent
	}
	return index
}
