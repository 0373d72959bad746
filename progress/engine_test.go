package progress_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/site-analytics/generic"
	"github.com/warp/site-analytics/progress"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(day int) generic.Date {
	return generic.NewDate(2024, time.January, day)
}

func datePtr(d generic.Date) *generic.Date { return &d }

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func decPtr(v float64) *decimal.Decimal {
	d := dec(v)
	return &d
}

func snap(day int, pct float64) progress.Snapshot {
	return progress.Snapshot{Date: date(day), Progress: dec(pct)}
}

func item(id string, start, end int, weight *decimal.Decimal, history ...progress.Snapshot) progress.WorkItem {
	return progress.WorkItem{
		ID:      id,
		Start:   datePtr(date(start)),
		End:     datePtr(date(end)),
		Weight:  weight,
		History: history,
	}
}

func pointAt(t *testing.T, series []progress.DailyProgressPoint, d generic.Date) progress.DailyProgressPoint {
	t.Helper()
	for _, p := range series {
		if p.Date.Equal(d) {
			return p
		}
	}
	t.Fatalf("no point for %s in series", d)
	return progress.DailyProgressPoint{}
}

func assertDecEqual(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %v, got %v", expected, actual)
}

// =============================================================================
// LOCF RESOLVER TESTS
// =============================================================================

func TestResolveProgressAt_CarryForward(t *testing.T) {
	// GIVEN: History [(d1, 20), (d2, 60)]
	// THEN: Any date in [d1, d2) resolves to 20, any date >= d2 to 60
	it := item("a", 1, 31, nil, snap(5, 20), snap(15, 60))

	assertDecEqual(t, 20, progress.ResolveProgressAt(it, date(5)))
	assertDecEqual(t, 20, progress.ResolveProgressAt(it, date(14)))
	assertDecEqual(t, 60, progress.ResolveProgressAt(it, date(15)))
	assertDecEqual(t, 60, progress.ResolveProgressAt(it, date(30)))
}

func TestResolveProgressAt_BeforeFirstSnapshot(t *testing.T) {
	it := item("a", 1, 31, nil, snap(10, 50))
	assertDecEqual(t, 0, progress.ResolveProgressAt(it, date(9)))
}

func TestResolveProgressAt_BeforeFirstSnapshot_CurrentProgressFallback(t *testing.T) {
	it := item("a", 1, 31, nil, snap(10, 50))
	it.CurrentProgress = decPtr(5)
	assertDecEqual(t, 5, progress.ResolveProgressAt(it, date(9)))
}

func TestResolveProgressAt_NoHistory(t *testing.T) {
	bare := item("a", 1, 31, nil)
	assertDecEqual(t, 0, progress.ResolveProgressAt(bare, date(15)))

	bare.CurrentProgress = decPtr(42)
	assertDecEqual(t, 42, progress.ResolveProgressAt(bare, date(15)))
}

func TestResolveProgressAt_UnorderedHistory(t *testing.T) {
	// History is insertion-ordered, not date-ordered; resolution must
	// still pick the latest date <= the query.
	it := item("a", 1, 31, nil, snap(20, 80), snap(5, 10))
	assertDecEqual(t, 10, progress.ResolveProgressAt(it, date(12)))
	assertDecEqual(t, 80, progress.ResolveProgressAt(it, date(25)))
}

func TestResolveProgressAt_SameDayCorrectionWins(t *testing.T) {
	it := item("a", 1, 31, nil, snap(10, 30), snap(10, 35))
	assertDecEqual(t, 35, progress.ResolveProgressAt(it, date(10)))
}

// =============================================================================
// COMPLETION CURVE TESTS
// =============================================================================

func TestCompletionCurve_SingleItem(t *testing.T) {
	// Scenario: one item Jan 1 - Jan 10, weight 1.
	// Expected: synthetic (Jan 1, 0) plus (Jan 10, 100).
	points := progress.CompletionCurve([]progress.WorkItem{item("a", 1, 10, nil)})

	require.Len(t, points, 2)
	assert.True(t, points[0].Date.Equal(date(1)))
	assertDecEqual(t, 0, points[0].Percent)
	assert.True(t, points[1].Date.Equal(date(10)))
	assertDecEqual(t, 100, points[1].Percent)
}

func TestCompletionCurve_SameDayCompletionsFold(t *testing.T) {
	// Scenario: weights 1 and 3 ending the same day contribute 25% and
	// 75% to a single cumulative point of 100.
	points := progress.CompletionCurve([]progress.WorkItem{
		item("a", 1, 10, decPtr(1)),
		item("b", 2, 10, decPtr(3)),
	})

	require.Len(t, points, 2)
	assert.True(t, points[1].Date.Equal(date(10)))
	assertDecEqual(t, 100, points[1].Percent)
}

func TestCompletionCurve_MonotoneAndEndsAtHundred(t *testing.T) {
	points := progress.CompletionCurve([]progress.WorkItem{
		item("a", 1, 8, decPtr(2)),
		item("b", 3, 20, decPtr(5)),
		item("c", 2, 12, decPtr(3)),
	})

	require.NotEmpty(t, points)
	for i := 1; i < len(points); i++ {
		assert.False(t, points[i].Percent.LessThan(points[i-1].Percent),
			"curve must be non-decreasing at %s", points[i].Date)
	}
	assertDecEqual(t, 100, points[len(points)-1].Percent)
}

func TestCompletionCurve_IntermediateSteps(t *testing.T) {
	points := progress.CompletionCurve([]progress.WorkItem{
		item("a", 1, 5, decPtr(1)),
		item("b", 1, 9, decPtr(1)),
	})

	require.Len(t, points, 3)
	assertDecEqual(t, 0, points[0].Percent)
	assertDecEqual(t, 50, points[1].Percent)
	assertDecEqual(t, 100, points[2].Percent)
}

func TestCompletionCurve_ItemsWithoutSpanExcluded(t *testing.T) {
	noDates := progress.WorkItem{ID: "x", Weight: decPtr(10)}
	points := progress.CompletionCurve([]progress.WorkItem{noDates, item("a", 1, 10, decPtr(1))})

	require.Len(t, points, 2)
	assertDecEqual(t, 100, points[1].Percent)
}

func TestCompletionCurve_ReversedSpanExcluded(t *testing.T) {
	// GIVEN: An item whose end precedes its start, alongside a valid one
	// THEN: The reversed item contributes neither weight nor a point; the
	//       curve is the valid item's alone
	reversed := item("backwards", 10, 1, decPtr(1))
	points := progress.CompletionCurve([]progress.WorkItem{reversed, item("a", 1, 20, decPtr(1))})

	require.Len(t, points, 2)
	assert.True(t, points[0].Date.Equal(date(1)))
	assertDecEqual(t, 0, points[0].Percent)
	assert.True(t, points[1].Date.Equal(date(20)))
	assertDecEqual(t, 100, points[1].Percent)
}

func TestCompletionCurve_ZeroTotalWeightUndefined(t *testing.T) {
	points := progress.CompletionCurve([]progress.WorkItem{
		item("a", 1, 10, decPtr(0)),
		item("b", 1, 12, decPtr(0)),
	})
	assert.Nil(t, points)
}

func TestCompletionCurve_NoItems(t *testing.T) {
	assert.Nil(t, progress.CompletionCurve(nil))
}

// =============================================================================
// SERIES ASSEMBLY TESTS
// =============================================================================

func TestComputeSeries_ScenarioSingleItem(t *testing.T) {
	// GIVEN: One item Jan 1 - Jan 10, weight 1, history
	//        [(Jan 1, 0), (Jan 5, 50), (Jan 10, 100)]
	// THEN: actual(Jan 5) = 50, actual(Jan 10) = 100, Jan 3 has no actual
	//       value (no snapshot that day); scheduled has its step at Jan 10.
	it := item("a", 1, 10, decPtr(1), snap(1, 0), snap(5, 50), snap(10, 100))
	series := progress.ComputeSeries([]progress.WorkItem{it}, nil, false)

	require.Len(t, series, 10)

	jan3 := pointAt(t, series, date(3))
	assert.Nil(t, jan3.Actual, "no snapshot on Jan 3, so no emitted actual value")

	jan5 := pointAt(t, series, date(5))
	require.NotNil(t, jan5.Actual)
	assertDecEqual(t, 50, *jan5.Actual)

	jan10 := pointAt(t, series, date(10))
	require.NotNil(t, jan10.Actual)
	assertDecEqual(t, 100, *jan10.Actual)
	require.NotNil(t, jan10.Scheduled)
	assertDecEqual(t, 100, *jan10.Scheduled)

	jan1 := pointAt(t, series, date(1))
	require.NotNil(t, jan1.Scheduled)
	assertDecEqual(t, 0, *jan1.Scheduled)
	assert.Nil(t, jan1.Contractual, "contract curve disabled")
}

func TestComputeSeries_WeightedSumOrderIndependent(t *testing.T) {
	// GIVEN: Two items with weights 1 and 3 reporting on the same day
	// THEN: actual = (1*a1 + 3*a2) / 4 regardless of item order
	a := item("a", 1, 10, decPtr(1), snap(5, 40))
	b := item("b", 1, 10, decPtr(3), snap(5, 80))

	forward := progress.ComputeSeries([]progress.WorkItem{a, b}, nil, false)
	reverse := progress.ComputeSeries([]progress.WorkItem{b, a}, nil, false)

	want := dec(70) // (1*40 + 3*80) / 4
	for _, series := range [][]progress.DailyProgressPoint{forward, reverse} {
		p := pointAt(t, series, date(5))
		require.NotNil(t, p.Actual)
		assert.True(t, want.Equal(*p.Actual), "expected 70, got %v", *p.Actual)
	}
}

func TestComputeSeries_EmptyInputs(t *testing.T) {
	// Scenario: no items, no contract -> empty series.
	assert.Empty(t, progress.ComputeSeries(nil, nil, false))
}

func TestComputeSeries_ContractWindowFallbackWithoutCurve(t *testing.T) {
	// GIVEN: No items and the contract curve NOT flagged in
	// THEN: The contract period still provides the fallback window, but
	//       every day is value-free (the flag gates the curve, the
	//       period is just the last-resort x-axis)
	contract := generic.NewPeriod(date(1), date(10))
	series := progress.ComputeSeries(nil, &contract, false)

	require.Len(t, series, 10)
	for _, p := range series {
		assert.Nil(t, p.Contractual)
		assert.Nil(t, p.Scheduled)
		assert.Nil(t, p.Actual)
	}
}

func TestComputeSeries_ContractOnly(t *testing.T) {
	// GIVEN: No items, contract Jan 1 - Jan 11, curve enabled
	// THEN: Dense daily contractual line, linear, clamped to [0, 100]
	contract := generic.NewPeriod(date(1), date(11))
	series := progress.ComputeSeries(nil, &contract, true)

	require.Len(t, series, 11)
	for _, p := range series {
		require.NotNil(t, p.Contractual, "contractual is dense when enabled")
		assert.Nil(t, p.Scheduled)
		assert.Nil(t, p.Actual)
	}
	assertDecEqual(t, 0, *pointAt(t, series, date(1)).Contractual)
	assertDecEqual(t, 50, *pointAt(t, series, date(6)).Contractual)
	assertDecEqual(t, 100, *pointAt(t, series, date(11)).Contractual)
}

func TestComputeSeries_WindowIsUnionOfSources(t *testing.T) {
	// GIVEN: Contract Jan 2 - Jan 8, item span Jan 4 - Jan 12, snapshot
	//        reported Jan 1
	// THEN: Window spans Jan 1 - Jan 12; contract days outside the
	//       contract clamp to 0 / 100
	contract := generic.NewPeriod(date(2), date(8))
	it := item("a", 4, 12, nil, snap(1, 10))
	series := progress.ComputeSeries([]progress.WorkItem{it}, &contract, true)

	require.Len(t, series, 12)
	assert.True(t, series[0].Date.Equal(date(1)))
	assert.True(t, series[len(series)-1].Date.Equal(date(12)))

	assertDecEqual(t, 0, *pointAt(t, series, date(1)).Contractual)
	assertDecEqual(t, 100, *pointAt(t, series, date(12)).Contractual)
}

func TestComputeSeries_ZeroLengthContract(t *testing.T) {
	contract := generic.NewPeriod(date(5), date(5))
	series := progress.ComputeSeries(nil, &contract, true)

	require.Len(t, series, 1)
	require.NotNil(t, series[0].Contractual)
	assertDecEqual(t, 0, *series[0].Contractual)
}

func TestComputeSeries_ZeroTotalWeight_ActualUndefined(t *testing.T) {
	it := item("a", 1, 10, decPtr(0), snap(5, 50))
	series := progress.ComputeSeries([]progress.WorkItem{it}, nil, false)

	require.NotEmpty(t, series)
	for _, p := range series {
		assert.Nil(t, p.Actual)
		assert.Nil(t, p.Scheduled)
	}
}

func TestComputeSeries_ActualOnlyOnSnapshotDays(t *testing.T) {
	// Two items; the day one item reports, the other's value is carried
	// forward into the weighted sum.
	a := item("a", 1, 20, decPtr(1), snap(5, 100))
	b := item("b", 1, 20, decPtr(1), snap(10, 50))
	series := progress.ComputeSeries([]progress.WorkItem{a, b}, nil, false)

	jan5 := pointAt(t, series, date(5))
	require.NotNil(t, jan5.Actual)
	assertDecEqual(t, 50, *jan5.Actual) // (100 + 0) / 2

	jan10 := pointAt(t, series, date(10))
	require.NotNil(t, jan10.Actual)
	assertDecEqual(t, 75, *jan10.Actual) // (100 + 50) / 2

	jan7 := pointAt(t, series, date(7))
	assert.Nil(t, jan7.Actual, "no snapshot from any item on Jan 7")
}

func TestComputeSeries_NegativeWeightAccepted(t *testing.T) {
	// A negative weight is a data defect but not an error; the item is
	// carried and the curves still come out while the total stays positive.
	series := progress.ComputeSeries([]progress.WorkItem{
		item("a", 1, 10, decPtr(-1)),
		item("b", 1, 12, decPtr(3)),
	}, nil, false)
	assert.NotEmpty(t, series)
}

func TestComputeSeries_ReversedSpanOutsideWindow(t *testing.T) {
	// A reversed span must not stretch the series window either.
	reversed := item("backwards", 31, 25, decPtr(1))
	series := progress.ComputeSeries([]progress.WorkItem{reversed, item("a", 1, 10, decPtr(1))}, nil, false)

	require.Len(t, series, 10)
	assert.True(t, series[0].Date.Equal(date(1)))
	assert.True(t, series[len(series)-1].Date.Equal(date(10)))
}
