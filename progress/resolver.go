package progress

import (
	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
)

// =============================================================================
// ACTUAL PROGRESS RESOLVER - Last observation carried forward
// =============================================================================

// ResolveProgressAt returns the item's progress as of the given day: the
// latest snapshot dated on or before it. When several snapshots share that
// date, the last inserted wins (a later correction overrides an earlier
// entry for the same day).
//
// When no snapshot precedes the day - including the case of an item with
// no history at all - the item's CurrentProgress is used if set, else 0.
func ResolveProgressAt(item WorkItem, day generic.Date) decimal.Decimal {
	found := false
	var best Snapshot
	for _, snap := range item.History {
		if snap.Date.After(day) {
			continue
		}
		if !found || snap.Date.AfterOrEqual(best.Date) {
			best = snap
			found = true
		}
	}
	if found {
		return best.Progress
	}
	if item.CurrentProgress != nil {
		return *item.CurrentProgress
	}
	return decimal.Zero
}
