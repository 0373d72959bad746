package workforce

import (
	"strings"

	"github.com/warp/site-analytics/generic"
)

// =============================================================================
// DAILY SEPARATED COUNT - Primary vs. supplier channels, deduped
// =============================================================================

// DailySeparatedCount collapses one day's sign-sheet into deduplicated
// headcounts, keeping the primary channel separate from the supplier
// channels.
//
// The primary channel is the site's own contractor: every signature with
// a non-empty name counts, no company grouping needed. The supplier
// channels require a name, a company, and an actual mark, and are grouped
// into per-company name sets. Signing twice changes nothing.
func DailySeparatedCount(sheet SignSheet) DailyAttendance {
	attendance := DailyAttendance{
		Date:           sheet.Date,
		PrimaryWorkers: make(NameSet),
		SupplierCounts: make(map[string]NameSet),
	}

	for _, sig := range sheet.Entries[ChannelPrimary] {
		name := strings.TrimSpace(sig.PersonName)
		if name == "" {
			continue
		}
		attendance.PrimaryWorkers.Add(name)
	}

	for _, channel := range SupplierChannels {
		for _, sig := range sheet.Entries[channel] {
			name := strings.TrimSpace(sig.PersonName)
			company := strings.TrimSpace(sig.CompanyName)
			if name == "" || company == "" || !sig.HasMark {
				continue
			}
			workers, ok := attendance.SupplierCounts[company]
			if !ok {
				workers = make(NameSet)
				attendance.SupplierCounts[company] = workers
			}
			workers.Add(name)
		}
	}

	attendance.PrimaryCount = attendance.PrimaryWorkers.Count()
	return attendance
}

// =============================================================================
// RAW COUNTS OVER RANGE - Dense per-day, per-company worker sets
// =============================================================================

// RawCountsOverRange folds sign-sheets into one entry per calendar day of
// the inclusive window, deduplicated per company. Days without any
// matching records still get an entry (with an empty company map):
// downstream rollups and charts depend on the series being dense.
//
// All four channels participate here, since the weekly and monthly
// rollups are per-contractor: a signature needs a name, a company, and a
// mark to be attributable. Multiple sheets for the same day merge.
//
// An invalid window is a caller bug and fails fast with ErrInvalidPeriod.
func RawCountsOverRange(sheets []SignSheet, window generic.Period) ([]DayCompanyCounts, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	byDay := make(map[generic.Date][]SignSheet, len(sheets))
	for _, sheet := range sheets {
		day := sheet.Date.Normalize()
		byDay[day] = append(byDay[day], sheet)
	}

	days := window.Days()
	counts := make([]DayCompanyCounts, 0, len(days))
	for _, day := range days {
		entry := DayCompanyCounts{Date: day, Companies: make(map[string]NameSet)}
		for _, sheet := range byDay[day] {
			for _, channel := range AllChannels {
				for _, sig := range sheet.Entries[channel] {
					name := strings.TrimSpace(sig.PersonName)
					company := strings.TrimSpace(sig.CompanyName)
					if name == "" || company == "" || !sig.HasMark {
						continue
					}
					workers, ok := entry.Companies[company]
					if !ok {
						workers = make(NameSet)
						entry.Companies[company] = workers
					}
					workers.Add(name)
				}
			}
		}
		counts = append(counts, entry)
	}
	return counts, nil
}
