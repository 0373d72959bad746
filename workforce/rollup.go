package workforce

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
)

// =============================================================================
// WEEKLY ROLLUP - Fixed 7-slot breakdown per contractor
// =============================================================================

var seven = decimal.NewFromInt(7)

// WeeklyContractorCounts aggregates dense per-day counts into one summary
// per contractor for the 7 days starting at weekStart. Every contractor
// gets a full 7-slot breakdown indexed by day offset; days without data
// hold zero.
//
// The average divides by the full 7-day window, not by days with data.
// That is how the site's paper reports have always computed it, so it is
// preserved even though the monthly rollup divides differently.
//
// Results are sorted by total headcount descending (name ascending on
// ties, for stable output). A zero weekStart fails fast.
func WeeklyContractorCounts(counts []DayCompanyCounts, weekStart generic.Date) ([]WeeklyContractorAttendance, error) {
	if weekStart.IsZero() {
		return nil, fmt.Errorf("week start: %w", generic.ErrInvalidDate)
	}

	byDay := indexByDay(counts)

	perContractor := make(map[string]*WeeklyContractorAttendance)
	for offset := 0; offset < 7; offset++ {
		day := weekStart.AddDays(offset)
		for company, workers := range byDay[day] {
			summary, ok := perContractor[company]
			if !ok {
				summary = &WeeklyContractorAttendance{ContractorName: company}
				for i := 0; i < 7; i++ {
					summary.DailyBreakdown[i] = DailyCount{Date: weekStart.AddDays(i)}
				}
				perContractor[company] = summary
			}
			summary.DailyBreakdown[offset].Count += workers.Count()
			summary.TotalWorkerCount += workers.Count()
		}
	}

	results := make([]WeeklyContractorAttendance, 0, len(perContractor))
	for _, summary := range perContractor {
		summary.AverageWorkerCount = generic.Round1(
			decimal.NewFromInt(int64(summary.TotalWorkerCount)).Div(seven))
		results = append(results, *summary)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalWorkerCount != results[j].TotalWorkerCount {
			return results[i].TotalWorkerCount > results[j].TotalWorkerCount
		}
		return results[i].ContractorName < results[j].ContractorName
	})
	return results, nil
}

// =============================================================================
// MONTHLY ROLLUP - Calendar weeks, peaks, trend
// =============================================================================

// MonthlyContractorStats aggregates dense per-day counts into one summary
// per contractor for a calendar month. The month is partitioned into
// calendar weeks following the supplied week-start convention; the first
// and last weeks may be clipped at the month boundary.
//
// Per week: total headcount, peak single-day headcount, and work days
// (days with a non-zero contribution). The week average divides by work
// days, zero when none. The contractor-level average likewise divides by
// total days worked - note this differs from the weekly rollup's
// divide-by-seven. PeakWeek is the index of the week with the highest
// single-day peak; Trend carries one point per week, that week's average.
//
// Results are sorted by monthly total descending. An out-of-range month
// fails fast.
func MonthlyContractorStats(counts []DayCompanyCounts, year int, month time.Month, weekStart time.Weekday) ([]ContractorMonthlyStats, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d: %w", month, generic.ErrInvalidMonth)
	}

	byDay := indexByDay(counts)
	weeks := generic.WeeksOfMonth(year, month, weekStart)

	contractors := make(map[string]struct{})
	for _, entry := range counts {
		for company := range entry.Companies {
			contractors[company] = struct{}{}
		}
	}

	results := make([]ContractorMonthlyStats, 0, len(contractors))
	for company := range contractors {
		stats := ContractorMonthlyStats{ContractorName: company}
		totalWorkDays := 0

		for weekIndex, week := range weeks {
			weekly := WeeklyWorkerCount{WeekIndex: weekIndex, Span: week}
			for _, day := range week.Days() {
				dayCount := byDay[day][company].Count()
				if dayCount == 0 {
					continue
				}
				weekly.TotalWorkers += dayCount
				weekly.WorkDays++
				if dayCount > weekly.PeakWorkers {
					weekly.PeakWorkers = dayCount
				}
			}
			if weekly.WorkDays > 0 {
				weekly.WeekAverage = generic.Round1(
					decimal.NewFromInt(int64(weekly.TotalWorkers)).
						Div(decimal.NewFromInt(int64(weekly.WorkDays))))
			}

			stats.WeeklyStats = append(stats.WeeklyStats, weekly)
			stats.Trend = append(stats.Trend, weekly.WeekAverage)
			stats.TotalWorkers += weekly.TotalWorkers
			totalWorkDays += weekly.WorkDays

			if weekly.PeakWorkers > stats.WeeklyStats[stats.PeakWeek].PeakWorkers {
				stats.PeakWeek = weekIndex
			}
		}

		if totalWorkDays > 0 {
			stats.AverageWorkers = generic.Round1(
				decimal.NewFromInt(int64(stats.TotalWorkers)).
					Div(decimal.NewFromInt(int64(totalWorkDays))))
		}
		results = append(results, stats)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalWorkers != results[j].TotalWorkers {
			return results[i].TotalWorkers > results[j].TotalWorkers
		}
		return results[i].ContractorName < results[j].ContractorName
	})
	return results, nil
}

// indexByDay merges per-day entries into fresh maps. The input's maps are
// never stored or written to: the rollups are side-effect-free over their
// inputs.
func indexByDay(counts []DayCompanyCounts) map[generic.Date]map[string]NameSet {
	byDay := make(map[generic.Date]map[string]NameSet, len(counts))
	for _, entry := range counts {
		day := entry.Date.Normalize()
		existing, ok := byDay[day]
		if !ok {
			existing = make(map[string]NameSet, len(entry.Companies))
			byDay[day] = existing
		}
		for company, workers := range entry.Companies {
			merged, ok := existing[company]
			if !ok {
				merged = make(NameSet, len(workers))
				existing[company] = merged
			}
			for name := range workers {
				merged.Add(name)
			}
		}
	}
	return byDay
}
