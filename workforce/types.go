/*
Package workforce implements the attendance aggregation engine.

PURPOSE:
  Converts daily sign-in sheets (signatures grouped under four fixed
  channels) into deduplicated headcounts, rolled up by day, week, and
  month. The primary contractor's channel is kept separate from the three
  subcontractor/supplier channels throughout.

KEY CONCEPTS:
  - Channels: every sign-sheet has exactly four signature groupings. One
    belongs to the site's main contractor; the other three hold
    subcontractors and suppliers.
  - Deduplication: a worker counts once per company per day no matter how
    many times they signed. The key is the worker's NAME - the sheets
    carry no worker IDs. Two different people sharing a name within one
    company on one day therefore collapse to one. This is a known
    limitation of the source data, preserved rather than guessed around.
  - Dense ranges: range queries emit one entry per calendar day, zero
    days included, so downstream charts never have to infer gaps.

DESIGN PRINCIPLES:
  1. Pure functions over already-fetched sheets; no I/O, no state.
  2. Record defects (blank names, missing company, unmarked signatures)
     exclude the record, never abort the computation.
  3. Caller-contract violations (invalid windows, zero week starts) fail
     fast - those are bugs, not data quality.

SEE ALSO:
  - daily.go: per-day separated counts and dense range counts
  - rollup.go: weekly and monthly contractor rollups
*/
package workforce

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
)

// =============================================================================
// CHANNELS - The four fixed signature groupings on a sign-sheet
// =============================================================================

type Channel string

const (
	ChannelPrimary        Channel = "primary"
	ChannelSubcontractor1 Channel = "subcontractor1"
	ChannelSubcontractor2 Channel = "subcontractor2"
	ChannelSubcontractor3 Channel = "subcontractor3"
)

// AllChannels lists every channel in sheet order.
var AllChannels = []Channel{
	ChannelPrimary,
	ChannelSubcontractor1,
	ChannelSubcontractor2,
	ChannelSubcontractor3,
}

// SupplierChannels lists the non-primary channels.
var SupplierChannels = []Channel{
	ChannelSubcontractor1,
	ChannelSubcontractor2,
	ChannelSubcontractor3,
}

// Valid reports whether c is one of the four fixed channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelPrimary, ChannelSubcontractor1, ChannelSubcontractor2, ChannelSubcontractor3:
		return true
	}
	return false
}

// =============================================================================
// INPUT - Signatures as recorded on the sheet
// =============================================================================

// Signature is one sign-in as captured on the sheet. HasMark reports
// whether the signature pad actually recorded a mark; an unmarked row is
// an empty line on the sheet, not a present worker.
type Signature struct {
	PersonName  string
	CompanyName string
	HasMark     bool
}

// SignSheet is one day's sign-in records, grouped by channel.
type SignSheet struct {
	Date    generic.Date
	Entries map[Channel][]Signature
}

// =============================================================================
// NAME SET - Dedup container
// =============================================================================

// NameSet deduplicates workers by name.
type NameSet map[string]struct{}

func (s NameSet) Add(name string)      { s[name] = struct{}{} }
func (s NameSet) Has(name string) bool { _, ok := s[name]; return ok }
func (s NameSet) Count() int           { return len(s) }

// Names returns the members in sorted order, for stable output.
func (s NameSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// DERIVED OUTPUT
// =============================================================================

// DailyAttendance is one day's deduplicated, channel-separated headcount.
type DailyAttendance struct {
	Date           generic.Date
	PrimaryCount   int
	PrimaryWorkers NameSet
	SupplierCounts map[string]NameSet // company -> deduped workers
}

// SupplierTotal sums the deduplicated supplier headcounts across all
// companies.
func (d DailyAttendance) SupplierTotal() int {
	total := 0
	for _, workers := range d.SupplierCounts {
		total += workers.Count()
	}
	return total
}

// DayCompanyCounts is one day of the raw range output: deduplicated
// worker sets per company. Days with no records carry an empty map.
type DayCompanyCounts struct {
	Date      generic.Date
	Companies map[string]NameSet
}

// DailyCount pairs a date with a headcount, one slot of a week breakdown.
type DailyCount struct {
	Date  generic.Date
	Count int
}

// WeeklyContractorAttendance summarizes one contractor over a fixed
// 7-day window. TotalWorkerCount always equals the sum of the breakdown
// counts, and the average always divides by the full seven days
// regardless of how many had data.
type WeeklyContractorAttendance struct {
	ContractorName     string
	TotalWorkerCount   int
	DailyBreakdown     [7]DailyCount
	AverageWorkerCount decimal.Decimal
}

// WeeklyWorkerCount is one calendar week's slice of a monthly rollup.
// The week may be clipped at the month boundary.
type WeeklyWorkerCount struct {
	WeekIndex    int
	Span         generic.Period
	TotalWorkers int
	PeakWorkers  int
	WorkDays     int // days in the week with a non-zero contribution
	WeekAverage  decimal.Decimal
}

// ContractorMonthlyStats summarizes one contractor over a calendar month.
// Unlike the weekly average, AverageWorkers divides by days actually
// worked - a convention difference inherited from the paper reports and
// preserved as documented.
type ContractorMonthlyStats struct {
	ContractorName string
	TotalWorkers   int
	WeeklyStats    []WeeklyWorkerCount
	AverageWorkers decimal.Decimal
	PeakWeek       int // index into WeeklyStats of the week with the highest peak
	Trend          []decimal.Decimal
}
