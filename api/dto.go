/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  engine types from the external contract. Dates cross the boundary as
  ISO strings, decimals as float64, and undefined curve values as
  null - the chart on the other side must be able to tell "no data"
  from "zero".

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
	"github.com/warp/site-analytics/progress"
	"github.com/warp/site-analytics/workforce"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// WorkItemDTO represents a work item in API responses.
type WorkItemDTO struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	StartDate       *string       `json:"start_date,omitempty"`
	EndDate         *string       `json:"end_date,omitempty"`
	Weight          *float64      `json:"weight,omitempty"`
	CurrentProgress *float64      `json:"current_progress,omitempty"`
	History         []SnapshotDTO `json:"history"`
}

// SnapshotDTO represents one progress observation.
type SnapshotDTO struct {
	Date     string  `json:"date"`
	Progress float64 `json:"progress"`
}

// SaveWorkItemRequest creates or replaces a work item's schedule fields.
type SaveWorkItemRequest struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	StartDate       *string  `json:"start_date,omitempty"`
	EndDate         *string  `json:"end_date,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	CurrentProgress *float64 `json:"current_progress,omitempty"`
}

// AddSnapshotRequest appends a progress observation to a work item.
type AddSnapshotRequest struct {
	Date     string  `json:"date"`
	Progress float64 `json:"progress"`
}

// ContractPeriodDTO is the site's contract period.
type ContractPeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ProgressPointDTO is one day of the merged three-series output.
// Null fields mean the series has no value that day.
type ProgressPointDTO struct {
	Date        string   `json:"date"`
	Contractual *float64 `json:"contractual,omitempty"`
	Scheduled   *float64 `json:"scheduled,omitempty"`
	Actual      *float64 `json:"actual,omitempty"`
}

// AppendSignaturesRequest records sign-ins for one day and channel.
type AppendSignaturesRequest struct {
	Date       string         `json:"date"`
	Channel    string         `json:"channel"`
	Signatures []SignatureDTO `json:"signatures"`
}

// SignatureDTO is one sign-in row as captured on the sheet.
type SignatureDTO struct {
	PersonName  string `json:"person_name"`
	CompanyName string `json:"company_name"`
	HasMark     bool   `json:"has_mark"`
}

// DailyAttendanceDTO is one day's separated, deduplicated headcount.
type DailyAttendanceDTO struct {
	Date           string             `json:"date"`
	PrimaryCount   int                `json:"primary_count"`
	PrimaryWorkers []string           `json:"primary_workers"`
	Suppliers      []SupplierCountDTO `json:"suppliers"`
	SupplierTotal  int                `json:"supplier_total"`
}

// SupplierCountDTO is one company's deduplicated daily headcount.
type SupplierCountDTO struct {
	Company string   `json:"company"`
	Count   int      `json:"count"`
	Workers []string `json:"workers"`
}

// RawDayDTO is one day of the dense raw range output.
type RawDayDTO struct {
	Date        string             `json:"date"`
	Contractors []SupplierCountDTO `json:"contractors"`
}

// WeeklyAttendanceDTO summarizes one contractor over a 7-day window.
type WeeklyAttendanceDTO struct {
	ContractorName     string          `json:"contractor_name"`
	TotalWorkerCount   int             `json:"total_worker_count"`
	DailyBreakdown     []DailyCountDTO `json:"daily_breakdown"`
	AverageWorkerCount float64         `json:"average_worker_count"`
}

// DailyCountDTO pairs a date with a headcount.
type DailyCountDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MonthlyStatsDTO summarizes one contractor over a calendar month.
type MonthlyStatsDTO struct {
	ContractorName string         `json:"contractor_name"`
	TotalWorkers   int            `json:"total_workers"`
	WeeklyStats    []WeeklyStatDTO `json:"weekly_stats"`
	AverageWorkers float64        `json:"average_workers"`
	PeakWeek       int            `json:"peak_week"`
	Trend          []float64      `json:"trend"`
}

// WeeklyStatDTO is one calendar week's slice of a monthly summary.
type WeeklyStatDTO struct {
	WeekIndex    int     `json:"week_index"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TotalWorkers int     `json:"total_workers"`
	PeakWorkers  int     `json:"peak_workers"`
	WorkDays     int     `json:"work_days"`
	WeekAverage  float64 `json:"week_average"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toWorkItemDTO(item progress.WorkItem) WorkItemDTO {
	dto := WorkItemDTO{
		ID:      item.ID,
		Name:    item.Name,
		History: make([]SnapshotDTO, 0, len(item.History)),
	}
	if item.Start != nil {
		s := item.Start.String()
		dto.StartDate = &s
	}
	if item.End != nil {
		s := item.End.String()
		dto.EndDate = &s
	}
	dto.Weight = decimalToFloatPtr(item.Weight)
	dto.CurrentProgress = decimalToFloatPtr(item.CurrentProgress)
	for _, snap := range item.History {
		pct, _ := snap.Progress.Float64()
		dto.History = append(dto.History, SnapshotDTO{Date: snap.Date.String(), Progress: pct})
	}
	return dto
}

func toProgressPointDTOs(points []progress.DailyProgressPoint) []ProgressPointDTO {
	dtos := make([]ProgressPointDTO, len(points))
	for i, p := range points {
		dtos[i] = ProgressPointDTO{
			Date:        p.Date.String(),
			Contractual: decimalToFloatPtr(p.Contractual),
			Scheduled:   decimalToFloatPtr(p.Scheduled),
			Actual:      decimalToFloatPtr(p.Actual),
		}
	}
	return dtos
}

func toDailyAttendanceDTO(att workforce.DailyAttendance) DailyAttendanceDTO {
	dto := DailyAttendanceDTO{
		Date:           att.Date.String(),
		PrimaryCount:   att.PrimaryCount,
		PrimaryWorkers: att.PrimaryWorkers.Names(),
		Suppliers:      supplierCountDTOs(att.SupplierCounts),
		SupplierTotal:  att.SupplierTotal(),
	}
	return dto
}

func toRawDayDTOs(counts []workforce.DayCompanyCounts) []RawDayDTO {
	dtos := make([]RawDayDTO, len(counts))
	for i, day := range counts {
		dtos[i] = RawDayDTO{
			Date:        day.Date.String(),
			Contractors: supplierCountDTOs(day.Companies),
		}
	}
	return dtos
}

func supplierCountDTOs(companies map[string]workforce.NameSet) []SupplierCountDTO {
	dtos := make([]SupplierCountDTO, 0, len(companies))
	for _, company := range sortedCompanies(companies) {
		dtos = append(dtos, SupplierCountDTO{
			Company: company,
			Count:   companies[company].Count(),
			Workers: companies[company].Names(),
		})
	}
	return dtos
}

func toWeeklyAttendanceDTOs(summaries []workforce.WeeklyContractorAttendance) []WeeklyAttendanceDTO {
	dtos := make([]WeeklyAttendanceDTO, len(summaries))
	for i, summary := range summaries {
		avg, _ := summary.AverageWorkerCount.Float64()
		dto := WeeklyAttendanceDTO{
			ContractorName:     summary.ContractorName,
			TotalWorkerCount:   summary.TotalWorkerCount,
			AverageWorkerCount: avg,
			DailyBreakdown:     make([]DailyCountDTO, 0, len(summary.DailyBreakdown)),
		}
		for _, day := range summary.DailyBreakdown {
			dto.DailyBreakdown = append(dto.DailyBreakdown, DailyCountDTO{
				Date:  day.Date.String(),
				Count: day.Count,
			})
		}
		dtos[i] = dto
	}
	return dtos
}

func toMonthlyStatsDTOs(stats []workforce.ContractorMonthlyStats) []MonthlyStatsDTO {
	dtos := make([]MonthlyStatsDTO, len(stats))
	for i, contractor := range stats {
		avg, _ := contractor.AverageWorkers.Float64()
		dto := MonthlyStatsDTO{
			ContractorName: contractor.ContractorName,
			TotalWorkers:   contractor.TotalWorkers,
			AverageWorkers: avg,
			PeakWeek:       contractor.PeakWeek,
			WeeklyStats:    make([]WeeklyStatDTO, 0, len(contractor.WeeklyStats)),
			Trend:          make([]float64, 0, len(contractor.Trend)),
		}
		for _, week := range contractor.WeeklyStats {
			weekAvg, _ := week.WeekAverage.Float64()
			dto.WeeklyStats = append(dto.WeeklyStats, WeeklyStatDTO{
				WeekIndex:    week.WeekIndex,
				StartDate:    week.Span.Start.String(),
				EndDate:      week.Span.End.String(),
				TotalWorkers: week.TotalWorkers,
				PeakWorkers:  week.PeakWorkers,
				WorkDays:     week.WorkDays,
				WeekAverage:  weekAvg,
			})
		}
		for _, point := range contractor.Trend {
			v, _ := point.Float64()
			dto.Trend = append(dto.Trend, v)
		}
		dtos[i] = dto
	}
	return dtos
}

func sortedCompanies(companies map[string]workforce.NameSet) []string {
	names := make([]string, 0, len(companies))
	for company := range companies {
		names = append(names, company)
	}
	sort.Strings(names)
	return names
}

func decimalToFloatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

func floatToDecimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func parseDatePtr(s *string) (*generic.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := generic.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
