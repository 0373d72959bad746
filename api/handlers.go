/*
handlers.go - HTTP handlers for the analytics API

PURPOSE:
  Bridges HTTP to the pure engines: each handler fetches the inputs from
  the store, invokes the engine, and serializes the output. The handlers
  own date parsing and window selection ("this week", "this month");
  the engines only ever see materialized collections.

ERROR MAPPING:
  generic.IsClientError -> 400 (caller-contract violations)
  generic.IsNotFound    -> 404
  anything else         -> 500

VISIBILITY GATING:
  Whether the contractual line appears in the progress series is the
  include_contract query flag, set by whatever the host application
  decided about the current viewer. No identity reaches this layer.

SEE ALSO:
  - server.go: Routing and middleware
  - dto.go: Request/response shapes
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/site-analytics/generic"
	"github.com/warp/site-analytics/progress"
	"github.com/warp/site-analytics/store"
	"github.com/warp/site-analytics/workforce"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     store.SiteStore
	WeekStart time.Weekday
}

// NewHandler creates a new handler with the given store. weekStart is the
// locale's first day of the week, used by the rollup endpoints.
func NewHandler(st store.SiteStore, weekStart time.Weekday) *Handler {
	return &Handler{Store: st, WeekStart: weekStart}
}

// =============================================================================
// WORK ITEM HANDLERS
// =============================================================================

// ListWorkItems returns all work items with their snapshot histories.
func (h *Handler) ListWorkItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListWorkItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]WorkItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toWorkItemDTO(item)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveWorkItem creates or replaces a work item's schedule fields.
func (h *Handler) SaveWorkItem(w http.ResponseWriter, r *http.Request) {
	var req SaveWorkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.ID == "" {
		writeBadRequest(w, "id is required")
		return
	}

	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	item := progress.WorkItem{
		ID:              req.ID,
		Name:            req.Name,
		Start:           start,
		End:             end,
		Weight:          floatToDecimalPtr(req.Weight),
		CurrentProgress: floatToDecimalPtr(req.CurrentProgress),
	}
	if err := h.Store.SaveWorkItem(r.Context(), item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkItemDTO(item))
}

// AddSnapshot appends a progress observation to a work item.
func (h *Handler) AddSnapshot(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	var req AddSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	day, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Progress < 0 || req.Progress > 100 {
		writeBadRequest(w, "progress must be between 0 and 100")
		return
	}

	snap := progress.Snapshot{Date: day}
	if p := floatToDecimalPtr(&req.Progress); p != nil {
		snap.Progress = *p
	}
	if err := h.Store.AppendSnapshot(r.Context(), itemID, snap); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SnapshotDTO{Date: day.String(), Progress: req.Progress})
}

// =============================================================================
// CONTRACT PERIOD HANDLERS
// =============================================================================

// GetContractPeriod returns the configured contract period, 404 if none.
func (h *Handler) GetContractPeriod(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Store.ContractPeriod(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if contract == nil {
		writeError(w, &generic.NotFoundError{Kind: "contract period", ID: "site"})
		return
	}
	writeJSON(w, http.StatusOK, ContractPeriodDTO{
		StartDate: contract.Start.String(),
		EndDate:   contract.End.String(),
	})
}

// SetContractPeriod configures the contract period.
func (h *Handler) SetContractPeriod(w http.ResponseWriter, r *http.Request) {
	var req ContractPeriodDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	start, err := generic.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := generic.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Store.SetContractPeriod(r.Context(), generic.NewPeriod(start, end)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// PROGRESS SERIES HANDLER
// =============================================================================

// GetProgressSeries computes the three-curve daily series from the stored
// work items. Query params:
//
//	include_contract=true  include the contractual linear curve
func (h *Handler) GetProgressSeries(w http.ResponseWriter, r *http.Request) {
	includeContract := false
	if v := r.URL.Query().Get("include_contract"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "include_contract must be a boolean")
			return
		}
		includeContract = parsed
	}

	items, err := h.Store.ListWorkItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	contract, err := h.Store.ContractPeriod(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	series := progress.ComputeSeries(items, contract, includeContract)
	writeJSON(w, http.StatusOK, toProgressPointDTOs(series))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// AppendSignatures records sign-ins for one day and channel.
func (h *Handler) AppendSignatures(w http.ResponseWriter, r *http.Request) {
	var req AppendSignaturesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	day, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	channel := workforce.Channel(req.Channel)
	if !channel.Valid() {
		writeBadRequest(w, fmt.Sprintf("unknown channel %q", req.Channel))
		return
	}

	sigs := make([]workforce.Signature, len(req.Signatures))
	for i, sig := range req.Signatures {
		sigs[i] = workforce.Signature{
			PersonName:  sig.PersonName,
			CompanyName: sig.CompanyName,
			HasMark:     sig.HasMark,
		}
	}
	if err := h.Store.AppendSignatures(r.Context(), day, channel, sigs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// GetDailyAttendance returns one day's separated, deduplicated headcount.
// Query params: date=YYYY-MM-DD (required).
func (h *Handler) GetDailyAttendance(w http.ResponseWriter, r *http.Request) {
	day, err := generic.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}

	sheets, err := h.Store.LoadSignSheets(r.Context(), generic.NewPeriod(day, day))
	if err != nil {
		writeError(w, err)
		return
	}

	sheet := workforce.SignSheet{Date: day, Entries: map[workforce.Channel][]workforce.Signature{}}
	if len(sheets) > 0 {
		sheet = sheets[0]
	}
	writeJSON(w, http.StatusOK, toDailyAttendanceDTO(workforce.DailySeparatedCount(sheet)))
}

// GetRawCounts returns the dense per-day, per-company counts for an
// inclusive window. Query params: from, to (YYYY-MM-DD, required).
func (h *Handler) GetRawCounts(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, err)
		return
	}

	counts, err := h.loadRawCounts(r, window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRawDayDTOs(counts))
}

// GetWeeklyAttendance returns per-contractor summaries for the 7 days
// starting at week_start (YYYY-MM-DD, required).
func (h *Handler) GetWeeklyAttendance(w http.ResponseWriter, r *http.Request) {
	weekStart, err := generic.ParseDate(r.URL.Query().Get("week_start"))
	if err != nil {
		writeError(w, err)
		return
	}

	window := generic.NewPeriod(weekStart, weekStart.AddDays(6))
	counts, err := h.loadRawCounts(r, window)
	if err != nil {
		writeError(w, err)
		return
	}

	summaries, err := workforce.WeeklyContractorCounts(counts, weekStart)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeeklyAttendanceDTOs(summaries))
}

// GetMonthlyAttendance returns per-contractor monthly statistics.
// Query params: month=YYYY-MM (required).
func (h *Handler) GetMonthlyAttendance(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, err)
		return
	}

	window := generic.MonthPeriod(year, month)
	counts, err := h.loadRawCounts(r, window)
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := workforce.MonthlyContractorStats(counts, year, month, h.WeekStart)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthlyStatsDTOs(stats))
}

func (h *Handler) loadRawCounts(r *http.Request, window generic.Period) ([]workforce.DayCompanyCounts, error) {
	sheets, err := h.Store.LoadSignSheets(r.Context(), window)
	if err != nil {
		return nil, err
	}
	return workforce.RawCountsOverRange(sheets, window)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseWindow(r *http.Request) (generic.Period, error) {
	from, err := generic.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return generic.Period{}, err
	}
	to, err := generic.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return generic.Period{}, err
	}
	window := generic.NewPeriod(from, to)
	return window, window.Validate()
}

func parseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, &generic.InvalidDateError{Input: s, Cause: err}
	}
	return t.Year(), t.Month(), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case generic.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "bad_request"})
	case generic.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "internal"})
	}
}
