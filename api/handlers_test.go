package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/site-analytics/api"
	"github.com/warp/site-analytics/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	handler := api.NewHandler(store.NewMemory(), time.Monday)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: []string{"http://localhost"},
		LogLevel:       slog.LevelError,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func seedWorkItem(t *testing.T, server *httptest.Server, id string, start, end string, weight float64) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, server.URL+"/api/workitems", api.SaveWorkItemRequest{
		ID:        id,
		Name:      id,
		StartDate: &start,
		EndDate:   &end,
		Weight:    &weight,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func seedSnapshot(t *testing.T, server *httptest.Server, itemID, date string, pct float64) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, server.URL+"/api/workitems/"+itemID+"/snapshots",
		api.AddSnapshotRequest{Date: date, Progress: pct})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// PROGRESS ENDPOINTS
// =============================================================================

func TestAPI_ProgressSeries_EndToEnd(t *testing.T) {
	// GIVEN: One item Jan 1 - Jan 10 with three snapshots
	// WHEN: The series is requested without the contract curve
	// THEN: Ten days come back; snapshot days carry actual values,
	//       other days carry null
	server := newTestServer(t)

	seedWorkItem(t, server, "foundation", "2024-01-01", "2024-01-10", 1)
	seedSnapshot(t, server, "foundation", "2024-01-01", 0)
	seedSnapshot(t, server, "foundation", "2024-01-05", 50)
	seedSnapshot(t, server, "foundation", "2024-01-10", 100)

	resp, err := http.Get(server.URL + "/api/progress/series")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var series []api.ProgressPointDTO
	decode(t, resp, &series)
	require.Len(t, series, 10)

	byDate := make(map[string]api.ProgressPointDTO)
	for _, p := range series {
		byDate[p.Date] = p
	}

	require.NotNil(t, byDate["2024-01-05"].Actual)
	assert.InDelta(t, 50, *byDate["2024-01-05"].Actual, 1e-9)
	assert.Nil(t, byDate["2024-01-03"].Actual)
	assert.Nil(t, byDate["2024-01-05"].Contractual, "contract curve not requested")

	require.NotNil(t, byDate["2024-01-10"].Scheduled)
	assert.InDelta(t, 100, *byDate["2024-01-10"].Scheduled, 1e-9)
}

func TestAPI_ProgressSeries_ContractGating(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodPut, server.URL+"/api/site/contract", api.ContractPeriodDTO{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-11",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Flag off: the contract period still anchors the window, but no
	// curve values are emitted.
	resp, err := http.Get(server.URL + "/api/progress/series?include_contract=false")
	require.NoError(t, err)
	var series []api.ProgressPointDTO
	decode(t, resp, &series)
	require.Len(t, series, 11)
	for _, p := range series {
		assert.Nil(t, p.Contractual)
	}

	// Flag on: dense contractual line.
	resp, err = http.Get(server.URL + "/api/progress/series?include_contract=true")
	require.NoError(t, err)
	decode(t, resp, &series)
	require.Len(t, series, 11)
	require.NotNil(t, series[5].Contractual)
	assert.InDelta(t, 50, *series[5].Contractual, 1e-9)
}

func TestAPI_Snapshot_UnknownItem404(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/workitems/ghost/snapshots",
		api.AddSnapshotRequest{Date: "2024-01-05", Progress: 10})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Snapshot_ProgressOutOfRange(t *testing.T) {
	server := newTestServer(t)
	seedWorkItem(t, server, "a", "2024-01-01", "2024-01-10", 1)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/workitems/a/snapshots",
		api.AddSnapshotRequest{Date: "2024-01-05", Progress: 150})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// ATTENDANCE ENDPOINTS
// =============================================================================

func seedSignatures(t *testing.T, server *httptest.Server, date, channel string, sigs ...api.SignatureDTO) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, server.URL+"/api/attendance/signatures", api.AppendSignaturesRequest{
		Date:       date,
		Channel:    channel,
		Signatures: sigs,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_DailyAttendance_Dedup(t *testing.T) {
	server := newTestServer(t)

	seedSignatures(t, server, "2024-07-01", "subcontractor1",
		api.SignatureDTO{PersonName: "Alice", CompanyName: "CompanyX", HasMark: true},
		api.SignatureDTO{PersonName: "Alice", CompanyName: "CompanyX", HasMark: true},
		api.SignatureDTO{PersonName: "Bob", CompanyName: "CompanyX", HasMark: true},
	)
	seedSignatures(t, server, "2024-07-01", "primary",
		api.SignatureDTO{PersonName: "Carol", HasMark: true},
	)

	resp, err := http.Get(server.URL + "/api/attendance/daily?date=2024-07-01")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var daily api.DailyAttendanceDTO
	decode(t, resp, &daily)
	assert.Equal(t, 1, daily.PrimaryCount)
	require.Len(t, daily.Suppliers, 1)
	assert.Equal(t, "CompanyX", daily.Suppliers[0].Company)
	assert.Equal(t, 2, daily.Suppliers[0].Count)
	assert.Equal(t, 2, daily.SupplierTotal)
}

func TestAPI_RawCounts_DenseRange(t *testing.T) {
	server := newTestServer(t)
	seedSignatures(t, server, "2024-07-02", "subcontractor2",
		api.SignatureDTO{PersonName: "Alice", CompanyName: "X", HasMark: true})

	resp, err := http.Get(server.URL + "/api/attendance/raw?from=2024-07-01&to=2024-07-05")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var days []api.RawDayDTO
	decode(t, resp, &days)
	require.Len(t, days, 5, "one entry per calendar day, zero days included")
	assert.Empty(t, days[0].Contractors)
	require.Len(t, days[1].Contractors, 1)
	assert.Equal(t, 1, days[1].Contractors[0].Count)
}

func TestAPI_RawCounts_InvalidWindow400(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/attendance/raw?from=2024-07-05&to=2024-07-01")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_WeeklyAttendance(t *testing.T) {
	server := newTestServer(t)
	for d := 1; d <= 3; d++ {
		seedSignatures(t, server, fmt.Sprintf("2024-07-0%d", d), "subcontractor1",
			api.SignatureDTO{PersonName: "Alice", CompanyName: "X", HasMark: true})
	}

	resp, err := http.Get(server.URL + "/api/attendance/weekly?week_start=2024-07-01")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var weekly []api.WeeklyAttendanceDTO
	decode(t, resp, &weekly)
	require.Len(t, weekly, 1)
	assert.Equal(t, 3, weekly[0].TotalWorkerCount)
	require.Len(t, weekly[0].DailyBreakdown, 7)
	assert.InDelta(t, 0.4, weekly[0].AverageWorkerCount, 1e-9) // round1(3/7)
}

func TestAPI_MonthlyAttendance(t *testing.T) {
	server := newTestServer(t)
	seedSignatures(t, server, "2024-07-02", "subcontractor1",
		api.SignatureDTO{PersonName: "Alice", CompanyName: "X", HasMark: true},
		api.SignatureDTO{PersonName: "Bob", CompanyName: "X", HasMark: true})

	resp, err := http.Get(server.URL + "/api/attendance/monthly?month=2024-07")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var monthly []api.MonthlyStatsDTO
	decode(t, resp, &monthly)
	require.Len(t, monthly, 1)
	assert.Equal(t, 2, monthly[0].TotalWorkers)
	assert.InDelta(t, 2, monthly[0].AverageWorkers, 1e-9)
	assert.Len(t, monthly[0].WeeklyStats, 5)
}

func TestAPI_MonthlyAttendance_BadMonth400(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/attendance/monthly?month=July")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_UnknownChannel400(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/attendance/signatures", api.AppendSignaturesRequest{
		Date:    "2024-07-01",
		Channel: "subcontractor9",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ContractNotConfigured404(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/site/contract")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
