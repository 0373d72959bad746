package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/site-analytics/factory"
	"github.com/warp/site-analytics/generic"
)

// =============================================================================
// PLAN PARSING
// =============================================================================

func TestParsePlan_FullDocument(t *testing.T) {
	// GIVEN: A plan with a contract, two items and an embedded snapshot
	// WHEN: It is parsed
	// THEN: Dates, weights and snapshots land on the right fields
	data := []byte(`{
		"contract": {"start_date": "2024-01-01", "end_date": "2024-12-31"},
		"work_items": [
			{
				"id": "foundation",
				"name": "Foundation works",
				"start_date": "2024-01-01",
				"end_date": "2024-02-15",
				"weight": 2.5,
				"snapshots": [{"date": "2024-01-20", "progress": 40}]
			},
			{"id": "fitout"}
		]
	}`)

	plan, err := factory.ParsePlan(data)
	require.NoError(t, err)

	require.NotNil(t, plan.Contract)
	assert.True(t, plan.Contract.Start.Equal(generic.NewDate(2024, time.January, 1)))

	require.Len(t, plan.WorkItems, 2)
	first := plan.WorkItems[0]
	assert.Equal(t, "foundation", first.ID)
	require.NotNil(t, first.Weight)
	assert.Equal(t, "2.5", first.Weight.String())
	require.Len(t, first.History, 1)
	assert.True(t, first.History[0].Date.Equal(generic.NewDate(2024, time.January, 20)))

	// A bare item: name falls back to the id, schedule stays open.
	second := plan.WorkItems[1]
	assert.Equal(t, "fitout", second.Name)
	assert.Nil(t, second.Start)
	assert.Nil(t, second.Weight)
}

func TestParsePlan_RejectsDuplicateIDs(t *testing.T) {
	_, err := factory.ParsePlan([]byte(`{"work_items": [{"id": "a"}, {"id": "a"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestParsePlan_RejectsReversedContract(t *testing.T) {
	_, err := factory.ParsePlan([]byte(`{
		"contract": {"start_date": "2024-12-31", "end_date": "2024-01-01"},
		"work_items": []
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func TestParsePlan_RejectsBadDate(t *testing.T) {
	_, err := factory.ParsePlan([]byte(`{
		"work_items": [{"id": "a", "start_date": "January 5th"}]
	}`))
	require.Error(t, err)
}

func TestPlan_RoundTrip(t *testing.T) {
	data := []byte(`{
		"contract": {"start_date": "2024-01-01", "end_date": "2024-06-30"},
		"work_items": [
			{"id": "walls", "name": "Walls", "start_date": "2024-02-01", "end_date": "2024-03-01", "weight": 3}
		]
	}`)

	plan, err := factory.ParsePlan(data)
	require.NoError(t, err)

	exported := factory.ToJSON(plan.Contract, plan.WorkItems)
	require.NotNil(t, exported.Contract)
	assert.Equal(t, "2024-01-01", exported.Contract.StartDate)
	require.Len(t, exported.WorkItems, 1)
	assert.Equal(t, "2024-03-01", exported.WorkItems[0].EndDate)
	require.NotNil(t, exported.WorkItems[0].Weight)
	assert.InDelta(t, 3, *exported.WorkItems[0].Weight, 1e-9)
}
