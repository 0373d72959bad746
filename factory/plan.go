/*
Package factory provides JSON to Go site-plan conversion.

PURPOSE:
  Converts JSON site-plan definitions into progress.WorkItem values and a
  contract period. This enables schedule configuration without code
  changes - planners export the work breakdown from their scheduling tool
  as JSON, and the factory creates the proper Go structs for seeding.

WHY JSON?
  - Non-developers can author and review the plan
  - Easy integration with external scheduling tools
  - Version control for plan revisions
  - One file seeds a fresh database

JSON SCHEMA:
  {
    "contract": {
      "start_date": "2024-01-01",
      "end_date": "2024-12-31"
    },
    "work_items": [
      {
        "id": "foundation",
        "name": "Foundation works",
        "start_date": "2024-01-01",
        "end_date": "2024-02-15",
        "weight": 2.5,
        "snapshots": [
          {"date": "2024-01-20", "progress": 40}
        ]
      }
    ]
  }

KEY FEATURES:
  - Validates dates and the contract period
  - Missing weight defaults to 1 at computation time (field stays nil)
  - Optional embedded snapshots for replaying recorded observations
  - Round-trips: ToJSON exports a store's contents back to the schema

USAGE:
  plan, err := factory.ParsePlan(jsonBytes)
  ...
  for _, item := range plan.WorkItems {
    store.SaveWorkItem(ctx, item)
  }

SEE ALSO:
  - progress/types.go: WorkItem type definition
  - cmd/server/main.go: -plan flag that seeds the store on startup
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
	"github.com/warp/site-analytics/progress"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a site plan.
type PlanJSON struct {
	Contract  *ContractJSON  `json:"contract,omitempty"`
	WorkItems []WorkItemJSON `json:"work_items"`
}

// ContractJSON represents the contractual execution period.
type ContractJSON struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// WorkItemJSON represents one scheduled work item.
type WorkItemJSON struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	StartDate string         `json:"start_date,omitempty"`
	EndDate   string         `json:"end_date,omitempty"`
	Weight    *float64       `json:"weight,omitempty"`
	Snapshots []SnapshotJSON `json:"snapshots,omitempty"`
}

// SnapshotJSON represents one recorded progress observation.
type SnapshotJSON struct {
	Date     string  `json:"date"`
	Progress float64 `json:"progress"`
}

// =============================================================================
// PARSED PLAN
// =============================================================================

// Plan is the parsed, validated form of a site plan.
type Plan struct {
	Contract  *generic.Period
	WorkItems []progress.WorkItem
}

// ParsePlan parses a JSON document into a Plan.
func ParsePlan(data []byte) (*Plan, error) {
	var pj PlanJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	return FromJSON(pj)
}

// FromJSON converts PlanJSON to a Plan, validating dates as it goes.
func FromJSON(pj PlanJSON) (*Plan, error) {
	plan := &Plan{}

	if pj.Contract != nil {
		start, err := generic.ParseDate(pj.Contract.StartDate)
		if err != nil {
			return nil, fmt.Errorf("contract start: %w", err)
		}
		end, err := generic.ParseDate(pj.Contract.EndDate)
		if err != nil {
			return nil, fmt.Errorf("contract end: %w", err)
		}
		period := generic.NewPeriod(start, end)
		if err := period.Validate(); err != nil {
			return nil, fmt.Errorf("contract period: %w", err)
		}
		plan.Contract = &period
	}

	seen := make(map[string]struct{}, len(pj.WorkItems))
	for _, wj := range pj.WorkItems {
		item, err := parseWorkItem(wj)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate work item id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
		plan.WorkItems = append(plan.WorkItems, item)
	}

	return plan, nil
}

func parseWorkItem(wj WorkItemJSON) (progress.WorkItem, error) {
	id := strings.TrimSpace(wj.ID)
	if id == "" {
		return progress.WorkItem{}, fmt.Errorf("work item with empty id")
	}

	item := progress.WorkItem{ID: id, Name: wj.Name}
	if item.Name == "" {
		item.Name = id
	}

	var err error
	if item.Start, err = parseOptionalDate(wj.StartDate); err != nil {
		return progress.WorkItem{}, fmt.Errorf("work item %q start: %w", id, err)
	}
	if item.End, err = parseOptionalDate(wj.EndDate); err != nil {
		return progress.WorkItem{}, fmt.Errorf("work item %q end: %w", id, err)
	}

	if wj.Weight != nil {
		w := decimal.NewFromFloat(*wj.Weight)
		item.Weight = &w
	}

	for _, sj := range wj.Snapshots {
		day, err := generic.ParseDate(sj.Date)
		if err != nil {
			return progress.WorkItem{}, fmt.Errorf("work item %q snapshot: %w", id, err)
		}
		item.History = append(item.History, progress.Snapshot{
			Date:     day,
			Progress: decimal.NewFromFloat(sj.Progress),
		})
	}

	return item, nil
}

func parseOptionalDate(s string) (*generic.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := generic.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// ToJSON converts a contract period and item list back to the plan schema.
func ToJSON(contract *generic.Period, items []progress.WorkItem) PlanJSON {
	pj := PlanJSON{}

	if contract != nil {
		pj.Contract = &ContractJSON{
			StartDate: contract.Start.String(),
			EndDate:   contract.End.String(),
		}
	}

	for _, item := range items {
		wj := WorkItemJSON{ID: item.ID, Name: item.Name}
		if item.Start != nil {
			wj.StartDate = item.Start.String()
		}
		if item.End != nil {
			wj.EndDate = item.End.String()
		}
		if item.Weight != nil {
			w, _ := item.Weight.Float64()
			wj.Weight = &w
		}
		for _, snap := range item.History {
			p, _ := snap.Progress.Float64()
			wj.Snapshots = append(wj.Snapshots, SnapshotJSON{
				Date:     snap.Date.String(),
				Progress: p,
			})
		}
		pj.WorkItems = append(pj.WorkItems, wj)
	}

	return pj
}
