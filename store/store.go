/*
Package store defines the persistence interface for site data.

PURPOSE:
  The engines are pure functions over already-fetched data; fetching is
  the caller's job. This package is that caller-side collaborator: it owns
  the work items, their progress snapshots, the daily attendance
  sign-sheets, and the site's contract period.

KEY INTERFACE:
  SiteStore: everything the API layer needs to materialize engine inputs.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - memory.go:    in-memory store for tests

The engines never import this package. Handlers load through it, then
hand plain slices to progress and workforce.
*/
package store

import (
	"context"

	"github.com/warp/site-analytics/generic"
	"github.com/warp/site-analytics/progress"
	"github.com/warp/site-analytics/workforce"
)

// SiteStore persists the inputs the analytics engines consume.
type SiteStore interface {
	// SaveWorkItem inserts or replaces a work item's schedule fields.
	// Snapshots are appended separately and survive a replace.
	SaveWorkItem(ctx context.Context, item progress.WorkItem) error

	// ListWorkItems returns every work item with its snapshot history in
	// insertion order.
	ListWorkItems(ctx context.Context) ([]progress.WorkItem, error)

	// AppendSnapshot records a progress observation for an existing work
	// item. Unknown items yield a NotFoundError.
	AppendSnapshot(ctx context.Context, itemID string, snap progress.Snapshot) error

	// AppendSignatures records sign-ins for one day and channel.
	AppendSignatures(ctx context.Context, day generic.Date, channel workforce.Channel, sigs []workforce.Signature) error

	// LoadSignSheets returns one sheet per day in the window that has at
	// least one recorded signature. Dense expansion is the engine's job,
	// not the store's.
	LoadSignSheets(ctx context.Context, window generic.Period) ([]workforce.SignSheet, error)

	// ContractPeriod returns the site's contract period, or nil when none
	// has been configured.
	ContractPeriod(ctx context.Context) (*generic.Period, error)

	// SetContractPeriod configures the site's contract period.
	SetContractPeriod(ctx context.Context, p generic.Period) error
}
