/*
Package sqlite provides the SQLite-backed implementation of store.SiteStore.

PURPOSE:
  Persists work items, progress snapshots, attendance signatures, and the
  site contract period. This is the document store the analytics engines'
  callers fetch from; the engines themselves never touch it.

KEY TABLES:
  work_items:             schedule fields per item (weight stored as TEXT
                          to keep decimal values exact)
  progress_snapshots:     append-only progress observations
  attendance_signatures:  append-only sign-in records per day and channel
  site_contract:          single-row contract period

APPEND-ONLY HISTORY:
  Snapshots and signatures are never updated or deleted. Re-saving a work
  item replaces its schedule fields but leaves its history untouched -
  history is observation data, not configuration.

WAL MODE:
  SQLite is opened with WAL for better read concurrency. A sync.RWMutex
  guards the connection; with a server-grade database the engine's callers
  would rely on database-level concurrency control instead.

USAGE:
  st, err := sqlite.New("./data/site.db")   // or ":memory:"
  if err != nil { ... }
  defer st.Close()

SEE ALSO:
  - store/store.go: interface definition
  - store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/site-analytics/generic"
	"github.com/warp/site-analytics/progress"
	"github.com/warp/site-analytics/workforce"
)

// Store implements store.SiteStore on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS work_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		weight TEXT,
		current_progress TEXT,
		created_at TEXT NOT NULL
	);

	-- Append-only progress observations
	CREATE TABLE IF NOT EXISTS progress_snapshots (
		id TEXT PRIMARY KEY,
		work_item_id TEXT NOT NULL REFERENCES work_items(id),
		snapshot_date TEXT NOT NULL,
		progress TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_item
		ON progress_snapshots(work_item_id, created_at);

	-- Append-only sign-in records
	CREATE TABLE IF NOT EXISTS attendance_signatures (
		id TEXT PRIMARY KEY,
		sheet_date TEXT NOT NULL,
		channel TEXT NOT NULL,
		person_name TEXT NOT NULL,
		company_name TEXT NOT NULL,
		has_mark INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: loading a date window of sheets
	CREATE INDEX IF NOT EXISTS idx_signatures_date
		ON attendance_signatures(sheet_date, channel);

	-- Single-row contract period
	CREATE TABLE IF NOT EXISTS site_contract (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORK ITEMS
// =============================================================================

func (s *Store) SaveWorkItem(ctx context.Context, item progress.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_items (id, name, start_date, end_date, weight, current_progress, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			weight = excluded.weight,
			current_progress = excluded.current_progress`,
		item.ID, item.Name,
		nullableDate(item.Start), nullableDate(item.End),
		nullableDecimal(item.Weight), nullableDecimal(item.CurrentProgress),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save work item %s: %w", item.ID, err)
	}
	return nil
}

func (s *Store) ListWorkItems(ctx context.Context) ([]progress.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, weight, current_progress
		FROM work_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var items []progress.WorkItem
	index := make(map[string]int)
	for rows.Next() {
		var item progress.WorkItem
		var start, end, weight, current sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &start, &end, &weight, &current); err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		if item.Start, err = scanDate(start); err != nil {
			return nil, err
		}
		if item.End, err = scanDate(end); err != nil {
			return nil, err
		}
		if item.Weight, err = scanDecimal(weight); err != nil {
			return nil, err
		}
		if item.CurrentProgress, err = scanDecimal(current); err != nil {
			return nil, err
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach snapshot histories in insertion order.
	snapRows, err := s.db.QueryContext(ctx, `
		SELECT work_item_id, snapshot_date, progress
		FROM progress_snapshots ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer snapRows.Close()

	for snapRows.Next() {
		var itemID, dateStr, progressStr string
		if err := snapRows.Scan(&itemID, &dateStr, &progressStr); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		i, ok := index[itemID]
		if !ok {
			continue
		}
		day, err := generic.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		pct, err := decimal.NewFromString(progressStr)
		if err != nil {
			return nil, fmt.Errorf("snapshot progress %q: %w", progressStr, err)
		}
		items[i].History = append(items[i].History, progress.Snapshot{Date: day, Progress: pct})
	}
	return items, snapRows.Err()
}

func (s *Store) AppendSnapshot(ctx context.Context, itemID string, snap progress.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM work_items WHERE id = ?`, itemID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check work item %s: %w", itemID, err)
	}
	if exists == 0 {
		return &generic.NotFoundError{Kind: "work item", ID: itemID}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress_snapshots (id, work_item_id, snapshot_date, progress, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), itemID, snap.Date.String(), snap.Progress.String(),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append snapshot for %s: %w", itemID, err)
	}
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) AppendSignatures(ctx context.Context, day generic.Date, channel workforce.Channel, sigs []workforce.Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin signatures tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance_signatures (id, sheet_date, channel, person_name, company_name, has_mark, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare signature insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, sig := range sigs {
		mark := 0
		if sig.HasMark {
			mark = 1
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), day.String(), string(channel),
			sig.PersonName, sig.CompanyName, mark, now); err != nil {
			return fmt.Errorf("insert signature: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) LoadSignSheets(ctx context.Context, window generic.Period) ([]workforce.SignSheet, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT sheet_date, channel, person_name, company_name, has_mark
		FROM attendance_signatures
		WHERE sheet_date >= ? AND sheet_date <= ?
		ORDER BY sheet_date, created_at, rowid`,
		window.Start.String(), window.End.String())
	if err != nil {
		return nil, fmt.Errorf("load sign sheets: %w", err)
	}
	defer rows.Close()

	byDay := make(map[generic.Date]*workforce.SignSheet)
	var order []generic.Date
	for rows.Next() {
		var dateStr, channelStr, person, company string
		var mark int
		if err := rows.Scan(&dateStr, &channelStr, &person, &company, &mark); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		day, err := generic.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		sheet, ok := byDay[day]
		if !ok {
			sheet = &workforce.SignSheet{Date: day, Entries: make(map[workforce.Channel][]workforce.Signature)}
			byDay[day] = sheet
			order = append(order, day)
		}
		channel := workforce.Channel(channelStr)
		sheet.Entries[channel] = append(sheet.Entries[channel], workforce.Signature{
			PersonName:  person,
			CompanyName: company,
			HasMark:     mark != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sheets := make([]workforce.SignSheet, 0, len(order))
	for _, day := range order {
		sheets = append(sheets, *byDay[day])
	}
	return sheets, nil
}

// =============================================================================
// CONTRACT PERIOD
// =============================================================================

func (s *Store) ContractPeriod(ctx context.Context) (*generic.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var startStr, endStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT start_date, end_date FROM site_contract WHERE id = 1`).Scan(&startStr, &endStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load contract period: %w", err)
	}

	start, err := generic.ParseDate(startStr)
	if err != nil {
		return nil, err
	}
	end, err := generic.ParseDate(endStr)
	if err != nil {
		return nil, err
	}
	return &generic.Period{Start: start, End: end}, nil
}

func (s *Store) SetContractPeriod(ctx context.Context, p generic.Period) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_contract (id, start_date, end_date, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			updated_at = excluded.updated_at`,
		p.Start.String(), p.End.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set contract period: %w", err)
	}
	return nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func nullableDate(d *generic.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func scanDate(v sql.NullString) (*generic.Date, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := generic.ParseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, fmt.Errorf("decimal %q: %w", v.String, err)
	}
	return &d, nil
}
