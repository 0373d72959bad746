package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/site-analytics/generic"
	"github.com/warp/site-analytics/progress"
	"github.com/warp/site-analytics/workforce"
)

// Memory is an in-memory SiteStore for tests.
type Memory struct {
	mu        sync.RWMutex
	items     map[string]progress.WorkItem
	itemOrder []string
	sheets    map[generic.Date]map[workforce.Channel][]workforce.Signature
	contract  *generic.Period
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:  make(map[string]progress.WorkItem),
		sheets: make(map[generic.Date]map[workforce.Channel][]workforce.Signature),
	}
}

func (m *Memory) SaveWorkItem(ctx context.Context, item progress.WorkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[item.ID]
	if ok {
		// Replacing schedule fields keeps the recorded history.
		item.History = existing.History
	} else {
		m.itemOrder = append(m.itemOrder, item.ID)
		item.History = nil
	}
	m.items[item.ID] = item
	return nil
}

func (m *Memory) ListWorkItems(ctx context.Context) ([]progress.WorkItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]progress.WorkItem, 0, len(m.itemOrder))
	for _, id := range m.itemOrder {
		items = append(items, m.items[id])
	}
	return items, nil
}

func (m *Memory) AppendSnapshot(ctx context.Context, itemID string, snap progress.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[itemID]
	if !ok {
		return &generic.NotFoundError{Kind: "work item", ID: itemID}
	}
	item.History = append(item.History, snap)
	m.items[itemID] = item
	return nil
}

func (m *Memory) AppendSignatures(ctx context.Context, day generic.Date, channel workforce.Channel, sigs []workforce.Signature) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	day = day.Normalize()
	sheet, ok := m.sheets[day]
	if !ok {
		sheet = make(map[workforce.Channel][]workforce.Signature)
		m.sheets[day] = sheet
	}
	sheet[channel] = append(sheet[channel], sigs...)
	return nil
}

func (m *Memory) LoadSignSheets(ctx context.Context, window generic.Period) ([]workforce.SignSheet, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var sheets []workforce.SignSheet
	for day, entries := range m.sheets {
		if !window.Contains(day) {
			continue
		}
		copied := make(map[workforce.Channel][]workforce.Signature, len(entries))
		for channel, sigs := range entries {
			copied[channel] = append([]workforce.Signature(nil), sigs...)
		}
		sheets = append(sheets, workforce.SignSheet{Date: day, Entries: copied})
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].Date.Before(sheets[j].Date) })
	return sheets, nil
}

func (m *Memory) ContractPeriod(ctx context.Context) (*generic.Period, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.contract == nil {
		return nil, nil
	}
	p := *m.contract
	return &p, nil
}

func (m *Memory) SetContractPeriod(ctx context.Context, p generic.Period) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.contract = &p
	return nil
}
