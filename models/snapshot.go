package models

import (
	"fmt"
	"sort"
	"time"
)

// TimerRecord is the persisted form of a Timer. All values are milliseconds.
type TimerRecord struct {
	StartedAt       int64 `json:"startedAt"`
	TotalDuration   int64 `json:"totalDuration"`
	LastOrderOffset int64 `json:"lastOrderOffset"`
}

type HistoryRecord struct {
	Guests int   `json:"guests"`
	Start  int64 `json:"start"`
	End    int64 `json:"end"`
}

// TableRecord is the persisted form of a Table. Timestamps are epoch milliseconds.
type TableRecord struct {
	Number        int             `json:"number"`
	MaxGuests     int             `json:"maxGuests"`
	IsCounter     bool            `json:"isCounter"`
	Status        TableStatus     `json:"status"`
	CurrentGuests int             `json:"currentGuests"`
	OccupiedSince *int64          `json:"occupiedSince"`
	Timer         *TimerRecord    `json:"timer"`
	History       []HistoryRecord `json:"history"`
}

// Snapshot is the full persisted state: the roster plus the history ledger
// keyed by table number.
type Snapshot struct {
	Tables  []TableRecord           `json:"tables"`
	History map[int][]HistoryRecord `json:"history"`
}

func (s Snapshot) Empty() bool {
	return len(s.Tables) == 0
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func NewHistoryRecords(entries []HistoryEntry) []HistoryRecord {
	out := make([]HistoryRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryRecord{Guests: e.Guests, Start: toMillis(e.Start), End: toMillis(e.End)})
	}
	return out
}

func HistoryFromRecords(records []HistoryRecord) []HistoryEntry {
	if len(records) == 0 {
		return nil
	}
	out := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		out = append(out, HistoryEntry{Guests: r.Guests, Start: fromMillis(r.Start), End: fromMillis(r.End)})
	}
	return out
}

func NewTableRecord(t *Table) TableRecord {
	rec := TableRecord{
		Number:        t.Number,
		MaxGuests:     t.MaxGuests,
		IsCounter:     t.IsCounter,
		Status:        t.Status,
		CurrentGuests: t.CurrentGuests,
		History:       NewHistoryRecords(t.History),
	}
	if t.OccupiedSince != nil {
		ms := toMillis(*t.OccupiedSince)
		rec.OccupiedSince = &ms
	}
	if t.Timer != nil {
		rec.Timer = &TimerRecord{
			StartedAt:       toMillis(t.Timer.StartedAt),
			TotalDuration:   t.Timer.TotalDuration.Milliseconds(),
			LastOrderOffset: t.Timer.LastOrderOffset.Milliseconds(),
		}
	}
	return rec
}

// ToTable decodes the record. Stale occupancy fields on a non-occupied
// record are dropped; an occupied record missing its session data is rejected.
func (r TableRecord) ToTable() (*Table, error) {
	t, err := NewTable(r.Number, r.MaxGuests, r.IsCounter)
	if err != nil {
		return nil, err
	}
	if !r.Status.Valid() {
		return nil, fmt.Errorf("table %d: %w %q", r.Number, ErrInvalidStatus, r.Status)
	}
	t.Status = r.Status
	t.History = HistoryFromRecords(r.History)
	if r.Status != StatusOccupied {
		return t, nil
	}

	if r.CurrentGuests < 1 || r.OccupiedSince == nil {
		return nil, fmt.Errorf("table %d: %w", r.Number, ErrInvalidGuests)
	}
	t.CurrentGuests = r.CurrentGuests
	since := fromMillis(*r.OccupiedSince)
	t.OccupiedSince = &since
	if r.Timer != nil {
		t.Timer = &Timer{
			StartedAt:       fromMillis(r.Timer.StartedAt),
			TotalDuration:   time.Duration(r.Timer.TotalDuration) * time.Millisecond,
			LastOrderOffset: time.Duration(r.Timer.LastOrderOffset) * time.Millisecond,
		}
	}
	return t, nil
}

// NewSnapshot encodes tables ordered by number.
func NewSnapshot(tables []*Table) Snapshot {
	snap := Snapshot{
		Tables:  make([]TableRecord, 0, len(tables)),
		History: make(map[int][]HistoryRecord, len(tables)),
	}
	for _, t := range tables {
		rec := NewTableRecord(t)
		snap.Tables = append(snap.Tables, rec)
		snap.History[t.Number] = rec.History
	}
	sort.Slice(snap.Tables, func(i, j int) bool { return snap.Tables[i].Number < snap.Tables[j].Number })
	return snap
}

// Restore decodes every table. The ledger keyed by number takes precedence
// over history embedded in a table record.
func (s Snapshot) Restore() ([]*Table, error) {
	seen := make(map[int]bool, len(s.Tables))
	tables := make([]*Table, 0, len(s.Tables))
	for _, rec := range s.Tables {
		if seen[rec.Number] {
			return nil, fmt.Errorf("table %d: %w", rec.Number, ErrDuplicateTable)
		}
		seen[rec.Number] = true

		if ledger, ok := s.History[rec.Number]; ok {
			rec.History = ledger
		}
		t, err := rec.ToTable()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables, nil
}
