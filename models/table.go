package models

import (
	"fmt"
	"strings"
	"time"
)

type TableStatus string

const (
	StatusVacant   TableStatus = "vacant"
	StatusOccupied TableStatus = "occupied"
	StatusReserved TableStatus = "reserved"
)

// Valid reports whether s is one of the three table statuses.
func (s TableStatus) Valid() bool {
	switch s {
	case StatusVacant, StatusOccupied, StatusReserved:
		return true
	}
	return false
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(raw string) (TableStatus, error) {
	s := TableStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Table is one physical table on the floor. Status, occupancy and timer
// fields change only through the methods below.
type Table struct {
	Number        int
	MaxGuests     int
	IsCounter     bool
	Status        TableStatus
	CurrentGuests int
	OccupiedSince *time.Time
	Timer         *Timer
	History       []HistoryEntry
}

// Transition describes the outcome of a successful SetStatus call.
type Transition struct {
	From  TableStatus
	To    TableStatus
	Entry *HistoryEntry
}

// Seated reports whether the transition turned a free table into an occupied one.
func (tr Transition) Seated() bool {
	return tr.To == StatusOccupied && tr.From != StatusOccupied
}

func NewTable(number, maxGuests int, isCounter bool) (*Table, error) {
	if number <= 0 {
		return nil, ErrInvalidTableNumber
	}
	if maxGuests <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Table{
		Number:    number,
		MaxGuests: maxGuests,
		IsCounter: isCounter,
		Status:    StatusVacant,
	}, nil
}

// SetStatus moves the table to target. Entering Occupied keeps an already
// running session clock. Leaving Occupied clears guests, session start and
// timer; when the target is Vacant and saveHistory is set the finished
// session is appended to the history first.
func (t *Table) SetStatus(target TableStatus, guests int, saveHistory bool, now time.Time) (Transition, error) {
	if !target.Valid() {
		return Transition{}, fmt.Errorf("%w %q", ErrInvalidStatus, target)
	}
	if target == StatusOccupied && guests < 1 {
		return Transition{}, ErrInvalidGuests
	}

	tr := Transition{From: t.Status, To: target}
	switch {
	case target == StatusOccupied:
		t.CurrentGuests = guests
		if t.OccupiedSince == nil {
			since := now
			t.OccupiedSince = &since
		}
	case t.Status == StatusOccupied:
		if target == StatusVacant && saveHistory && t.OccupiedSince != nil {
			entry := newHistoryEntry(t.CurrentGuests, *t.OccupiedSince, now)
			t.History = append(t.History, entry)
			tr.Entry = &entry
		}
		t.CurrentGuests = 0
		t.OccupiedSince = nil
		t.Timer = nil
	}
	t.Status = target
	return tr, nil
}

// StartTimer begins a new countdown on an occupied table.
func (t *Table) StartTimer(now time.Time, totalMinutes, lastOrderMinutes int) error {
	if t.Status != StatusOccupied {
		return ErrTableNotOccupied
	}
	timer, err := NewTimer(now, totalMinutes, lastOrderMinutes)
	if err != nil {
		return err
	}
	t.Timer = timer
	return nil
}

// AdjustRemaining restarts the running countdown with a new remaining time.
func (t *Table) AdjustRemaining(now time.Time, minutes int) error {
	if t.Timer == nil {
		return ErrNoActiveTimer
	}
	return t.Timer.Adjust(now, minutes)
}

func (t *Table) ClearTimer() {
	t.Timer = nil
}

// Label is the short name shown on a floor card, e.g. C3 for counter seat 3.
func (t *Table) Label() string {
	if t.IsCounter {
		return fmt.Sprintf("C%d", t.Number)
	}
	return fmt.Sprintf("T%d", t.Number)
}

// CheckInvariants returns an error describing the first broken invariant.
func (t *Table) CheckInvariants() error {
	occupied := t.Status == StatusOccupied
	if occupied != (t.CurrentGuests > 0 && t.OccupiedSince != nil) {
		return fmt.Errorf("table %d: status %s with %d guests, occupied since set=%t",
			t.Number, t.Status, t.CurrentGuests, t.OccupiedSince != nil)
	}
	if !occupied && t.Timer != nil {
		return fmt.Errorf("table %d: timer running while %s", t.Number, t.Status)
	}
	return nil
}

// Clone returns a deep copy that shares no mutable state with t.
func (t *Table) Clone() *Table {
	c := *t
	if t.OccupiedSince != nil {
		since := *t.OccupiedSince
		c.OccupiedSince = &since
	}
	if t.Timer != nil {
		timer := *t.Timer
		c.Timer = &timer
	}
	if t.History != nil {
		c.History = append([]HistoryEntry(nil), t.History...)
	}
	return &c
}
