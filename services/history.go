package services

import (
	"fmt"

	"github.com/yeremiapane/restaurant-seating/models"
)

// HistoryLedger maps a table number to its finished sessions, oldest first.
type HistoryLedger map[int][]models.HistoryEntry

// Ledger returns a copy of the history of every table on the roster.
// Tables without sessions map to an empty list.
func (r *Roster) Ledger() HistoryLedger {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger := make(HistoryLedger, len(r.tables))
	for number, t := range r.tables {
		ledger[number] = append([]models.HistoryEntry{}, t.History...)
	}
	return ledger
}

func (r *Roster) History(number int) ([]models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[number]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrTableNotFound, number)
	}
	return append([]models.HistoryEntry{}, t.History...), nil
}
