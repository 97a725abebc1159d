package models

import "time"

// HistoryEntry is one finished session of a table.
type HistoryEntry struct {
	Guests int       `json:"guests"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func newHistoryEntry(guests int, start, end time.Time) HistoryEntry {
	if end.Before(start) {
		end = start
	}
	return HistoryEntry{Guests: guests, Start: start, End: end}
}

func (h HistoryEntry) Duration() time.Duration {
	return h.End.Sub(h.Start)
}
