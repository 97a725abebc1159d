package models

import "time"

// TableView is what displays receive for a table card.
type TableView struct {
	Number        int            `json:"number"`
	Label         string         `json:"label"`
	MaxGuests     int            `json:"max_guests"`
	IsCounter     bool           `json:"is_counter"`
	Status        TableStatus    `json:"status"`
	Class         string         `json:"class"`
	CurrentGuests int            `json:"current_guests"`
	OccupiedSince *time.Time     `json:"occupied_since,omitempty"`
	TimerText     string         `json:"timer_text"`
	Timer         *TimerView     `json:"timer,omitempty"`
	History       []HistoryEntry `json:"history"`
}

type TimerView struct {
	StartedAt          time.Time `json:"started_at"`
	TotalMinutes       int       `json:"total_minutes"`
	LastOrderMinutes   int       `json:"last_order_minutes"`
	RemainingMinutes   int       `json:"remaining_minutes"`
	LastOrderRemaining int       `json:"last_order_remaining_minutes"`
	Overtime           bool      `json:"overtime"`
}

func NewTableView(t *Table, now time.Time) TableView {
	v := TableView{
		Number:        t.Number,
		Label:         t.Label(),
		MaxGuests:     t.MaxGuests,
		IsCounter:     t.IsCounter,
		Status:        t.Status,
		Class:         "table-" + string(t.Status),
		CurrentGuests: t.CurrentGuests,
		OccupiedSince: t.OccupiedSince,
		TimerText:     t.Timer.Display(now),
		History:       t.History,
	}
	if v.History == nil {
		v.History = []HistoryEntry{}
	}
	if t.Timer != nil {
		remain := CeilMinutes(t.Timer.TimeToEnd(now))
		v.Timer = &TimerView{
			StartedAt:          t.Timer.StartedAt,
			TotalMinutes:       CeilMinutes(t.Timer.TotalDuration),
			LastOrderMinutes:   CeilMinutes(t.Timer.LastOrderOffset),
			RemainingMinutes:   remain,
			LastOrderRemaining: CeilMinutes(t.Timer.TimeToLastOrder(now)),
			Overtime:           remain <= 0,
		}
	}
	return v
}

// FloorStats are the dashboard counters broadcast with every table event.
type FloorStats struct {
	Vacant   int `json:"vacant"`
	Occupied int `json:"occupied"`
	Reserved int `json:"reserved"`
	Total    int `json:"total"`
	Guests   int `json:"guests"`
}

type AlertKind string

const (
	AlertLastOrder AlertKind = "last_order"
	AlertTableEnd  AlertKind = "table_end"
)

// Alert asks the floor to play an audible signal for one table.
type Alert struct {
	TableNumber int       `json:"table_number"`
	Label       string    `json:"label"`
	Kind        AlertKind `json:"kind"`
	At          time.Time `json:"at"`
}
