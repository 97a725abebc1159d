package models

import (
	"fmt"
	"strings"
)

// TableTemplate is the layout part of a table: no status, timer or history.
type TableTemplate struct {
	Number    int  `json:"number" yaml:"number"`
	MaxGuests int  `json:"maxGuests" yaml:"max_guests"`
	IsCounter bool `json:"isCounter" yaml:"is_counter"`
}

// TableSet is a named floor layout.
type TableSet struct {
	Name   string          `json:"name" yaml:"name"`
	Tables []TableTemplate `json:"tables" yaml:"tables"`
}

func NewTableSet(name string, tables []*Table) TableSet {
	set := TableSet{Name: strings.TrimSpace(name), Tables: make([]TableTemplate, 0, len(tables))}
	for _, t := range tables {
		set.Tables = append(set.Tables, TableTemplate{Number: t.Number, MaxGuests: t.MaxGuests, IsCounter: t.IsCounter})
	}
	return set
}

// Build creates fresh vacant tables from the set.
func (s TableSet) Build() ([]*Table, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, ErrInvalidSetName
	}
	seen := make(map[int]bool, len(s.Tables))
	tables := make([]*Table, 0, len(s.Tables))
	for _, tpl := range s.Tables {
		if seen[tpl.Number] {
			return nil, fmt.Errorf("set %q table %d: %w", s.Name, tpl.Number, ErrDuplicateTable)
		}
		seen[tpl.Number] = true
		t, err := NewTable(tpl.Number, tpl.MaxGuests, tpl.IsCounter)
		if err != nil {
			return nil, fmt.Errorf("set %q table %d: %w", s.Name, tpl.Number, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
