package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-seating/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableRow is the live state of one table.
type TableRow struct {
	Number               int    `gorm:"primaryKey;autoIncrement:false"`
	MaxGuests            int    `gorm:"not null"`
	IsCounter            bool   `gorm:"not null;default:false"`
	Status               string `gorm:"type:varchar(20);not null;default:'vacant'"`
	CurrentGuests        int    `gorm:"not null;default:0"`
	OccupiedSince        *int64
	TimerStartedAt       *int64
	TimerTotalDuration   *int64
	TimerLastOrderOffset *int64
	UpdatedAt            time.Time `gorm:"not null"`
}

func (TableRow) TableName() string { return "seating_tables" }

// HistoryRow is one ledger entry, keyed by table number and position.
type HistoryRow struct {
	ID          uint  `gorm:"primaryKey"`
	TableNumber int   `gorm:"not null;index:idx_history_table_seq,unique"`
	Seq         int   `gorm:"not null;index:idx_history_table_seq,unique"`
	Guests      int   `gorm:"not null"`
	StartMs     int64 `gorm:"not null"`
	EndMs       int64 `gorm:"not null"`
	CreatedAt   time.Time
}

func (HistoryRow) TableName() string { return "seating_history" }

// TableSetRow stores a named layout as a JSON document.
type TableSetRow struct {
	Name      string    `gorm:"primaryKey;type:varchar(100)"`
	Tables    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (TableSetRow) TableName() string { return "seating_table_sets" }

// Models lists every row type for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&TableRow{}, &HistoryRow{}, &TableSetRow{}}
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Load(ctx context.Context) (models.Snapshot, error) {
	var rows []TableRow
	if err := s.DB.WithContext(ctx).Order("number ASC").Find(&rows).Error; err != nil {
		return models.Snapshot{}, fmt.Errorf("load tables: %w", err)
	}
	if len(rows) == 0 {
		return models.Snapshot{}, nil
	}

	var hist []HistoryRow
	if err := s.DB.WithContext(ctx).Order("table_number ASC, seq ASC").Find(&hist).Error; err != nil {
		return models.Snapshot{}, fmt.Errorf("load history: %w", err)
	}

	snap := models.Snapshot{
		Tables:  make([]models.TableRecord, 0, len(rows)),
		History: make(map[int][]models.HistoryRecord, len(rows)),
	}
	for _, h := range hist {
		snap.History[h.TableNumber] = append(snap.History[h.TableNumber], models.HistoryRecord{
			Guests: h.Guests, Start: h.StartMs, End: h.EndMs,
		})
	}
	for _, r := range rows {
		snap.Tables = append(snap.Tables, r.record())
	}
	return snap, nil
}

// Save replaces the live rows and appends only the ledger entries that are
// not stored yet. A table whose history got shorter (roster rebuilt from a
// table set) has its ledger rewritten.
func (s *GormStore) Save(ctx context.Context, snap models.Snapshot) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&TableRow{}).Error; err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
		if len(snap.Tables) > 0 {
			rows := make([]TableRow, 0, len(snap.Tables))
			for _, rec := range snap.Tables {
				rows = append(rows, newTableRow(rec))
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert tables: %w", err)
			}
		}
		return saveHistory(tx, snap)
	})
}

func saveHistory(tx *gorm.DB, snap models.Snapshot) error {
	ledger := snap.History
	if ledger == nil {
		ledger = make(map[int][]models.HistoryRecord, len(snap.Tables))
		for _, rec := range snap.Tables {
			ledger[rec.Number] = rec.History
		}
	}
	live := make([]int, 0, len(snap.Tables))
	for _, rec := range snap.Tables {
		live = append(live, rec.Number)
	}

	stale := tx.Model(&HistoryRow{})
	if len(live) > 0 {
		stale = stale.Where("table_number NOT IN ?", live)
	} else {
		stale = stale.Where("1 = 1")
	}
	if err := stale.Delete(&HistoryRow{}).Error; err != nil {
		return fmt.Errorf("drop stale history: %w", err)
	}

	var counts []struct {
		TableNumber int
		Total       int
	}
	if err := tx.Model(&HistoryRow{}).
		Select("table_number, COUNT(*) AS total").
		Group("table_number").
		Scan(&counts).Error; err != nil {
		return fmt.Errorf("count history: %w", err)
	}
	stored := make(map[int]int, len(counts))
	for _, c := range counts {
		stored[c.TableNumber] = c.Total
	}

	var rows []HistoryRow
	for _, number := range live {
		entries := ledger[number]
		have := stored[number]
		if have > len(entries) {
			if err := tx.Where("table_number = ?", number).Delete(&HistoryRow{}).Error; err != nil {
				return fmt.Errorf("rewrite history of table %d: %w", number, err)
			}
			have = 0
		}
		for i := have; i < len(entries); i++ {
			rows = append(rows, HistoryRow{
				TableNumber: number,
				Seq:         i,
				Guests:      entries[i].Guests,
				StartMs:     entries[i].Start,
				EndMs:       entries[i].End,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&HistoryRow{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&TableRow{}).Error
	})
}

func (s *GormStore) SaveSet(ctx context.Context, set models.TableSet) error {
	set.Name = strings.TrimSpace(set.Name)
	if set.Name == "" {
		return models.ErrInvalidSetName
	}
	data, err := json.Marshal(set.Tables)
	if err != nil {
		return err
	}
	row := TableSetRow{Name: set.Name, Tables: string(data)}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"tables", "updated_at"}),
	}).Create(&row).Error
}

func (s *GormStore) LoadSet(ctx context.Context, name string) (models.TableSet, error) {
	var row TableSetRow
	err := s.DB.WithContext(ctx).First(&row, "name = ?", strings.TrimSpace(name)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TableSet{}, fmt.Errorf("%w: %q", models.ErrTableSetNotFound, name)
	}
	if err != nil {
		return models.TableSet{}, err
	}
	set := models.TableSet{Name: row.Name}
	if err := json.Unmarshal([]byte(row.Tables), &set.Tables); err != nil {
		return models.TableSet{}, fmt.Errorf("decode table set %q: %w", row.Name, err)
	}
	return set, nil
}

func (s *GormStore) ListSets(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.DB.WithContext(ctx).Model(&TableSetRow{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *GormStore) DeleteSet(ctx context.Context, name string) error {
	res := s.DB.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).Delete(&TableSetRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %q", models.ErrTableSetNotFound, name)
	}
	return nil
}

func newTableRow(rec models.TableRecord) TableRow {
	row := TableRow{
		Number:        rec.Number,
		MaxGuests:     rec.MaxGuests,
		IsCounter:     rec.IsCounter,
		Status:        string(rec.Status),
		CurrentGuests: rec.CurrentGuests,
		OccupiedSince: rec.OccupiedSince,
	}
	if rec.Timer != nil {
		started, total, lo := rec.Timer.StartedAt, rec.Timer.TotalDuration, rec.Timer.LastOrderOffset
		row.TimerStartedAt = &started
		row.TimerTotalDuration = &total
		row.TimerLastOrderOffset = &lo
	}
	return row
}

func (r TableRow) record() models.TableRecord {
	rec := models.TableRecord{
		Number:        r.Number,
		MaxGuests:     r.MaxGuests,
		IsCounter:     r.IsCounter,
		Status:        models.TableStatus(r.Status),
		CurrentGuests: r.CurrentGuests,
		OccupiedSince: r.OccupiedSince,
	}
	if r.TimerStartedAt != nil && r.TimerTotalDuration != nil && r.TimerLastOrderOffset != nil {
		rec.Timer = &models.TimerRecord{
			StartedAt:       *r.TimerStartedAt,
			TotalDuration:   *r.TimerTotalDuration,
			LastOrderOffset: *r.TimerLastOrderOffset,
		}
	}
	return rec
}
