package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/yeremiapane/restaurant-seating/board"
	"github.com/yeremiapane/restaurant-seating/metrics"
	"github.com/yeremiapane/restaurant-seating/models"
	"github.com/yeremiapane/restaurant-seating/storage"
	"github.com/yeremiapane/restaurant-seating/utils"
)

// Notifier receives floor events for connected displays.
type Notifier interface {
	Broadcast(event string, data interface{})
}

// Alerter plays the audible signal for a timer threshold.
type Alerter interface {
	Alert(alert models.Alert)
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(string, interface{}) {}
func (nopNotifier) Alert(models.Alert)            {}

type RosterConfig struct {
	TotalMinutes     int
	LastOrderMinutes int
	// AutoStartTimer starts the default countdown whenever a free table gets seated.
	AutoStartTimer bool
}

func DefaultRosterConfig() RosterConfig {
	return RosterConfig{
		TotalMinutes:     models.DefaultTotalMinutes,
		LastOrderMinutes: models.DefaultLastOrderMinutes,
		AutoStartTimer:   true,
	}
}

// TableEvent is the payload of table create/update broadcasts.
type TableEvent struct {
	Table models.TableView  `json:"table"`
	Stats models.FloorStats `json:"stats"`
}

type RosterEvent struct {
	Tables []models.TableView `json:"tables"`
	Stats  models.FloorStats  `json:"stats"`
}

type DeleteEvent struct {
	TableNumber int               `json:"table_number"`
	Stats       models.FloorStats `json:"stats"`
}

type AllocationMiss struct {
	PartySize int `json:"party_size"`
}

type event struct {
	name string
	data interface{}
}

// Roster owns every table of the floor. All reads and writes go through its
// lock, which also serializes them with timer ticks. Every successful
// mutation is saved to the store before the call returns.
type Roster struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	cfg      RosterConfig
	store    storage.Store
	notifier Notifier
	tables   map[int]*models.Table
	alerts   map[int]*alertState
}

func NewRoster(clock clockwork.Clock, cfg RosterConfig, store storage.Store, notifier Notifier) *Roster {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.TotalMinutes <= 0 {
		cfg.TotalMinutes = models.DefaultTotalMinutes
	}
	if cfg.LastOrderMinutes <= 0 {
		cfg.LastOrderMinutes = models.DefaultLastOrderMinutes
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Roster{
		clock:    clock,
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		tables:   make(map[int]*models.Table),
		alerts:   make(map[int]*alertState),
	}
}

func (r *Roster) Config() RosterConfig {
	return r.cfg
}

// Load replaces the in-memory roster with the last saved snapshot.
func (r *Roster) Load(ctx context.Context) (int, error) {
	defer metrics.TrackStoreOperation("load")(time.Now())

	snap, err := r.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	tables, err := snap.Restore()
	if err != nil {
		return 0, fmt.Errorf("restore snapshot: %w", err)
	}

	r.mu.Lock()
	r.tables = make(map[int]*models.Table, len(tables))
	for _, t := range tables {
		r.tables[t.Number] = t
	}
	r.alerts = make(map[int]*alertState)
	r.updateGaugesLocked()
	r.mu.Unlock()

	utils.InfoLogger.Printf("Roster loaded with %d tables", len(tables))
	return len(tables), nil
}

// Seed applies set only when the roster is empty.
func (r *Roster) Seed(ctx context.Context, set models.TableSet) (bool, error) {
	r.mu.Lock()
	empty := len(r.tables) == 0
	r.mu.Unlock()
	if !empty {
		return false, nil
	}
	if err := r.ApplyTableSet(ctx, set); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Roster) Add(ctx context.Context, number, maxGuests int, isCounter bool) (*models.Table, error) {
	t, err := models.NewTable(number, maxGuests, isCounter)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if _, exists := r.tables[number]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", models.ErrDuplicateTable, number)
	}
	r.tables[number] = t
	r.persistLocked(ctx)
	ev := event{board.EventTableCreate, TableEvent{Table: models.NewTableView(t, r.now()), Stats: r.statsLocked()}}
	out := t.Clone()
	r.mu.Unlock()

	r.publish(ev)
	utils.InfoLogger.Printf("New table created: %s (max_guests=%d)", t.Label(), t.MaxGuests)
	return out, nil
}

// Delete removes a table. Its countdown and pending alerts go with it, so
// no later tick can reach it.
func (r *Roster) Delete(ctx context.Context, number int) error {
	r.mu.Lock()
	t, ok := r.tables[number]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %d", models.ErrTableNotFound, number)
	}
	t.ClearTimer()
	delete(r.alerts, number)
	delete(r.tables, number)
	r.persistLocked(ctx)
	ev := event{board.EventTableDelete, DeleteEvent{TableNumber: number, Stats: r.statsLocked()}}
	r.mu.Unlock()

	r.publish(ev)
	utils.InfoLogger.Printf("Table %d deleted", number)
	return nil
}

func (r *Roster) Get(number int) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[number]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrTableNotFound, number)
	}
	return t.Clone(), nil
}

// List returns copies of all tables ordered by number.
func (r *Roster) List() []*models.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := r.sortedLocked()
	out := make([]*models.Table, 0, len(sorted))
	for _, t := range sorted {
		out = append(out, t.Clone())
	}
	return out
}

func (r *Roster) Views() []models.TableView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewsLocked()
}

func (r *Roster) View(number int) (models.TableView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[number]
	if !ok {
		return models.TableView{}, fmt.Errorf("%w: %d", models.ErrTableNotFound, number)
	}
	return models.NewTableView(t, r.now()), nil
}

// NewView renders t at the roster's current time.
func (r *Roster) NewView(t *models.Table) models.TableView {
	return models.NewTableView(t, r.now())
}

func (r *Roster) Stats() models.FloorStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statsLocked()
}

// SetStatus runs the table state machine. saveHistory is the caller's
// answer to "record this session?" and only matters for Occupied to Vacant.
func (r *Roster) SetStatus(ctx context.Context, number int, target models.TableStatus, guests int, saveHistory bool) (models.Transition, *models.Table, error) {
	var tr models.Transition
	t, err := r.mutate(ctx, number, func(t *models.Table) error {
		var err error
		tr, err = r.transition(t, target, guests, saveHistory)
		return err
	})
	if err != nil {
		return models.Transition{}, nil, err
	}
	return tr, t, nil
}

// Allocate seats a party at the best-fit vacant table. Selection and the
// Occupied transition happen under one lock; on failure nothing changes.
func (r *Roster) Allocate(ctx context.Context, partySize int) (models.Transition, *models.Table, error) {
	r.mu.Lock()
	candidate, err := SelectTable(r.sortedLocked(), partySize)
	if err != nil {
		r.mu.Unlock()
		metrics.RecordAllocation("failed")
		utils.InfoLogger.Printf("Allocation for party of %d failed: %v", partySize, err)
		if errors.Is(err, models.ErrAllocationFailed) {
			r.publish(event{board.EventAllocationMiss, AllocationMiss{PartySize: partySize}})
		}
		return models.Transition{}, nil, err
	}

	var tr models.Transition
	t, ev, err := r.applyLocked(ctx, candidate.Number, func(t *models.Table) error {
		var err error
		tr, err = r.transition(t, models.StatusOccupied, partySize, false)
		return err
	})
	r.mu.Unlock()
	if err != nil {
		return models.Transition{}, nil, err
	}

	r.publish(ev)
	metrics.RecordAllocation("seated")
	utils.InfoLogger.Printf("Party of %d allocated to %s (max_guests=%d)", partySize, t.Label(), t.MaxGuests)
	return tr, t, nil
}

func (r *Roster) transition(t *models.Table, target models.TableStatus, guests int, saveHistory bool) (models.Transition, error) {
	now := r.now()
	tr, err := t.SetStatus(target, guests, saveHistory, now)
	if err != nil {
		return models.Transition{}, err
	}
	if tr.Seated() && r.cfg.AutoStartTimer {
		if err := t.StartTimer(now, r.cfg.TotalMinutes, r.cfg.LastOrderMinutes); err != nil {
			return models.Transition{}, err
		}
	}

	metrics.RecordTransition(string(tr.From), string(tr.To))
	utils.InfoLogger.Printf("Table %d status changed %s -> %s (guests=%d)", t.Number, tr.From, tr.To, t.CurrentGuests)
	if tr.Entry != nil {
		utils.InfoLogger.Printf("Table %d session recorded: %d guests, %s", t.Number, tr.Entry.Guests, tr.Entry.Duration())
	}
	return tr, nil
}

// ApplyTableSet replaces the roster with fresh vacant tables from set.
func (r *Roster) ApplyTableSet(ctx context.Context, set models.TableSet) error {
	tables, err := set.Build()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.tables = make(map[int]*models.Table, len(tables))
	for _, t := range tables {
		r.tables[t.Number] = t
	}
	r.alerts = make(map[int]*alertState)
	r.persistLocked(ctx)
	ev := event{board.EventRosterReload, RosterEvent{Tables: r.viewsLocked(), Stats: r.statsLocked()}}
	r.mu.Unlock()

	r.publish(ev)
	utils.InfoLogger.Printf("Table set %q applied with %d tables", set.Name, len(tables))
	return nil
}

// SaveTableSet stores the current layout under name.
func (r *Roster) SaveTableSet(ctx context.Context, name string) (models.TableSet, error) {
	r.mu.Lock()
	set := models.NewTableSet(name, r.sortedLocked())
	r.mu.Unlock()

	if set.Name == "" {
		return models.TableSet{}, models.ErrInvalidSetName
	}
	if err := r.store.SaveSet(ctx, set); err != nil {
		return models.TableSet{}, err
	}
	utils.InfoLogger.Printf("Table set %q saved with %d tables", set.Name, len(set.Tables))
	return set, nil
}

func (r *Roster) LoadTableSet(ctx context.Context, name string) (models.TableSet, error) {
	set, err := r.store.LoadSet(ctx, name)
	if err != nil {
		return models.TableSet{}, err
	}
	if err := r.ApplyTableSet(ctx, set); err != nil {
		return models.TableSet{}, err
	}
	return set, nil
}

// ImportTableSets stores sets without touching the live roster.
func (r *Roster) ImportTableSets(ctx context.Context, sets []models.TableSet) error {
	for _, set := range sets {
		if _, err := set.Build(); err != nil {
			return err
		}
		if err := r.store.SaveSet(ctx, set); err != nil {
			return fmt.Errorf("save table set %q: %w", set.Name, err)
		}
	}
	return nil
}

func (r *Roster) ListTableSets(ctx context.Context) ([]string, error) {
	return r.store.ListSets(ctx)
}

func (r *Roster) DeleteTableSet(ctx context.Context, name string) error {
	return r.store.DeleteSet(ctx, name)
}

// Reset removes every table and the saved snapshot. Table sets are kept.
func (r *Roster) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.tables = make(map[int]*models.Table)
	r.alerts = make(map[int]*alertState)
	err := r.store.Clear(ctx)
	r.updateGaugesLocked()
	ev := event{board.EventRosterReload, RosterEvent{Tables: []models.TableView{}, Stats: r.statsLocked()}}
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	r.publish(ev)
	utils.InfoLogger.Println("Roster reset")
	return nil
}

// mutate applies fn to a copy of the table and swaps the copy in only when
// fn succeeds, so a rejected command leaves no partial state.
func (r *Roster) mutate(ctx context.Context, number int, fn func(t *models.Table) error) (*models.Table, error) {
	r.mu.Lock()
	t, ev, err := r.applyLocked(ctx, number, fn)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r.publish(ev)
	return t, nil
}

func (r *Roster) applyLocked(ctx context.Context, number int, fn func(t *models.Table) error) (*models.Table, event, error) {
	current, ok := r.tables[number]
	if !ok {
		return nil, event{}, fmt.Errorf("%w: %d", models.ErrTableNotFound, number)
	}
	work := current.Clone()
	if err := fn(work); err != nil {
		return nil, event{}, err
	}
	r.tables[number] = work
	if work.Timer == nil {
		delete(r.alerts, number)
	}
	r.persistLocked(ctx)
	ev := event{board.EventTableUpdate, TableEvent{Table: models.NewTableView(work, r.now()), Stats: r.statsLocked()}}
	return work.Clone(), ev, nil
}

func (r *Roster) persistLocked(ctx context.Context) {
	defer metrics.TrackStoreOperation("save")(time.Now())

	r.updateGaugesLocked()
	if err := r.store.Save(ctx, models.NewSnapshot(r.sortedLocked())); err != nil {
		utils.ErrorLogger.Printf("Failed to save roster snapshot: %v", err)
	}
}

func (r *Roster) publish(ev event) {
	if ev.name == "" {
		return
	}
	r.notifier.Broadcast(ev.name, ev.data)
}

func (r *Roster) sortedLocked() []*models.Table {
	out := make([]*models.Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (r *Roster) viewsLocked() []models.TableView {
	now := r.now()
	views := make([]models.TableView, 0, len(r.tables))
	for _, t := range r.sortedLocked() {
		views = append(views, models.NewTableView(t, now))
	}
	return views
}

func (r *Roster) statsLocked() models.FloorStats {
	var s models.FloorStats
	for _, t := range r.tables {
		switch t.Status {
		case models.StatusVacant:
			s.Vacant++
		case models.StatusOccupied:
			s.Occupied++
			s.Guests += t.CurrentGuests
		case models.StatusReserved:
			s.Reserved++
		}
	}
	s.Total = len(r.tables)
	return s
}

func (r *Roster) updateGaugesLocked() {
	s := r.statsLocked()
	metrics.UpdateFloor(s.Vacant, s.Occupied, s.Reserved, s.Guests)
}

// now is millisecond precision so that a saved snapshot restores exactly.
func (r *Roster) now() time.Time {
	return r.clock.Now().UTC().Truncate(time.Millisecond)
}
