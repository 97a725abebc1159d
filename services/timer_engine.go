package services

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/yeremiapane/restaurant-seating/board"
	"github.com/yeremiapane/restaurant-seating/metrics"
	"github.com/yeremiapane/restaurant-seating/models"
	"github.com/yeremiapane/restaurant-seating/utils"
)

const (
	DefaultTickInterval   = time.Second
	DefaultAlertTolerance = time.Second
)

// alertState remembers which thresholds already fired for one countdown.
// A restarted countdown (new start or adjust) gets a fresh state.
type alertState struct {
	startedAt time.Time
	total     time.Duration
	lastOrder bool
	end       bool
}

func (s *alertState) sameCycle(tm *models.Timer) bool {
	return s.startedAt.Equal(tm.StartedAt) && s.total == tm.TotalDuration
}

// TickResult is what one evaluation of all running timers produced.
type TickResult struct {
	At       time.Time
	Alerts   []models.Alert
	Displays map[int]string
}

// TimerEngine drives the table countdowns. One ticker evaluates every table
// under the roster lock, so a table deleted between ticks is never visited.
type TimerEngine struct {
	roster    *Roster
	clock     clockwork.Clock
	alerter   Alerter
	notifier  Notifier
	Interval  time.Duration
	Tolerance time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

func NewTimerEngine(roster *Roster, alerter Alerter, notifier Notifier) *TimerEngine {
	if alerter == nil {
		alerter = nopNotifier{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &TimerEngine{
		roster:    roster,
		clock:     roster.clock,
		alerter:   alerter,
		notifier:  notifier,
		Interval:  DefaultTickInterval,
		Tolerance: DefaultAlertTolerance,
	}
}

// StartTimer starts a fresh countdown on an occupied table, replacing any
// running one. Zero minutes fall back to the roster defaults.
func (e *TimerEngine) StartTimer(ctx context.Context, number, totalMinutes, lastOrderMinutes int) (*models.Table, error) {
	cfg := e.roster.Config()
	if totalMinutes == 0 {
		totalMinutes = cfg.TotalMinutes
	}
	if lastOrderMinutes == 0 {
		lastOrderMinutes = cfg.LastOrderMinutes
	}

	t, err := e.roster.mutate(ctx, number, func(t *models.Table) error {
		return t.StartTimer(e.roster.now(), totalMinutes, lastOrderMinutes)
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Timer started for table %d: %d min, last order at %d min", number, totalMinutes, lastOrderMinutes)
	return t, nil
}

// AdjustRemaining restarts the running countdown of a table so that minutes
// remain from now.
func (e *TimerEngine) AdjustRemaining(ctx context.Context, number, minutes int) (*models.Table, error) {
	t, err := e.roster.mutate(ctx, number, func(t *models.Table) error {
		return t.AdjustRemaining(e.roster.now(), minutes)
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Timer of table %d adjusted to %d min remaining", number, minutes)
	return t, nil
}

// ClearTimer stops the countdown of a table. Clearing a table without a
// timer is a no-op.
func (e *TimerEngine) ClearTimer(ctx context.Context, number int) (*models.Table, error) {
	t, err := e.roster.mutate(ctx, number, func(t *models.Table) error {
		t.ClearTimer()
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Timer cleared for table %d", number)
	return t, nil
}

// Tick evaluates every running countdown once, plays the alerts that came
// due and pushes the refreshed timer texts to the displays.
func (e *TimerEngine) Tick() TickResult {
	res := e.roster.evaluateTimers(e.clock.Now(), e.Tolerance)
	for _, alert := range res.Alerts {
		utils.InfoLogger.Printf("Timer alert %s for table %d", alert.Kind, alert.TableNumber)
		metrics.RecordAlert(string(alert.Kind))
		e.alerter.Alert(alert)
	}
	if len(res.Displays) > 0 {
		e.notifier.Broadcast(board.EventTimerRefresh, res.Displays)
	}
	return res
}

// Start runs Tick on every interval until Stop is called.
func (e *TimerEngine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopChan != nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	e.stopChan, e.done = stop, done

	ticker := e.clock.NewTicker(e.Interval)
	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				e.Tick()
			case <-stop:
				return
			}
		}
	}()
	utils.InfoLogger.Printf("Timer engine started (interval=%s)", e.Interval)
}

// Stop ends the tick loop and waits for an in-flight tick to finish.
func (e *TimerEngine) Stop() {
	e.mu.Lock()
	stop, done := e.stopChan, e.done
	e.stopChan, e.done = nil, nil
	e.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	utils.InfoLogger.Println("Timer engine stopped")
}

// evaluateTimers checks both thresholds of every running countdown against
// now. A threshold fires when now is within tolerance of it, once per
// countdown cycle.
func (r *Roster) evaluateTimers(now time.Time, tolerance time.Duration) TickResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := TickResult{At: now, Displays: make(map[int]string)}
	for _, t := range r.sortedLocked() {
		if t.Timer == nil {
			delete(r.alerts, t.Number)
			continue
		}
		res.Displays[t.Number] = t.Timer.Display(now)

		state, ok := r.alerts[t.Number]
		if !ok || !state.sameCycle(t.Timer) {
			state = &alertState{startedAt: t.Timer.StartedAt, total: t.Timer.TotalDuration}
			r.alerts[t.Number] = state
		}
		if !state.lastOrder && within(t.Timer.TimeToLastOrder(now), tolerance) {
			state.lastOrder = true
			res.Alerts = append(res.Alerts, models.Alert{
				TableNumber: t.Number, Label: t.Label(), Kind: models.AlertLastOrder, At: now,
			})
		}
		if !state.end && within(t.Timer.TimeToEnd(now), tolerance) {
			state.end = true
			res.Alerts = append(res.Alerts, models.Alert{
				TableNumber: t.Number, Label: t.Label(), Kind: models.AlertTableEnd, At: now,
			})
		}
	}
	for number := range r.alerts {
		if _, ok := r.tables[number]; !ok {
			delete(r.alerts, number)
		}
	}
	return res
}

func within(d, tolerance time.Duration) bool {
	return d >= -tolerance && d <= tolerance
}
