package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-seating/models"
	"github.com/yeremiapane/restaurant-seating/storage"
	"github.com/yeremiapane/restaurant-seating/utils"
)

var openedAt = time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC)

// recorder captures broadcasts and alerts.
type recorder struct {
	mu     sync.Mutex
	events []string
	alerts []models.Alert
}

func (r *recorder) Broadcast(event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Alert(alert models.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Alerts() []models.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Alert(nil), r.alerts...)
}

// brokenStore fails every write.
type brokenStore struct {
	*storage.KVSnapshotStore
}

func (brokenStore) Save(context.Context, models.Snapshot) error {
	return errors.New("disk full")
}

func newTestRoster(t *testing.T, numbers ...[2]int) (*Roster, *clockwork.FakeClock, *recorder) {
	t.Helper()
	utils.InitLogger("error")

	clock := clockwork.NewFakeClockAt(openedAt)
	rec := &recorder{}
	r := NewRoster(clock, DefaultRosterConfig(), storage.NewMemoryStore(), rec)
	for _, n := range numbers {
		_, err := r.Add(context.Background(), n[0], n[1], false)
		require.NoError(t, err)
	}
	return r, clock, rec
}
