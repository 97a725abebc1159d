package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-seating/board"
	"github.com/yeremiapane/restaurant-seating/models"
)

func TestTimerEngineAlertsOncePerCycle(t *testing.T) {
	r, clock, rec := newTestRoster(t, [2]int{4, 4})
	engine := NewTimerEngine(r, rec, rec)
	ctx := context.Background()

	_, _, err := r.SetStatus(ctx, 4, models.StatusOccupied, 2, false)
	require.NoError(t, err)

	clock.Advance(89 * time.Minute)
	assert.Empty(t, engine.Tick().Alerts)

	clock.Advance(time.Minute)
	res := engine.Tick()
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, models.AlertLastOrder, res.Alerts[0].Kind)
	assert.Equal(t, "T4", res.Alerts[0].Label)

	// a second tick inside the tolerance window must not repeat it
	clock.Advance(500 * time.Millisecond)
	assert.Empty(t, engine.Tick().Alerts)

	clock.Advance(30*time.Minute - 500*time.Millisecond)
	res = engine.Tick()
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, models.AlertTableEnd, res.Alerts[0].Kind)

	clock.Advance(time.Second)
	res = engine.Tick()
	assert.Empty(t, res.Alerts)
	assert.Equal(t, models.TextOvertime, res.Displays[4])

	assert.Len(t, rec.Alerts(), 2)
	assert.Contains(t, rec.Events(), board.EventTimerRefresh)
}

func TestTimerEngineDisplayRoundsUp(t *testing.T) {
	r, clock, rec := newTestRoster(t, [2]int{1, 2})
	engine := NewTimerEngine(r, rec, rec)

	_, _, err := r.SetStatus(context.Background(), 1, models.StatusOccupied, 2, false)
	require.NoError(t, err)

	clock.Advance(119 * time.Minute)
	assert.Contains(t, engine.Tick().Displays[1], "remaining 1 min")

	clock.Advance(30 * time.Second)
	assert.Contains(t, engine.Tick().Displays[1], "remaining 1 min")

	view, err := r.View(1)
	require.NoError(t, err)
	require.NotNil(t, view.Timer)
	assert.Equal(t, 1, view.Timer.RemainingMinutes)
}

func TestTimerEngineAdjustStartsNewCycle(t *testing.T) {
	r, clock, rec := newTestRoster(t, [2]int{1, 4})
	engine := NewTimerEngine(r, rec, rec)
	ctx := context.Background()

	_, _, err := r.SetStatus(ctx, 1, models.StatusOccupied, 3, false)
	require.NoError(t, err)

	clock.Advance(90 * time.Minute)
	require.Len(t, engine.Tick().Alerts, 1)

	table, err := engine.AdjustRemaining(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Minute, table.Timer.TimeToEnd(clock.Now()))

	clock.Advance(90 * time.Minute)
	res := engine.Tick()
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, models.AlertLastOrder, res.Alerts[0].Kind)
}

func TestTimerEngineCommands(t *testing.T) {
	r, clock, rec := newTestRoster(t, [2]int{1, 4}, [2]int{2, 4})
	engine := NewTimerEngine(r, rec, rec)
	ctx := context.Background()

	_, err := engine.StartTimer(ctx, 1, 60, 45)
	assert.ErrorIs(t, err, models.ErrTableNotOccupied)

	_, _, err = r.SetStatus(ctx, 1, models.StatusOccupied, 2, false)
	require.NoError(t, err)

	table, err := engine.StartTimer(ctx, 1, 60, 45)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, table.Timer.TotalDuration)
	assert.Equal(t, 45*time.Minute, table.Timer.LastOrderOffset)

	_, err = engine.StartTimer(ctx, 1, -5, 45)
	assert.ErrorIs(t, err, models.ErrInvalidMinutes)
	_, err = engine.AdjustRemaining(ctx, 1, 0)
	assert.ErrorIs(t, err, models.ErrInvalidMinutes)

	table, err = engine.ClearTimer(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, table.Timer)
	assert.Equal(t, models.StatusOccupied, table.Status)

	_, err = engine.AdjustRemaining(ctx, 1, 10)
	assert.ErrorIs(t, err, models.ErrNoActiveTimer)

	_, err = engine.StartTimer(ctx, 9, 60, 45)
	assert.ErrorIs(t, err, models.ErrTableNotFound)

	clock.Advance(2 * time.Hour)
	assert.Empty(t, engine.Tick().Alerts)
}

func TestTimerEngineLoop(t *testing.T) {
	r, clock, rec := newTestRoster(t, [2]int{1, 4})
	engine := NewTimerEngine(r, rec, rec)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _, err := r.SetStatus(ctx, 1, models.StatusOccupied, 2, false)
	require.NoError(t, err)

	engine.Start()
	defer engine.Stop()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(90 * time.Minute)
	require.Eventually(t, func() bool {
		return len(rec.Alerts()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, models.AlertLastOrder, rec.Alerts()[0].Kind)
}
