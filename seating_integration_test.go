package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-seating/board"
	"github.com/yeremiapane/restaurant-seating/controllers"
	"github.com/yeremiapane/restaurant-seating/database"
	"github.com/yeremiapane/restaurant-seating/router"
	"github.com/yeremiapane/restaurant-seating/services"
	"github.com/yeremiapane/restaurant-seating/storage"
	"github.com/yeremiapane/restaurant-seating/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger("error")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type floor struct {
	server *httptest.Server
	hub    *board.Hub
	roster *services.Roster
	timers *services.TimerEngine
}

func openFloor(t *testing.T, store storage.Store, clock clockwork.Clock) *floor {
	t.Helper()
	hub := board.NewHub()
	roster := services.NewRoster(clock, services.DefaultRosterConfig(), store, hub)
	_, err := roster.Load(context.Background())
	require.NoError(t, err)
	timers := services.NewTimerEngine(roster, hub, hub)
	auth, err := controllers.NewAuthController("2468", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(router.SetupRouter(router.Options{
		Roster: roster, Timers: timers, Hub: hub, Auth: auth,
	}))
	t.Cleanup(srv.Close)
	return &floor{server: srv, hub: hub, roster: roster, timers: timers}
}

func (f *floor) call(t *testing.T, method, path string, body interface{}) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Less(t, resp.StatusCode, 300, "%s %s", method, path)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readEvent(t *testing.T, conn *websocket.Conn, want string) board.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg board.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Event == want {
			return msg
		}
	}
}

// TestSeatingFlow drives one evening over HTTP against a sqlite store:
// seat by allocation, receive the last-order alert on the display,
// vacate with history, then restart and find the same floor.
func TestSeatingFlow(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, "file:seating_flow?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	store := storage.NewGormStore(db)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC))

	f := openFloor(t, store, clock)
	for number, maxGuests := range map[int]int{1: 2, 2: 4, 3: 6} {
		f.call(t, "POST", "/tables", gin.H{"number": number, "max_guests": maxGuests})
	}

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?name=front"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	initial := readEvent(t, conn, board.EventRosterReload)
	assert.Len(t, initial.Data.(map[string]interface{})["tables"], 3)
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	seated := f.call(t, "POST", "/allocations", gin.H{"party_size": 3})
	assert.Equal(t, float64(2), seated["data"].(map[string]interface{})["number"])
	readEvent(t, conn, board.EventTableUpdate)

	clock.Advance(90 * time.Minute)
	f.timers.Tick()
	alert := readEvent(t, conn, board.EventTimerAlert)
	assert.Equal(t, "last_order", alert.Data.(map[string]interface{})["kind"])
	assert.Equal(t, "T2", alert.Data.(map[string]interface{})["label"])

	clock.Advance(20 * time.Minute)
	f.call(t, "PATCH", "/tables/2/status", gin.H{"status": "vacant", "save_history": true})
	f.call(t, "PATCH", "/tables/3/status", gin.H{"status": "reserved"})

	history := f.call(t, "GET", "/tables/2/history", nil)
	require.Len(t, history["data"], 1)

	// a new process on the same database sees the same floor
	restarted := openFloor(t, store, clock)
	tables := restarted.roster.List()
	require.Len(t, tables, 3)
	assert.Equal(t, "reserved", string(tables[2].Status))
	require.Len(t, tables[1].History, 1)
	assert.Equal(t, 110*time.Minute, tables[1].History[0].Duration())
	assert.Equal(t, f.roster.Stats(), restarted.roster.Stats())
}
