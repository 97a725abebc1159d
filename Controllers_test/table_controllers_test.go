package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-seating/board"
	"github.com/yeremiapane/restaurant-seating/controllers"
	"github.com/yeremiapane/restaurant-seating/router"
	"github.com/yeremiapane/restaurant-seating/services"
	"github.com/yeremiapane/restaurant-seating/storage"
	"github.com/yeremiapane/restaurant-seating/utils"
)

const testPIN = "4321"

var openedAt = time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC)

type testFloor struct {
	router *gin.Engine
	roster *services.Roster
	clock  *clockwork.FakeClock
}

// setupFloor builds the full router over an in-memory store
func setupFloor(t *testing.T) *testFloor {
	t.Helper()
	utils.InitLogger("error")
	gin.SetMode(gin.TestMode)

	clock := clockwork.NewFakeClockAt(openedAt)
	hub := board.NewHub()
	roster := services.NewRoster(clock, services.DefaultRosterConfig(), storage.NewMemoryStore(), hub)
	timers := services.NewTimerEngine(roster, hub, hub)
	auth, err := controllers.NewAuthController(testPIN, time.Hour)
	require.NoError(t, err)

	r := router.SetupRouter(router.Options{
		Roster: roster,
		Timers: timers,
		Hub:    hub,
		Auth:   auth,
	})
	return &testFloor{router: r, roster: roster, clock: clock}
}

func (f *testFloor) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func (f *testFloor) addTables(t *testing.T, caps map[int]int) {
	t.Helper()
	for number, maxGuests := range caps {
		w, _ := f.do(t, "POST", "/tables", gin.H{"number": number, "max_guests": maxGuests}, "")
		require.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestCreateAndListTables(t *testing.T) {
	f := setupFloor(t)

	w, response := f.do(t, "POST", "/tables", gin.H{"number": 3, "max_guests": 2, "is_counter": true}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Table created successfully", response["message"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "C3", data["label"])
	assert.Equal(t, "vacant", data["status"])
	assert.Equal(t, "table-vacant", data["class"])

	f.addTables(t, map[int]int{1: 4})

	w, response = f.do(t, "GET", "/tables", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "List of tables", response["message"])
	list := response["data"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, float64(1), list[0].(map[string]interface{})["number"])
	assert.Equal(t, float64(3), list[1].(map[string]interface{})["number"])
}

func TestCreateTableValidation(t *testing.T) {
	f := setupFloor(t)
	f.addTables(t, map[int]int{1: 4})

	w, _ := f.do(t, "POST", "/tables", gin.H{"number": 1, "max_guests": 2}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, "POST", "/tables", gin.H{"number": 2, "max_guests": -1}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, "POST", "/tables", gin.H{"max_guests": 2}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTableStatus(t *testing.T) {
	f := setupFloor(t)
	f.addTables(t, map[int]int{1: 4})

	w, response := f.do(t, "PATCH", "/tables/1/status", gin.H{"status": "Occupied", "guests": 3}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Table status updated", response["message"])
	table := response["data"].(map[string]interface{})["table"].(map[string]interface{})
	assert.Equal(t, "occupied", table["status"])
	assert.Equal(t, float64(3), table["current_guests"])
	assert.Equal(t, "remaining 120 min / LO 90 min", table["timer_text"])

	f.clock.Advance(50 * time.Minute)

	w, response = f.do(t, "PATCH", "/tables/1/status", gin.H{"status": "vacant", "save_history": true}, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.NotNil(t, data["history_entry"])
	table = data["table"].(map[string]interface{})
	assert.Equal(t, "", table["timer_text"])
	assert.Nil(t, table["timer"])

	w, response = f.do(t, "GET", "/tables/1/history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	entries := response["data"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, float64(3), entries[0].(map[string]interface{})["guests"])

	w, response = f.do(t, "GET", "/history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	ledger := response["data"].(map[string]interface{})
	assert.Len(t, ledger["1"], 1)
}

func TestUpdateTableStatusErrors(t *testing.T) {
	f := setupFloor(t)
	f.addTables(t, map[int]int{1: 4})

	tests := []struct {
		name string
		path string
		body gin.H
		code int
	}{
		{"unknown status", "/tables/1/status", gin.H{"status": "cleaning"}, http.StatusBadRequest},
		{"occupied without guests", "/tables/1/status", gin.H{"status": "occupied"}, http.StatusBadRequest},
		{"missing table", "/tables/99/status", gin.H{"status": "reserved"}, http.StatusNotFound},
		{"bad number", "/tables/abc/status", gin.H{"status": "reserved"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := f.do(t, "PATCH", tt.path, tt.body, "")
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, false, response["status"])
		})
	}

	w, response := f.do(t, "GET", "/tables/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vacant", response["data"].(map[string]interface{})["status"])
}

func TestTimerEndpoints(t *testing.T) {
	f := setupFloor(t)
	f.addTables(t, map[int]int{1: 4})

	w, _ := f.do(t, "POST", "/tables/1/timer", gin.H{"total_minutes": 60}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "table is not occupied")

	w, _ = f.do(t, "PATCH", "/tables/1/status", gin.H{"status": "occupied", "guests": 2}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, response := f.do(t, "POST", "/tables/1/timer", gin.H{"total_minutes": 60, "last_order_minutes": 30}, "")
	require.Equal(t, http.StatusOK, w.Code)
	timer := response["data"].(map[string]interface{})["timer"].(map[string]interface{})
	assert.Equal(t, float64(60), timer["total_minutes"])
	assert.Equal(t, float64(30), timer["last_order_minutes"])

	w, response = f.do(t, "PATCH", "/tables/1/timer", gin.H{"remaining_minutes": 15}, "")
	require.Equal(t, http.StatusOK, w.Code)
	timer = response["data"].(map[string]interface{})["timer"].(map[string]interface{})
	assert.Equal(t, float64(15), timer["remaining_minutes"])

	w, _ = f.do(t, "PATCH", "/tables/1/timer", gin.H{"remaining_minutes": -4}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = f.do(t, "DELETE", "/tables/1/timer", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, response["data"].(map[string]interface{})["timer"])

	w, _ = f.do(t, "PATCH", "/tables/1/timer", gin.H{"remaining_minutes": 10}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "no active timer")
}

func TestAllocateParty(t *testing.T) {
	f := setupFloor(t)
	f.addTables(t, map[int]int{1: 2, 2: 4, 3: 6})

	w, response := f.do(t, "POST", "/allocations", gin.H{"party_size": 2}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), response["data"].(map[string]interface{})["number"])

	w, response = f.do(t, "POST", "/allocations", gin.H{"party_size": 2}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), response["data"].(map[string]interface{})["number"])

	w, _ = f.do(t, "POST", "/allocations", gin.H{"party_size": 7}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, response = f.do(t, "GET", "/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := response["data"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["occupied"])
	assert.Equal(t, float64(1), stats["vacant"])
	assert.Equal(t, float64(4), stats["guests"])
}

func TestTableSetEndpoints(t *testing.T) {
	f := setupFloor(t)
	f.addTables(t, map[int]int{1: 2, 2: 4})

	w, _ := f.do(t, "POST", "/table-sets", gin.H{"name": "dinner"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	f.addTables(t, map[int]int{5: 8})

	w, response := f.do(t, "GET", "/table-sets", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"dinner"}, response["data"])

	w, response = f.do(t, "POST", "/table-sets/dinner/load", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	tables := response["data"].(map[string]interface{})["tables"].([]interface{})
	assert.Len(t, tables, 2)

	w, _ = f.do(t, "POST", "/table-sets/brunch/load", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireStaffToken(t *testing.T) {
	f := setupFloor(t)
	f.addTables(t, map[int]int{1: 2, 2: 4})

	w, _ := f.do(t, "DELETE", "/admin/tables/1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = f.do(t, "POST", "/login", gin.H{"pin": "0000"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, response := f.do(t, "POST", "/login", gin.H{"pin": testPIN}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := response["data"].(map[string]interface{})["token"].(string)
	require.NotEmpty(t, token)

	w, _ = f.do(t, "DELETE", "/admin/tables/1", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, "DELETE", "/admin/tables/1", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, "POST", "/admin/roster/reset", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.roster.List())

	otherRole, err := utils.GenerateToken("display", time.Hour)
	require.NoError(t, err)
	w, _ = f.do(t, "DELETE", "/admin/table-sets/dinner", nil, otherRole)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
