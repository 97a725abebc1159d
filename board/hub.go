// Package board pushes floor events to connected display clients.
package board

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-seating/models"
	"github.com/yeremiapane/restaurant-seating/utils"
)

// Event types
const (
	EventTableCreate    = "table_create"
	EventTableUpdate    = "table_update"
	EventTableDelete    = "table_delete"
	EventRosterReload   = "roster_reload"
	EventTimerAlert     = "timer_alert"
	EventTimerRefresh   = "timer_refresh"
	EventAllocationMiss = "allocation_failed"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected display and fans messages out to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> client name
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, name string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = name
}

func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends one event to every display.
func (h *Hub) Broadcast(event string, data interface{}) {
	h.broadcast(Message{Event: event, Data: data})
}

// Alert asks every display to play the audible signal for a table.
func (h *Hub) Alert(alert models.Alert) {
	h.broadcast(Message{Event: EventTimerAlert, Data: alert})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, name := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to display %s: %v", msg.Event, name, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
