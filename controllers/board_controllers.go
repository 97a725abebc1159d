package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-seating/board"
	"github.com/yeremiapane/restaurant-seating/services"
	"github.com/yeremiapane/restaurant-seating/utils"
)

type BoardController struct {
	Hub      *board.Hub
	Roster   *services.Roster
	upgrader websocket.Upgrader
}

// NewBoardController accepts display connections from allowedOrigin, or from
// anywhere when it is "*".
func NewBoardController(hub *board.Hub, roster *services.Roster, allowedOrigin string) *BoardController {
	return &BoardController{
		Hub:    hub,
		Roster: roster,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// BoardHandler -> websocket endpoint for floor displays
func (bc *BoardController) BoardHandler(c *gin.Context) {
	ws, err := bc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	name := c.Query("name")
	if name == "" {
		name = c.ClientIP()
	}

	// the new display starts from the full floor
	initial := board.Message{
		Event: board.EventRosterReload,
		Data:  services.RosterEvent{Tables: bc.Roster.Views(), Stats: bc.Roster.Stats()},
	}
	if err := ws.WriteJSON(initial); err != nil {
		ws.Close()
		return
	}

	bc.Hub.RegisterClient(ws, name)
	utils.InfoLogger.Printf("Display %s connected (%d online)", name, bc.Hub.ClientCount())

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	bc.Hub.UnregisterClient(ws)
	utils.InfoLogger.Printf("Display %s disconnected", name)
}
