package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-seating/services"
	"github.com/yeremiapane/restaurant-seating/utils"
)

type TimerController struct {
	Roster *services.Roster
	Timers *services.TimerEngine
}

func NewTimerController(roster *services.Roster, timers *services.TimerEngine) *TimerController {
	return &TimerController{Roster: roster, Timers: timers}
}

// StartTimer -> start a countdown; omitted minutes use the configured defaults
func (tc *TimerController) StartTimer(c *gin.Context) {
	number, ok := tableNumber(c)
	if !ok {
		return
	}
	var body struct {
		TotalMinutes     int `json:"total_minutes"`
		LastOrderMinutes int `json:"last_order_minutes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	table, err := tc.Timers.StartTimer(c.Request.Context(), number, body.TotalMinutes, body.LastOrderMinutes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Timer started", tc.Roster.NewView(table))
}

func (tc *TimerController) AdjustTimer(c *gin.Context) {
	number, ok := tableNumber(c)
	if !ok {
		return
	}
	var body struct {
		RemainingMinutes int `json:"remaining_minutes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Timers.AdjustRemaining(c.Request.Context(), number, body.RemainingMinutes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Timer adjusted", tc.Roster.NewView(table))
}

func (tc *TimerController) ClearTimer(c *gin.Context) {
	number, ok := tableNumber(c)
	if !ok {
		return
	}
	table, err := tc.Timers.ClearTimer(c.Request.Context(), number)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Timer cleared", tc.Roster.NewView(table))
}
