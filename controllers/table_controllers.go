package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-seating/models"
	"github.com/yeremiapane/restaurant-seating/services"
	"github.com/yeremiapane/restaurant-seating/utils"
)

type TableController struct {
	Roster *services.Roster
}

func NewTableController(roster *services.Roster) *TableController {
	return &TableController{Roster: roster}
}

// CreateTable -> add a vacant table to the floor
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Number    int  `json:"number" binding:"required"`
		MaxGuests int  `json:"max_guests" binding:"required"`
		IsCounter bool `json:"is_counter"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Roster.Add(c.Request.Context(), req.Number, req.MaxGuests, req.IsCounter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", tc.Roster.NewView(table))
}

// GetAllTables -> every table ordered by number
func (tc *TableController) GetAllTables(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of tables", tc.Roster.Views())
}

func (tc *TableController) GetTableByNumber(c *gin.Context) {
	number, ok := tableNumber(c)
	if !ok {
		return
	}
	view, err := tc.Roster.View(number)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", view)
}

// UpdateTableStatus -> run the status transition. save_history answers
// whether a finished session goes into the history.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	number, ok := tableNumber(c)
	if !ok {
		return
	}
	var body struct {
		Status      string `json:"status" binding:"required"`
		Guests      int    `json:"guests"`
		SaveHistory bool   `json:"save_history"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	status, err := models.ParseStatus(body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tr, table, err := tc.Roster.SetStatus(c.Request.Context(), number, status, body.Guests, body.SaveHistory)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status updated", gin.H{
		"table":         tc.Roster.NewView(table),
		"from":          tr.From,
		"history_entry": tr.Entry,
	})
}

// DeleteTable -> remove a table together with its timer and history
func (tc *TableController) DeleteTable(c *gin.Context) {
	number, ok := tableNumber(c)
	if !ok {
		return
	}
	if err := tc.Roster.Delete(c.Request.Context(), number); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"number": number})
}

func (tc *TableController) GetTableHistory(c *gin.Context) {
	number, ok := tableNumber(c)
	if !ok {
		return
	}
	history, err := tc.Roster.History(number)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table history", history)
}

// GetHistory -> the ledger of every table keyed by number
func (tc *TableController) GetHistory(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "History ledger", tc.Roster.Ledger())
}

// AllocateParty -> seat a party at the smallest vacant table that fits
func (tc *TableController) AllocateParty(c *gin.Context) {
	var body struct {
		PartySize int `json:"party_size" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	_, table, err := tc.Roster.Allocate(c.Request.Context(), body.PartySize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Party seated", tc.Roster.NewView(table))
}

func (tc *TableController) GetDashboardStats(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Floor stats", tc.Roster.Stats())
}
