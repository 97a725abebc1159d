package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-seating/services"
	"github.com/yeremiapane/restaurant-seating/utils"
)

type TableSetController struct {
	Roster *services.Roster
}

func NewTableSetController(roster *services.Roster) *TableSetController {
	return &TableSetController{Roster: roster}
}

func (sc *TableSetController) ListTableSets(c *gin.Context) {
	names, err := sc.Roster.ListTableSets(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of table sets", names)
}

// SaveTableSet -> store the current floor layout under a name
func (sc *TableSetController) SaveTableSet(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	set, err := sc.Roster.SaveTableSet(c.Request.Context(), body.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table set saved", set)
}

// LoadTableSet -> replace the floor with fresh vacant tables from a set
func (sc *TableSetController) LoadTableSet(c *gin.Context) {
	set, err := sc.Roster.LoadTableSet(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table set loaded", gin.H{
		"name":   set.Name,
		"tables": sc.Roster.Views(),
	})
}

func (sc *TableSetController) DeleteTableSet(c *gin.Context) {
	name := c.Param("name")
	if err := sc.Roster.DeleteTableSet(c.Request.Context(), name); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table set deleted", gin.H{"name": name})
}

// ResetRoster -> remove every table and the saved floor state
func (sc *TableSetController) ResetRoster(c *gin.Context) {
	if err := sc.Roster.Reset(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Roster reset", nil)
}
