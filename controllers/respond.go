package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-seating/models"
	"github.com/yeremiapane/restaurant-seating/utils"
)

// respondServiceError maps a roster error onto an HTTP status.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, models.ErrTableNotFound), errors.Is(err, models.ErrTableSetNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, models.ErrAllocationFailed):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// tableNumber reads the :number path parameter.
func tableNumber(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("%w: %q", models.ErrInvalidTableNumber, c.Param("number")))
		return 0, false
	}
	return number, true
}
