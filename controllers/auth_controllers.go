package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-seating/utils"
	"golang.org/x/crypto/bcrypt"
)

const RoleStaff = "staff"

var errInvalidPIN = errors.New("invalid credentials")

// AuthController exchanges the staff PIN for a bearer token. Only the bcrypt
// hash of the PIN is kept in memory.
type AuthController struct {
	pinHash  []byte
	TokenTTL time.Duration
}

func NewAuthController(pin string, ttl time.Duration) (*AuthController, error) {
	ac := &AuthController{TokenTTL: ttl}
	if pin == "" {
		utils.InfoLogger.Warn("STAFF_PIN not set, staff login disabled")
		return ac, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	ac.pinHash = hash
	return ac, nil
}

// Login -> return JWT for the staff role
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		PIN string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if ac.pinHash == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("staff login is disabled"))
		return
	}
	if err := bcrypt.CompareHashAndPassword(ac.pinHash, []byte(input.PIN)); err != nil {
		utils.InfoLogger.Printf("Failed staff login from %s", c.ClientIP())
		utils.RespondError(c, http.StatusUnauthorized, errInvalidPIN)
		return
	}

	token, err := utils.GenerateToken(RoleStaff, ac.TokenTTL)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Staff login from %s", c.ClientIP())
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"role":       RoleStaff,
		"expires_in": int(ac.TokenTTL.Seconds()),
	})
}
