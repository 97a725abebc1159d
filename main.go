package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-seating/board"
	"github.com/yeremiapane/restaurant-seating/config"
	"github.com/yeremiapane/restaurant-seating/controllers"
	"github.com/yeremiapane/restaurant-seating/metrics"
	"github.com/yeremiapane/restaurant-seating/router"
	"github.com/yeremiapane/restaurant-seating/services"
	"github.com/yeremiapane/restaurant-seating/utils"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel)
	if envErr != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}
	if err := cfg.Validate(); err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.SetJWTSecret(cfg.JWTSecret)
	metrics.InitMetrics(cfg.MetricsPrefix)

	ctx := context.Background()
	store, closeStore, err := config.InitStore(ctx, cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	hub := board.NewHub()
	roster := services.NewRoster(clockwork.NewRealClock(), services.RosterConfig{
		TotalMinutes:     cfg.TimerTotalMinutes,
		LastOrderMinutes: cfg.TimerLastOrderMinutes,
		AutoStartTimer:   cfg.AutoStartTimer,
	}, store, hub)

	if _, err := roster.Load(ctx); err != nil {
		utils.ErrorLogger.Fatalf("Failed to load roster: %v", err)
	}
	seedLayout(ctx, cfg, roster)

	timers := services.NewTimerEngine(roster, hub, hub)
	timers.Interval = cfg.TickInterval
	timers.Tolerance = cfg.AlertTolerance
	timers.Start()
	defer timers.Stop()

	auth, err := controllers.NewAuthController(cfg.StaffPIN, cfg.TokenTTL)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up staff login: %v", err)
	}

	r := router.SetupRouter(router.Options{
		Roster:            roster,
		Timers:            timers,
		Hub:               hub,
		Auth:              auth,
		AllowedOrigin:     cfg.AllowedOrigin,
		RequestsPerSecond: 50,
	})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

// seedLayout stores every set of the layout file and applies the default
// one when the roster is still empty.
func seedLayout(ctx context.Context, cfg *config.Config, roster *services.Roster) {
	if cfg.LayoutFile == "" {
		return
	}
	layout, err := config.LoadLayout(cfg.LayoutFile)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to read layout %s: %v", cfg.LayoutFile, err)
	}

	if err := roster.ImportTableSets(ctx, layout.Sets); err != nil {
		utils.ErrorLogger.Printf("Failed to store table sets from layout: %v", err)
	}

	set, ok := layout.Set(layout.Default)
	if !ok {
		return
	}
	seeded, err := roster.Seed(ctx, set)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed roster from %q: %v", set.Name, err)
	}
	if seeded {
		utils.InfoLogger.Printf("Empty roster seeded from layout %q", set.Name)
	}
}
