package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/restaurant-seating/board"
	"github.com/yeremiapane/restaurant-seating/controllers"
	"github.com/yeremiapane/restaurant-seating/middlewares"
	"github.com/yeremiapane/restaurant-seating/services"
)

type Options struct {
	Roster *services.Roster
	Timers *services.TimerEngine
	Hub    *board.Hub
	Auth   *controllers.AuthController

	AllowedOrigin string
	// RequestsPerSecond caps API calls per client IP; zero disables the cap.
	RequestsPerSecond int
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.AllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.MetricsMiddleware())
	if opts.RequestsPerSecond > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RequestsPerSecond, 1).RateLimit())
	}

	tableCtrl := controllers.NewTableController(opts.Roster)
	timerCtrl := controllers.NewTimerController(opts.Roster, opts.Timers)
	setCtrl := controllers.NewTableSetController(opts.Roster)
	boardCtrl := controllers.NewBoardController(opts.Hub, opts.Roster, opts.AllowedOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.Auth != nil {
		login := r.Group("/")
		login.Use(middlewares.NewStrictRateLimiter(time.Minute, 5))
		login.POST("/login", opts.Auth.Login)
	}

	r.GET("/ws", boardCtrl.BoardHandler)

	// TABLES
	r.GET("/tables", tableCtrl.GetAllTables)
	r.POST("/tables", tableCtrl.CreateTable)
	r.GET("/tables/:number", tableCtrl.GetTableByNumber)
	r.PATCH("/tables/:number/status", tableCtrl.UpdateTableStatus)
	r.GET("/tables/:number/history", tableCtrl.GetTableHistory)

	// TIMERS
	r.POST("/tables/:number/timer", timerCtrl.StartTimer)
	r.PATCH("/tables/:number/timer", timerCtrl.AdjustTimer)
	r.DELETE("/tables/:number/timer", timerCtrl.ClearTimer)

	r.GET("/history", tableCtrl.GetHistory)
	r.POST("/allocations", tableCtrl.AllocateParty)
	r.GET("/stats", tableCtrl.GetDashboardStats)

	// TABLE SETS
	r.GET("/table-sets", setCtrl.ListTableSets)
	r.POST("/table-sets", setCtrl.SaveTableSet)
	r.POST("/table-sets/:name/load", setCtrl.LoadTableSet)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RoleCheck(controllers.RoleStaff))
	{
		admin.DELETE("/tables/:number", tableCtrl.DeleteTable)
		admin.DELETE("/table-sets/:name", setCtrl.DeleteTableSet)
		admin.POST("/roster/reset", setCtrl.ResetRoster)
	}

	return r
}
