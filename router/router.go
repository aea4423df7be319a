package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ardisetiawan/resto-seating/controllers"
	"github.com/ardisetiawan/resto-seating/middlewares"
	"github.com/ardisetiawan/resto-seating/scheduler"
)

func SetupRouter(db *gorm.DB, sched *scheduler.AvailabilityScheduler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(sched)
	reservationCtrl := controllers.NewReservationController(sched)
	orderCtrl := controllers.NewOrderController(sched)
	cleanLogCtrl := controllers.NewCleaningLogController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Pencarian ketersediaan boleh tanpa login (layar pemesanan tamu)
	r.GET("/availability", tableCtrl.FindAvailable)
	r.GET("/reservations/:reservation_id", reservationCtrl.GetReservation)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.POST("/tables", middlewares.RequireRole(), tableCtrl.CreateTable)
	auth.POST("/tables/:table_id/release", middlewares.RequireRole("staff"), tableCtrl.ReleaseTable)
	auth.POST("/tables/:table_id/maintenance", middlewares.RequireRole(), tableCtrl.SetMaintenance)
	auth.DELETE("/tables/:table_id/maintenance", middlewares.RequireRole(), tableCtrl.ClearMaintenance)
	auth.POST("/tables/:table_id/clean", middlewares.RequireRole("staff", "cleaner"), tableCtrl.RegisterCleaning)
	auth.PATCH("/tables/:table_id/disable", middlewares.RequireRole(), tableCtrl.DisableTable)
	auth.GET("/tables/:table_id/reservations", reservationCtrl.ListByTable)

	// RESERVATIONS
	auth.POST("/reservations", middlewares.RequireRole("staff"), reservationCtrl.CreateReservation)
	auth.GET("/reservations", reservationCtrl.ListUpcoming)
	auth.POST("/reservations/:reservation_id/confirm", middlewares.RequireRole("staff"), reservationCtrl.ConfirmReservation)
	auth.POST("/reservations/:reservation_id/seat", middlewares.RequireRole("staff"), reservationCtrl.SeatReservation)
	auth.POST("/reservations/:reservation_id/cancel", middlewares.RequireRole("staff"), reservationCtrl.CancelReservation)

	// ORDER HOOKS (modul order memberi tahu scheduler)
	auth.POST("/orders", middlewares.RequireRole("staff"), orderCtrl.OpenOrder)
	auth.POST("/orders/:order_id/close", middlewares.RequireRole("staff"), orderCtrl.CloseOrder)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)

	// CLEANING LOGS
	auth.GET("/cleaning-logs", cleanLogCtrl.GetAllCleaningLogs)
	auth.GET("/cleaning-logs/:clean_id", cleanLogCtrl.GetCleaningLogByID)

	// WebSocket event feed
	auth.GET("/ws/events", controllers.EventsHandler)

	return r
}
