package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/ardisetiawan/resto-seating/config"
	"github.com/ardisetiawan/resto-seating/events"
	"github.com/ardisetiawan/resto-seating/models"
	"github.com/ardisetiawan/resto-seating/router"
	"github.com/ardisetiawan/resto-seating/scheduler"
	"github.com/ardisetiawan/resto-seating/utils"
	"gorm.io/gorm"
)

func main() {
	// Load .env sebelum apa pun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	settings := config.LoadSettings()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)
	autoMigrate(db)

	// Inti penjadwalan: satu-satunya jalur mutasi state meja/reservasi
	sched := scheduler.NewAvailabilityScheduler(db, settings.SchedulerPolicy())

	// Sweep reclaim meja terbengkalai + reservasi no-show
	reclaimer := scheduler.NewIdleReclaimer(sched, settings.ReclaimInterval())
	if err := reclaimer.Start(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to start idle reclaimer: %v", err)
	}
	defer reclaimer.Stop()

	// Pengingat reservasi yang segera mulai untuk modul notifikasi
	reminder := events.NewReservationReminder(sched.Reservations(),
		settings.ReminderHorizon(), settings.ReminderInterval())
	if err := reminder.Start(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to start reservation reminder: %v", err)
	}
	defer reminder.Stop()

	r := router.SetupRouter(db, sched)

	utils.InfoLogger.Printf("Listening on port %s", settings.Port)
	if err := r.Run(":" + settings.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Reservation{},
		&models.Order{},
		&models.CleaningLog{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
