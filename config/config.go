package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ardisetiawan/resto-seating/scheduler"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitDB membuka koneksi MySQL dari environment.
func InitDB() (*gorm.DB, error) {
	user := getEnv("DB_USER", "root")
	pass := getEnv("DB_PASS", "")
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "3306")
	name := getEnv("DB_NAME", "resto_seating")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, name)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// Settings menampung kebijakan penjadwalan dari environment. Dibaca sekali
// saat startup; ganti nilai berarti restart proses.
type Settings struct {
	Port                    string
	MinReservationMinutes   int
	MaxReservationMinutes   int
	AdvanceBookingDays      int
	ImmediateEffectMinutes  int
	WalkInDurationMinutes   int
	MaxOccupancyMinutes     int
	NoShowGraceMinutes      int
	ReclaimIntervalSeconds  int
	ReminderHorizonMinutes  int
	ReminderIntervalSeconds int
}

func LoadSettings() Settings {
	return Settings{
		Port:                    getEnv("PORT", "8080"),
		MinReservationMinutes:   getEnvInt("RESERVATION_MIN_DURATION_MINUTES", 30),
		MaxReservationMinutes:   getEnvInt("RESERVATION_MAX_DURATION_MINUTES", 480),
		AdvanceBookingDays:      getEnvInt("ADVANCE_BOOKING_DAYS", 30),
		ImmediateEffectMinutes:  getEnvInt("IMMEDIATE_EFFECT_MINUTES", 15),
		WalkInDurationMinutes:   getEnvInt("WALKIN_DURATION_MINUTES", 90),
		MaxOccupancyMinutes:     getEnvInt("MAX_OCCUPANCY_MINUTES", 180),
		NoShowGraceMinutes:      getEnvInt("NO_SHOW_GRACE_MINUTES", 15),
		ReclaimIntervalSeconds:  getEnvInt("RECLAIM_INTERVAL_SECONDS", 60),
		ReminderHorizonMinutes:  getEnvInt("REMINDER_HORIZON_MINUTES", 60),
		ReminderIntervalSeconds: getEnvInt("REMINDER_INTERVAL_SECONDS", 300),
	}
}

// SchedulerPolicy menerjemahkan settings ke policy inti penjadwalan.
func (s Settings) SchedulerPolicy() scheduler.Policy {
	return scheduler.Policy{
		MinReservationDuration: time.Duration(s.MinReservationMinutes) * time.Minute,
		MaxReservationDuration: time.Duration(s.MaxReservationMinutes) * time.Minute,
		AdvanceBookingWindow:   time.Duration(s.AdvanceBookingDays) * 24 * time.Hour,
		ImmediateEffectWindow:  time.Duration(s.ImmediateEffectMinutes) * time.Minute,
		WalkInDuration:         time.Duration(s.WalkInDurationMinutes) * time.Minute,
		MaxOccupancy:           time.Duration(s.MaxOccupancyMinutes) * time.Minute,
		NoShowGrace:            time.Duration(s.NoShowGraceMinutes) * time.Minute,
	}
}

func (s Settings) ReclaimInterval() time.Duration {
	return time.Duration(s.ReclaimIntervalSeconds) * time.Second
}

func (s Settings) ReminderHorizon() time.Duration {
	return time.Duration(s.ReminderHorizonMinutes) * time.Minute
}

func (s Settings) ReminderInterval() time.Duration {
	return time.Duration(s.ReminderIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
