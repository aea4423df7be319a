package events

import (
	"time"

	"github.com/ardisetiawan/resto-seating/models"
	"github.com/ardisetiawan/resto-seating/utils"
	"github.com/go-co-op/gocron/v2"
)

// UpcomingLister biasanya *scheduler.ReservationStore.
type UpcomingLister interface {
	ListUpcoming(within time.Duration) ([]models.Reservation, error)
}

// ReservationReminder menyiarkan reservasi yang segera mulai secara berkala.
// Inti penjadwalan tidak mengirim notifikasi sendiri; reminder hanya membaca
// ListUpcoming dan menyerahkan hasilnya ke hub.
type ReservationReminder struct {
	store    UpcomingLister
	horizon  time.Duration
	interval time.Duration
	cron     gocron.Scheduler
}

func NewReservationReminder(store UpcomingLister, horizon, interval time.Duration) *ReservationReminder {
	return &ReservationReminder{
		store:    store,
		horizon:  horizon,
		interval: interval,
	}
}

func (rr *ReservationReminder) Start() error {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	if _, err := cron.NewJob(
		gocron.DurationJob(rr.interval),
		gocron.NewTask(rr.Broadcast),
	); err != nil {
		return err
	}

	cron.Start()
	rr.cron = cron
	utils.InfoLogger.Printf("Reservation reminder started (horizon %s, every %s)", rr.horizon, rr.interval)
	return nil
}

func (rr *ReservationReminder) Stop() {
	if rr.cron != nil {
		_ = rr.cron.Shutdown()
	}
}

// Broadcast mengirim satu putaran pengingat; dipanggil ticker atau test.
func (rr *ReservationReminder) Broadcast() {
	upcoming, err := rr.store.ListUpcoming(rr.horizon)
	if err != nil {
		utils.ErrorLogger.Printf("Reminder: listing upcoming reservations failed: %v", err)
		return
	}
	if len(upcoming) == 0 {
		return
	}
	BroadcastReservationReminder(upcoming)
}
