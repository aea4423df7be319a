package scheduler

import (
	"errors"
	"time"

	"github.com/ardisetiawan/resto-seating/events"
	"github.com/ardisetiawan/resto-seating/models"
	"github.com/ardisetiawan/resto-seating/utils"
	"github.com/go-co-op/gocron/v2"
)

// IdleReclaimer menyamakan registry dengan kenyataan di lantai: meja yang
// ditinggal tanpa checkout dilepas paksa dan reservasi tanpa check-in
// dibatalkan sebagai no-show. Semua mutasi tetap lewat AvailabilityScheduler
// (TryRelease/TryCancel) supaya jalur mutasi tunggal terjaga; kegagalan per
// meja dicatat lalu sweep lanjut ke meja berikutnya.
type IdleReclaimer struct {
	sched    *AvailabilityScheduler
	interval time.Duration
	cron     gocron.Scheduler
}

func NewIdleReclaimer(sched *AvailabilityScheduler, interval time.Duration) *IdleReclaimer {
	return &IdleReclaimer{
		sched:    sched,
		interval: interval,
	}
}

// Start menjadwalkan sweep berkala di background.
func (ir *IdleReclaimer) Start() error {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	if _, err := cron.NewJob(
		gocron.DurationJob(ir.interval),
		gocron.NewTask(ir.Sweep),
	); err != nil {
		return err
	}

	cron.Start()
	ir.cron = cron
	utils.InfoLogger.Printf("Idle reclaimer started (interval %s)", ir.interval)
	return nil
}

func (ir *IdleReclaimer) Stop() {
	if ir.cron != nil {
		_ = ir.cron.Shutdown()
	}
}

// Sweep menjalankan satu putaran reclaim. Diekspos supaya bisa dipanggil
// langsung dari test tanpa menunggu ticker.
func (ir *IdleReclaimer) Sweep() {
	ir.reclaimIdleTables()
	ir.cancelNoShows()
}

// reclaimIdleTables melepas meja occupied yang melewati batas okupansi dan
// tidak punya order terbuka (checkout yang terlupa).
func (ir *IdleReclaimer) reclaimIdleTables() {
	occupied, err := ir.sched.Tables().ListByStatus(models.TableStatusOccupied)
	if err != nil {
		utils.ErrorLogger.Printf("Reclaimer: listing occupied tables failed: %v", err)
		return
	}

	cutoff := time.Now().Add(-ir.sched.Policy().MaxOccupancy)
	for _, t := range occupied {
		if t.StatusChangedAt.After(cutoff) {
			continue
		}

		open, err := ir.sched.HasOpenOrder(t.ID)
		if err != nil {
			utils.ErrorLogger.Printf("Reclaimer: open-order check for table %d failed: %v", t.ID, err)
			continue
		}
		if open {
			continue
		}

		released, err := ir.sched.TryRelease(t.ID)
		if err != nil {
			if errors.Is(err, ErrTableBusy) {
				// meja sedang dipakai request user; coba lagi siklus depan
				continue
			}
			utils.ErrorLogger.Printf("Reclaimer: releasing table %d failed: %v", t.ID, err)
			continue
		}
		events.BroadcastTableReclaimed(*released)
		utils.InfoLogger.Printf("Reclaimer: table %d reclaimed after idle occupancy", t.ID)
	}
}

// cancelNoShows membatalkan reservasi aktif yang lewat masa tenggang tanpa
// check-in. Meja yang reserved karena reservasi itu ikut kembali free lewat
// jalur Cancel.
func (ir *IdleReclaimer) cancelNoShows() {
	overdue, err := ir.sched.Reservations().ListOverdue(ir.sched.Policy().NoShowGrace)
	if err != nil {
		utils.ErrorLogger.Printf("Reclaimer: listing overdue reservations failed: %v", err)
		return
	}

	for _, r := range overdue {
		table, err := ir.sched.Tables().Get(r.TableID)
		if err != nil {
			utils.ErrorLogger.Printf("Reclaimer: loading table %d failed: %v", r.TableID, err)
			continue
		}
		// meja occupied berarti tamunya sudah duduk; bukan no-show
		if table.Status == models.TableStatusOccupied {
			continue
		}

		cancelled, err := ir.sched.TryCancel(r.ID, "no-show")
		if err != nil {
			if errors.Is(err, ErrTableBusy) {
				continue
			}
			utils.ErrorLogger.Printf("Reclaimer: cancelling reservation %d failed: %v", r.ID, err)
			continue
		}
		events.BroadcastReservationUpdate(*cancelled)
		utils.InfoLogger.Printf("Reclaimer: reservation %d cancelled as no-show", r.ID)
	}
}
