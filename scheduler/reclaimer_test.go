package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ardisetiawan/resto-seating/models"
)

func TestReclaimerReleasesIdleTable(t *testing.T) {
	sched, db := newTestScheduler(t)
	table := seedTable(t, db, "T5", 4, "Main")

	// order ditutup langsung di DB tanpa lewat OrderClosed: meja tertinggal
	// occupied tanpa order terbuka, persis kasus checkout yang terlupa
	order, err := sched.OrderOpened(table.ID, nil)
	assert.NoError(t, err)
	err = db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusClosed).Error
	assert.NoError(t, err)

	// mundurkan StatusChangedAt melewati batas okupansi (180 menit)
	err = db.Model(&models.Table{}).Where("id = ?", table.ID).
		Update("status_changed_at", time.Now().Add(-3*time.Hour-time.Minute)).Error
	assert.NoError(t, err)

	reclaimer := NewIdleReclaimer(sched, time.Minute)
	reclaimer.Sweep()

	fresh, err := sched.GetTable(table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, fresh.Status)

	// sweep kedua tidak boleh gagal atau mengubah apa pun
	reclaimer.Sweep()
	fresh, err = sched.GetTable(table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, fresh.Status)
}

func TestReclaimerSkipsTableWithOpenOrder(t *testing.T) {
	sched, db := newTestScheduler(t)
	table := seedTable(t, db, "T5", 4, "Main")

	_, err := sched.OrderOpened(table.ID, nil)
	assert.NoError(t, err)

	err = db.Model(&models.Table{}).Where("id = ?", table.ID).
		Update("status_changed_at", time.Now().Add(-4*time.Hour)).Error
	assert.NoError(t, err)

	NewIdleReclaimer(sched, time.Minute).Sweep()

	// order masih terbuka: tamu dianggap masih di meja
	fresh, err := sched.GetTable(table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusOccupied, fresh.Status)
}

func TestReclaimerRespectsMaxOccupancyCutoff(t *testing.T) {
	sched, db := newTestScheduler(t)
	table := seedTable(t, db, "T5", 4, "Main")

	order, err := sched.OrderOpened(table.ID, nil)
	assert.NoError(t, err)
	err = db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusClosed).Error
	assert.NoError(t, err)

	// baru 1 jam occupied: di bawah batas, jangan di-reclaim
	err = db.Model(&models.Table{}).Where("id = ?", table.ID).
		Update("status_changed_at", time.Now().Add(-time.Hour)).Error
	assert.NoError(t, err)

	NewIdleReclaimer(sched, time.Minute).Sweep()

	fresh, err := sched.GetTable(table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusOccupied, fresh.Status)
}

func TestReclaimerCancelsNoShow(t *testing.T) {
	sched, db := newTestScheduler(t)
	table := seedTable(t, db, "T5", 4, "Main")

	// reservasi mulai sebentar lagi: meja langsung reserved
	w := mustWindow(t, time.Now().Add(5*time.Minute), time.Hour)
	res, err := sched.Reserve(table.ID, 1, w, 2, "")
	assert.NoError(t, err)
	_, err = sched.Confirm(res.ID)
	assert.NoError(t, err)

	// mundurkan start_time melewati masa tenggang (15 menit)
	err = db.Model(&models.Reservation{}).Where("id = ?", res.ID).
		Update("start_time", time.Now().Add(-16*time.Minute)).Error
	assert.NoError(t, err)

	NewIdleReclaimer(sched, time.Minute).Sweep()

	cancelled, err := sched.GetReservation(res.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, "no-show", cancelled.CancelReason)

	fresh, err := sched.GetTable(table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, fresh.Status)
}

func TestReclaimerLeavesSeatedGuestAlone(t *testing.T) {
	sched, db := newTestScheduler(t)
	table := seedTable(t, db, "T5", 4, "Main")

	w := mustWindow(t, time.Now().Add(5*time.Minute), time.Hour)
	res, err := sched.Reserve(table.ID, 1, w, 2, "")
	assert.NoError(t, err)
	_, err = sched.Confirm(res.ID)
	assert.NoError(t, err)
	_, err = sched.Seat(res.ID)
	assert.NoError(t, err)

	// start sudah lewat tenggang, tetapi meja occupied: tamu jelas hadir
	err = db.Model(&models.Reservation{}).Where("id = ?", res.ID).
		Update("start_time", time.Now().Add(-30*time.Minute)).Error
	assert.NoError(t, err)

	NewIdleReclaimer(sched, time.Minute).Sweep()

	fresh, err := sched.GetReservation(res.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationStatusConfirmed, fresh.Status)
}

func TestReclaimerSkipsLockedTable(t *testing.T) {
	sched, db := newTestScheduler(t)
	table := seedTable(t, db, "T5", 4, "Main")

	order, err := sched.OrderOpened(table.ID, nil)
	assert.NoError(t, err)
	err = db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderStatusClosed).Error
	assert.NoError(t, err)
	err = db.Model(&models.Table{}).Where("id = ?", table.ID).
		Update("status_changed_at", time.Now().Add(-4*time.Hour)).Error
	assert.NoError(t, err)

	// kunci meja seolah-olah sedang dipegang request user
	sched.locks.Lock(table.ID)
	NewIdleReclaimer(sched, time.Minute).Sweep()
	sched.locks.Unlock(table.ID)

	fresh, err := sched.GetTable(table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusOccupied, fresh.Status)

	// setelah kunci lepas, sweep berikutnya berhasil
	NewIdleReclaimer(sched, time.Minute).Sweep()
	fresh, err = sched.GetTable(table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, fresh.Status)
}

func TestReclaimerStartAndStop(t *testing.T) {
	sched, _ := newTestScheduler(t)

	reclaimer := NewIdleReclaimer(sched, time.Hour)
	assert.NoError(t, reclaimer.Start())
	reclaimer.Stop()

	// Stop tanpa Start tidak boleh panic
	NewIdleReclaimer(sched, time.Hour).Stop()
}
