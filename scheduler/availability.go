package scheduler

import (
	"time"

	"github.com/ardisetiawan/resto-seating/models"
	"github.com/ardisetiawan/resto-seating/utils"
	"gorm.io/gorm"
)

// Policy berisi konstanta kebijakan penjadwalan. Nilai diisi sekali saat
// startup (lihat package config) dan dianggap immutable selama proses hidup.
type Policy struct {
	MinReservationDuration time.Duration // durasi reservasi terpendek
	MaxReservationDuration time.Duration // durasi reservasi terpanjang
	AdvanceBookingWindow   time.Duration // seberapa jauh ke depan boleh booking
	ImmediateEffectWindow  time.Duration // reservasi mulai <= ini: meja langsung reserved
	WalkInDuration         time.Duration // estimasi lama okupansi walk-in
	MaxOccupancy           time.Duration // batas okupansi sebelum reclaim paksa
	NoShowGrace            time.Duration // tenggang check-in sebelum no-show
}

func DefaultPolicy() Policy {
	return Policy{
		MinReservationDuration: 30 * time.Minute,
		MaxReservationDuration: 480 * time.Minute,
		AdvanceBookingWindow:   30 * 24 * time.Hour,
		ImmediateEffectWindow:  15 * time.Minute,
		WalkInDuration:         90 * time.Minute,
		MaxOccupancy:           180 * time.Minute,
		NoShowGrace:            15 * time.Minute,
	}
}

// AvailabilityScheduler adalah inti orkestrasi: SATU-SATUNYA jalur mutasi
// state meja dan reservasi, sehingga invariannya ditegakkan di satu titik.
// Setiap operasi inspect-and-commit berjalan di dalam kunci per meja plus
// transaksi database, jadi commit yang gagal membatalkan tulisan status meja
// dan reservasi sekaligus.
type AvailabilityScheduler struct {
	db           *gorm.DB
	tables       *TableRegistry
	reservations *ReservationStore
	locks        *tableLocks
	policy       Policy
}

func NewAvailabilityScheduler(db *gorm.DB, policy Policy) *AvailabilityScheduler {
	return &AvailabilityScheduler{
		db:           db,
		tables:       NewTableRegistry(db),
		reservations: NewReservationStore(db),
		locks:        newTableLocks(),
		policy:       policy,
	}
}

// Tables memberi akses baca ke registry; mutasi tetap lewat scheduler.
func (s *AvailabilityScheduler) Tables() *TableRegistry {
	return s.tables
}

// Reservations memberi akses baca ke store; mutasi tetap lewat scheduler.
func (s *AvailabilityScheduler) Reservations() *ReservationStore {
	return s.reservations
}

func (s *AvailabilityScheduler) Policy() Policy {
	return s.policy
}

// GetTable, GetReservation, dan ListReservationsForTable adalah operasi baca
// yang diekspos ke layer controller.
func (s *AvailabilityScheduler) GetTable(tableID uint) (*models.Table, error) {
	return s.tables.Get(tableID)
}

func (s *AvailabilityScheduler) GetReservation(id uint) (*models.Reservation, error) {
	return s.reservations.Get(id)
}

func (s *AvailabilityScheduler) ListReservationsForTable(tableID uint, window *Window) ([]models.Reservation, error) {
	return s.reservations.ListByTable(tableID, window)
}

// validateWindow menolak window di luar kebijakan sebelum menyentuh state.
func (s *AvailabilityScheduler) validateWindow(w Window) error {
	d := w.Duration()
	if d < s.policy.MinReservationDuration {
		return &ValidationError{Field: "duration", Message: "below minimum reservation duration"}
	}
	if d > s.policy.MaxReservationDuration {
		return &ValidationError{Field: "duration", Message: "above maximum reservation duration"}
	}

	now := time.Now()
	// toleransi kecil supaya "mulai sekarang" dari terminal tidak tertolak
	if w.Start.Before(now.Add(-time.Minute)) {
		return &ValidationError{Field: "start_time", Message: "start time is in the past"}
	}
	if w.Start.After(now.Add(s.policy.AdvanceBookingWindow)) {
		return &ValidationError{Field: "start_time", Message: "start time is beyond the advance booking window"}
	}
	return nil
}

// FindAvailableTables mengembalikan meja yang muat untuk rombongan dan tidak
// bentrok dengan reservasi aktif pada window yang diminta. Meja maintenance
// dan yang di-disable tidak ikut. Read-only dan idempotent.
func (s *AvailabilityScheduler) FindAvailableTables(w Window, partySize int, location string) ([]models.Table, error) {
	if partySize < 1 {
		return nil, &ValidationError{Field: "party_size", Message: "must be at least 1"}
	}
	if err := s.validateWindow(w); err != nil {
		return nil, err
	}

	q := s.db.Where("capacity >= ? AND status <> ? AND disabled = ?",
		partySize, models.TableStatusMaintenance, false)
	if location != "" {
		q = q.Where("location = ?", location)
	}

	var candidates []models.Table
	if err := q.Order("table_number ASC").Find(&candidates).Error; err != nil {
		return nil, err
	}

	available := make([]models.Table, 0, len(candidates))
	for _, t := range candidates {
		active, err := s.reservations.ListActiveByTable(nil, t.ID)
		if err != nil {
			return nil, err
		}
		if hasOverlap(w, active) {
			continue
		}
		available = append(available, t)
	}
	return available, nil
}

func hasOverlap(w Window, reservations []models.Reservation) bool {
	for i := range reservations {
		if Overlaps(w, ReservationWindow(&reservations[i])) {
			return true
		}
	}
	return false
}

// BestFit memilih meja dengan sisa kursi paling sedikit untuk rombongan;
// seri dipecah dengan nomor meja terkecil supaya deterministik. Nil bila
// tidak ada kandidat yang muat.
func (s *AvailabilityScheduler) BestFit(candidates []models.Table, partySize int) *models.Table {
	var best *models.Table
	for i := range candidates {
		t := &candidates[i]
		if t.Capacity < partySize {
			continue
		}
		if best == nil {
			best = t
			continue
		}
		excess := t.Capacity - partySize
		bestExcess := best.Capacity - partySize
		if excess < bestExcess || (excess == bestExcess && t.TableNumber < best.TableNumber) {
			best = t
		}
	}
	return best
}

// Reserve membuat reservasi pending pada meja. Kapasitas dan bentrok jadwal
// divalidasi ulang DI DALAM kunci per meja persis sebelum insert, menutup
// race antara FindAvailableTables dan commit: dua Reserve bersamaan pada
// window yang tumpang tindih menghasilkan tepat satu sukses dan satu
// ErrConflict. Window yang mulai dalam ImmediateEffectWindow juga langsung
// menandai meja reserved.
func (s *AvailabilityScheduler) Reserve(tableID, clientID uint, w Window, partySize int, notes string) (*models.Reservation, error) {
	if partySize < 1 {
		return nil, &ValidationError{Field: "party_size", Message: "must be at least 1"}
	}
	if err := s.validateWindow(w); err != nil {
		return nil, err
	}

	s.locks.Lock(tableID)
	defer s.locks.Unlock(tableID)

	var created *models.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		table, err := s.tables.getTx(tx, tableID)
		if err != nil {
			return err
		}
		if table.Disabled || table.Status == models.TableStatusMaintenance {
			return &ValidationError{Field: "table_id", Message: "table is not accepting reservations"}
		}
		if partySize > table.Capacity {
			return ErrCapacityExceeded
		}

		active, err := s.reservations.ListActiveByTable(tx, tableID)
		if err != nil {
			return err
		}
		if hasOverlap(w, active) {
			return ErrConflict
		}

		res := &models.Reservation{
			TableID:         tableID,
			ClientID:        clientID,
			PartySize:       partySize,
			StartTime:       w.Start,
			DurationMinutes: int(w.Duration() / time.Minute),
			Notes:           notes,
		}
		if err := s.reservations.Create(tx, res); err != nil {
			return err
		}

		// efek langsung: meja free ikut ditandai reserved bila mulainya dekat
		if table.Status == models.TableStatusFree && time.Until(w.Start) <= s.policy.ImmediateEffectWindow {
			if _, err := s.tables.SetState(tx, tableID, models.TableStatusReserved); err != nil {
				return err
			}
		}

		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Reservation %d created on table %d (%s - %s, party of %d)",
		created.ID, tableID, w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), partySize)
	return created, nil
}

// Confirm menaikkan reservasi pending menjadi confirmed. Confirm hanya
// memvalidasi booking; mendudukkan tamu eksplisit lewat Seat.
func (s *AvailabilityScheduler) Confirm(reservationID uint) (*models.Reservation, error) {
	res, err := s.reservations.Get(reservationID)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(res.TableID)
	defer s.locks.Unlock(res.TableID)

	var updated *models.Reservation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updated, err = s.reservations.UpdateState(tx, reservationID, models.ReservationStatusConfirmed, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Reservation %d confirmed", reservationID)
	return updated, nil
}

// Seat mendudukkan tamu reservasi confirmed: meja menjadi occupied. Gagal
// bila reservasi bukan confirmed atau meja tidak free/reserved.
func (s *AvailabilityScheduler) Seat(reservationID uint) (*models.Reservation, error) {
	res, err := s.reservations.Get(reservationID)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(res.TableID)
	defer s.locks.Unlock(res.TableID)

	var seated *models.Reservation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		fresh, err := s.reservations.getTx(tx, reservationID)
		if err != nil {
			return err
		}
		if fresh.Status != models.ReservationStatusConfirmed {
			return &InvalidTransitionError{Entity: "reservation", From: fresh.Status, To: "seated"}
		}

		// free -> occupied dan reserved -> occupied sah; sisanya ditolak registry
		if _, err := s.tables.SetState(tx, fresh.TableID, models.TableStatusOccupied); err != nil {
			return err
		}

		seated = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Reservation %d seated at table %d", reservationID, seated.TableID)
	return seated, nil
}

// Cancel membatalkan reservasi non-terminal. Bila meja berstatus reserved
// semata-mata karena reservasi ini, meja dikembalikan ke free.
func (s *AvailabilityScheduler) Cancel(reservationID uint, reason string) (*models.Reservation, error) {
	res, err := s.reservations.Get(reservationID)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(res.TableID)
	defer s.locks.Unlock(res.TableID)
	return s.cancelLocked(reservationID, res.TableID, reason)
}

// TryCancel seperti Cancel tetapi tidak menunggu kunci meja; dipakai sweep
// reclaimer supaya tidak berebut dengan request user.
func (s *AvailabilityScheduler) TryCancel(reservationID uint, reason string) (*models.Reservation, error) {
	res, err := s.reservations.Get(reservationID)
	if err != nil {
		return nil, err
	}

	if !s.locks.TryLock(res.TableID) {
		return nil, ErrTableBusy
	}
	defer s.locks.Unlock(res.TableID)
	return s.cancelLocked(reservationID, res.TableID, reason)
}

func (s *AvailabilityScheduler) cancelLocked(reservationID, tableID uint, reason string) (*models.Reservation, error) {
	var cancelled *models.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updated, err := s.reservations.UpdateState(tx, reservationID, models.ReservationStatusCancelled, reason)
		if err != nil {
			return err
		}

		table, err := s.tables.getTx(tx, tableID)
		if err != nil {
			return err
		}
		if table.Status == models.TableStatusReserved && !s.stillHeld(tx, tableID) {
			if _, err := s.tables.SetState(tx, tableID, models.TableStatusFree); err != nil {
				return err
			}
		}

		cancelled = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Reservation %d cancelled (%s)", reservationID, reason)
	return cancelled, nil
}

// stillHeld true bila masih ada reservasi aktif lain yang menahan status
// reserved meja (sudah mulai atau mulai dalam ImmediateEffectWindow).
func (s *AvailabilityScheduler) stillHeld(tx *gorm.DB, tableID uint) bool {
	active, err := s.reservations.ListActiveByTable(tx, tableID)
	if err != nil {
		// anggap masih ditahan; lebih aman daripada membebaskan meja keliru
		return true
	}
	horizon := time.Now().Add(s.policy.ImmediateEffectWindow)
	for i := range active {
		if !active[i].StartTime.After(horizon) {
			return true
		}
	}
	return false
}

// Release memaksa occupied -> free; dipakai penutupan order normal maupun
// reclaim paksa. Reservasi confirmed yang sedang memakai meja ditandai
// completed; reservasi yang belum mulai tidak disentuh.
func (s *AvailabilityScheduler) Release(tableID uint) (*models.Table, error) {
	s.locks.Lock(tableID)
	defer s.locks.Unlock(tableID)

	var released *models.Table
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		released, err = s.releaseLocked(tx, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// TryRelease: varian non-blocking untuk sweep reclaimer.
func (s *AvailabilityScheduler) TryRelease(tableID uint) (*models.Table, error) {
	if !s.locks.TryLock(tableID) {
		return nil, ErrTableBusy
	}
	defer s.locks.Unlock(tableID)

	var released *models.Table
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		released, err = s.releaseLocked(tx, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

func (s *AvailabilityScheduler) releaseLocked(tx *gorm.DB, tableID uint) (*models.Table, error) {
	table, err := s.tables.SetState(tx, tableID, models.TableStatusFree)
	if err != nil {
		return nil, err
	}

	active, err := s.reservations.ListActiveByTable(tx, tableID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range active {
		r := &active[i]
		if r.Status == models.ReservationStatusConfirmed && !r.StartTime.After(now) {
			if _, err := s.reservations.UpdateState(tx, r.ID, models.ReservationStatusCompleted, ""); err != nil {
				return nil, err
			}
		}
	}

	utils.InfoLogger.Printf("Table %d released", tableID)
	return table, nil
}

// SetMaintenance menandai meja maintenance; hanya sah dari free.
func (s *AvailabilityScheduler) SetMaintenance(tableID uint, note string) (*models.Table, error) {
	s.locks.Lock(tableID)
	defer s.locks.Unlock(tableID)

	var table *models.Table
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		table, err = s.tables.SetState(tx, tableID, models.TableStatusMaintenance)
		if err != nil {
			return err
		}
		table.MaintenanceNote = note
		return tx.Save(table).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %d set to maintenance: %s", tableID, note)
	return table, nil
}

// ClearMaintenance mengembalikan meja maintenance ke free (administratif).
func (s *AvailabilityScheduler) ClearMaintenance(tableID uint) (*models.Table, error) {
	s.locks.Lock(tableID)
	defer s.locks.Unlock(tableID)

	var table *models.Table
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fresh, err := s.tables.getTx(tx, tableID)
		if err != nil {
			return err
		}
		if fresh.Status != models.TableStatusMaintenance {
			return &InvalidTransitionError{Entity: "table", From: fresh.Status, To: models.TableStatusFree}
		}
		table, err = s.tables.SetState(tx, tableID, models.TableStatusFree)
		if err != nil {
			return err
		}
		table.MaintenanceNote = ""
		return tx.Save(table).Error
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// OrderOpened dipanggil modul order saat order dibuka pada sebuah meja.
// Dengan reservationID: check-in reservasi confirmed (setara Seat). Tanpa
// reservationID: walk-in; meja harus free dan estimasi okupansi tidak boleh
// bentrok dengan reservasi yang akan datang.
func (s *AvailabilityScheduler) OrderOpened(tableID uint, reservationID *uint) (*models.Order, error) {
	s.locks.Lock(tableID)
	defer s.locks.Unlock(tableID)

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		table, err := s.tables.getTx(tx, tableID)
		if err != nil {
			return err
		}

		if reservationID != nil {
			res, err := s.reservations.getTx(tx, *reservationID)
			if err != nil {
				return err
			}
			if res.TableID != tableID {
				return &ValidationError{Field: "reservation_id", Message: "reservation belongs to another table"}
			}
			if res.Status != models.ReservationStatusConfirmed {
				return &InvalidTransitionError{Entity: "reservation", From: res.Status, To: "seated"}
			}
			if _, err := s.tables.SetState(tx, tableID, models.TableStatusOccupied); err != nil {
				return err
			}
		} else {
			if table.Status != models.TableStatusFree {
				return &InvalidTransitionError{Entity: "table", From: table.Status, To: models.TableStatusOccupied}
			}

			// walk-in memakai estimasi durasi; reservasi mendatang yang
			// terpotong estimasi ini menjadikan meja tidak bisa dipakai
			now := time.Now()
			estimate := Window{Start: now, End: now.Add(s.policy.WalkInDuration)}
			active, err := s.reservations.ListActiveByTable(tx, tableID)
			if err != nil {
				return err
			}
			if hasOverlap(estimate, active) {
				return ErrConflict
			}
			if _, err := s.tables.SetState(tx, tableID, models.TableStatusOccupied); err != nil {
				return err
			}
		}

		order = &models.Order{
			TableID:       tableID,
			ReservationID: reservationID,
			Status:        models.OrderStatusOpen,
			OpenedAt:      time.Now(),
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d opened on table %d", order.ID, tableID)
	return order, nil
}

// OrderClosed menutup order dan melepas mejanya dalam satu transaksi.
func (s *AvailabilityScheduler) OrderClosed(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	s.locks.Lock(order.TableID)
	defer s.locks.Unlock(order.TableID)

	var closed *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var fresh models.Order
		if err := tx.First(&fresh, orderID).Error; err != nil {
			return err
		}
		if fresh.Status != models.OrderStatusOpen {
			return &InvalidTransitionError{Entity: "order", From: fresh.Status, To: models.OrderStatusClosed}
		}

		now := time.Now()
		fresh.Status = models.OrderStatusClosed
		fresh.ClosedAt = &now
		if err := tx.Save(&fresh).Error; err != nil {
			return err
		}

		if _, err := s.releaseLocked(tx, fresh.TableID); err != nil {
			return err
		}

		closed = &fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d closed, table %d released", orderID, closed.TableID)
	return closed, nil
}

// HasOpenOrder dipakai reclaimer: meja occupied dengan order yang masih
// terbuka tidak di-reclaim.
func (s *AvailabilityScheduler) HasOpenOrder(tableID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Order{}).
		Where("table_id = ? AND status = ?", tableID, models.OrderStatusOpen).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
