package scheduler

import (
	"errors"
	"time"

	"github.com/ardisetiawan/resto-seating/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// reservationTransitions: pending -> confirmed | cancelled,
// confirmed -> completed | cancelled. Completed dan cancelled terminal.
var reservationTransitions = map[string][]string{
	models.ReservationStatusPending:   {models.ReservationStatusConfirmed, models.ReservationStatusCancelled},
	models.ReservationStatusConfirmed: {models.ReservationStatusCompleted, models.ReservationStatusCancelled},
}

func reservationTransitionAllowed(from, to string) bool {
	for _, s := range reservationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReservationStore memegang record reservasi beserta query berindeks waktu.
// Mutasi lifecycle tetap lewat AvailabilityScheduler; store hanya validasi
// transisi dan persistensi.
type ReservationStore struct {
	db *gorm.DB
}

func NewReservationStore(db *gorm.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

// Create menyimpan reservasi baru: id dan code diberikan di sini, status
// dipaksa pending.
func (rs *ReservationStore) Create(tx *gorm.DB, res *models.Reservation) error {
	if tx == nil {
		tx = rs.db
	}
	res.ID = 0
	res.Code = uuid.NewString()
	res.Status = models.ReservationStatusPending
	return tx.Create(res).Error
}

func (rs *ReservationStore) Get(id uint) (*models.Reservation, error) {
	return rs.getTx(rs.db, id)
}

func (rs *ReservationStore) getTx(tx *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := tx.First(&res, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByCode mencari reservasi lewat kode publiknya (uuid).
func (rs *ReservationStore) GetByCode(code string) (*models.Reservation, error) {
	var res models.Reservation
	if err := rs.db.Where("code = ?", code).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// ListByTable mengembalikan reservasi sebuah meja, opsional difilter window
// (reservasi yang tumpang tindih dengan window tersebut).
func (rs *ReservationStore) ListByTable(tableID uint, window *Window) ([]models.Reservation, error) {
	var all []models.Reservation
	err := rs.db.Where("table_id = ?", tableID).Order("start_time ASC").Find(&all).Error
	if err != nil {
		return nil, err
	}
	if window == nil {
		return all, nil
	}

	filtered := make([]models.Reservation, 0, len(all))
	for _, r := range all {
		if Overlaps(*window, ReservationWindow(&r)) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// ListActiveByTable mengembalikan reservasi pending/confirmed sebuah meja,
// urut waktu mulai. Inilah set yang dihitung saat cek bentrok.
func (rs *ReservationStore) ListActiveByTable(tx *gorm.DB, tableID uint) ([]models.Reservation, error) {
	if tx == nil {
		tx = rs.db
	}
	var active []models.Reservation
	err := tx.Where("table_id = ? AND status IN ?", tableID,
		[]string{models.ReservationStatusPending, models.ReservationStatusConfirmed}).
		Order("start_time ASC").Find(&active).Error
	if err != nil {
		return nil, err
	}
	return active, nil
}

// ListUpcoming mengembalikan reservasi aktif yang mulai dalam horizon ke
// depan; dipakai broadcast pengingat dan cek "segera datang" reclaimer.
func (rs *ReservationStore) ListUpcoming(within time.Duration) ([]models.Reservation, error) {
	now := time.Now()
	var upcoming []models.Reservation
	err := rs.db.Where("status IN ? AND start_time >= ? AND start_time <= ?",
		[]string{models.ReservationStatusPending, models.ReservationStatusConfirmed},
		now, now.Add(within)).
		Order("start_time ASC").Find(&upcoming).Error
	if err != nil {
		return nil, err
	}
	return upcoming, nil
}

// ListOverdue mengembalikan reservasi aktif yang waktu mulainya sudah lewat
// lebih dari masa tenggang tanpa check-in; bahan sweep no-show.
func (rs *ReservationStore) ListOverdue(grace time.Duration) ([]models.Reservation, error) {
	cutoff := time.Now().Add(-grace)
	var overdue []models.Reservation
	err := rs.db.Where("status IN ? AND start_time <= ?",
		[]string{models.ReservationStatusPending, models.ReservationStatusConfirmed}, cutoff).
		Order("start_time ASC").Find(&overdue).Error
	if err != nil {
		return nil, err
	}
	return overdue, nil
}

// UpdateState memvalidasi transisi lifecycle lalu menyimpannya. reason hanya
// dipakai saat membatalkan (mis. "no-show").
func (rs *ReservationStore) UpdateState(tx *gorm.DB, id uint, newStatus, reason string) (*models.Reservation, error) {
	if tx == nil {
		tx = rs.db
	}

	res, err := rs.getTx(tx, id)
	if err != nil {
		return nil, err
	}

	if !reservationTransitionAllowed(res.Status, newStatus) {
		return nil, &InvalidTransitionError{Entity: "reservation", From: res.Status, To: newStatus}
	}

	res.Status = newStatus
	if newStatus == models.ReservationStatusCancelled {
		res.CancelReason = reason
	}
	if err := tx.Save(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}
