package scheduler

import (
	"errors"
	"time"

	"github.com/ardisetiawan/resto-seating/models"
	"gorm.io/gorm"
)

// tableTransitions adalah satu-satunya definisi state machine meja:
//
//	free        -> occupied | reserved | maintenance
//	occupied    -> free
//	reserved    -> occupied | free
//	maintenance -> free
var tableTransitions = map[string][]string{
	models.TableStatusFree:        {models.TableStatusOccupied, models.TableStatusReserved, models.TableStatusMaintenance},
	models.TableStatusOccupied:    {models.TableStatusFree},
	models.TableStatusReserved:    {models.TableStatusOccupied, models.TableStatusFree},
	models.TableStatusMaintenance: {models.TableStatusFree},
}

func tableTransitionAllowed(from, to string) bool {
	for _, s := range tableTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TableRegistry memegang state kanonik setiap meja fisik. Registry hanya
// memvalidasi dan menyimpan transisi; keputusan KAPAN bertransisi ada di
// AvailabilityScheduler.
type TableRegistry struct {
	db *gorm.DB
}

func NewTableRegistry(db *gorm.DB) *TableRegistry {
	return &TableRegistry{db: db}
}

func (tr *TableRegistry) Get(tableID uint) (*models.Table, error) {
	return tr.getTx(tr.db, tableID)
}

func (tr *TableRegistry) getTx(tx *gorm.DB, tableID uint) (*models.Table, error) {
	var table models.Table
	if err := tx.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

// GetByNumber mencari meja berdasarkan nomor display (mis. "A1").
func (tr *TableRegistry) GetByNumber(number string) (*models.Table, error) {
	var table models.Table
	if err := tr.db.Where("table_number = ?", number).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

// List mengembalikan semua meja yang tidak di-soft-disable.
func (tr *TableRegistry) List() ([]models.Table, error) {
	var tables []models.Table
	if err := tr.db.Where("disabled = ?", false).Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (tr *TableRegistry) ListByStatus(status string) ([]models.Table, error) {
	var tables []models.Table
	err := tr.db.Where("status = ? AND disabled = ?", status, false).
		Order("table_number ASC").Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// ListByCapacityRange memfilter meja dengan kapasitas min..max; max 0 berarti
// tanpa batas atas.
func (tr *TableRegistry) ListByCapacityRange(min, max int) ([]models.Table, error) {
	q := tr.db.Where("capacity >= ? AND disabled = ?", min, false)
	if max > 0 {
		q = q.Where("capacity <= ?", max)
	}
	var tables []models.Table
	if err := q.Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// SetState memvalidasi transisi terhadap tableTransitions lalu menyimpannya,
// sekaligus menandai StatusChangedAt. Transisi di luar tabel gagal dengan
// *InvalidTransitionError yang menyebut status sekarang dan yang diminta.
// Bila tx nil, dijalankan di luar transaksi caller.
func (tr *TableRegistry) SetState(tx *gorm.DB, tableID uint, newStatus string) (*models.Table, error) {
	if tx == nil {
		tx = tr.db
	}

	table, err := tr.getTx(tx, tableID)
	if err != nil {
		return nil, err
	}

	if !tableTransitionAllowed(table.Status, newStatus) {
		return nil, &InvalidTransitionError{Entity: "table", From: table.Status, To: newStatus}
	}

	table.Status = newStatus
	table.StatusChangedAt = time.Now()
	if err := tx.Save(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

// RegisterCleaning mencatat waktu pembersihan dan menulis CleaningLog.
// Murni side effect; status okupansi tidak berubah.
func (tr *TableRegistry) RegisterCleaning(tableID, cleanerID uint) (*models.CleaningLog, error) {
	var entry *models.CleaningLog
	err := tr.db.Transaction(func(tx *gorm.DB) error {
		table, err := tr.getTx(tx, tableID)
		if err != nil {
			return err
		}

		now := time.Now()
		table.LastCleanedAt = &now
		if err := tx.Save(table).Error; err != nil {
			return err
		}

		entry = &models.CleaningLog{
			CleanerID: cleanerID,
			TableID:   tableID,
			Status:    "done",
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SetDisabled melakukan soft-disable; meja yang pernah direferensikan
// reservasi tidak pernah dihapus permanen.
func (tr *TableRegistry) SetDisabled(tableID uint, disabled bool) (*models.Table, error) {
	table, err := tr.Get(tableID)
	if err != nil {
		return nil, err
	}
	table.Disabled = disabled
	if err := tr.db.Save(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}
