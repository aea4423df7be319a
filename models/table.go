package models

import "time"

// Status okupansi meja. Transisi antar status divalidasi oleh
// scheduler.TableRegistry, bukan di model.
const (
	TableStatusFree        = "free"
	TableStatusOccupied    = "occupied"
	TableStatusReserved    = "reserved"
	TableStatusMaintenance = "maintenance"
)

type Table struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TableNumber     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"table_number"`
	Capacity        int        `gorm:"not null" json:"capacity"`
	Location        string     `gorm:"type:varchar(100)" json:"location"`
	Status          string     `gorm:"type:varchar(20);not null;default:'free'" json:"status"`
	Disabled        bool       `gorm:"not null;default:false" json:"disabled"`
	MaintenanceNote string     `gorm:"type:varchar(255)" json:"maintenance_note,omitempty"`
	LastCleanedAt   *time.Time `json:"last_cleaned_at,omitempty"`
	StatusChangedAt time.Time  `gorm:"not null" json:"status_changed_at"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}
