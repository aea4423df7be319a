package models

import "time"

// Lifecycle reservasi: pending -> confirmed -> completed,
// pending/confirmed -> cancelled. Completed dan cancelled terminal.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
)

type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Code            string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"code"`
	TableID         uint      `gorm:"not null;index" json:"table_id"`
	Table           Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	ClientID        uint      `gorm:"not null" json:"client_id"`
	PartySize       int       `gorm:"not null" json:"party_size"`
	StartTime       time.Time `gorm:"not null;index" json:"start_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes           string    `gorm:"type:varchar(255)" json:"notes,omitempty"`
	CancelReason    string    `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// EndTime adalah turunan StartTime + durasi; tidak disimpan di kolom sendiri.
func (r *Reservation) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// IsActive true untuk reservasi yang masih dihitung saat cek bentrok jadwal.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}
