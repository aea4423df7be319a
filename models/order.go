package models

import "time"

const (
	OrderStatusOpen   = "open"
	OrderStatusClosed = "closed"
)

// Order hanya menyimpan keterkaitan order dengan meja (dan reservasi bila
// check-in lewat reservasi). Item, harga, dan pembayaran diurus modul lain.
type Order struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TableID       uint       `gorm:"not null;index" json:"table_id"`
	Table         Table      `gorm:"foreignKey:TableID" json:"table,omitempty"`
	ReservationID *uint      `gorm:"index" json:"reservation_id,omitempty"`
	Status        string     `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	OpenedAt      time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
