package models

import (
	"time"

	"gorm.io/datatypes"
)

type Bill struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TotalAmount  float64   `gorm:"not null" json:"total_amount"`
	CreationDate time.Time `gorm:"not null" json:"creation_date"`

	// Breakdown holds the pricing inputs the total was computed from.
	Breakdown datatypes.JSON `json:"breakdown,omitempty"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user"`

	Rental *RoomRentalForm `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"rental,omitempty"`
}
