package models

import (
	"time"
)

type Room struct {
	ID    uint    `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"size:50;not null" json:"name"`
	Image string  `gorm:"size:255" json:"image"`
	Price float64 `gorm:"not null" json:"price"`

	// Staff member managing the room.
	UserID  uint `gorm:"not null;index" json:"user_id"`
	Manager User `gorm:"foreignKey:UserID" json:"-"`

	RoomTypeID uint     `gorm:"not null;index" json:"room_type_id"`
	RoomType   RoomType `gorm:"foreignKey:RoomTypeID" json:"room_type"`

	Reservations []RoomReservationForm `gorm:"foreignKey:RoomID" json:"-"`
	Rentals      []RoomRentalForm      `gorm:"foreignKey:RoomID" json:"-"`
	Comments     []Comment             `gorm:"foreignKey:RoomID" json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
