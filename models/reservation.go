package models

import "time"

// RoomReservationForm is a booking made before arrival.
type RoomReservationForm struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CheckInDate    time.Time `gorm:"not null" json:"check_in_date"`
	CheckOutDate   time.Time `gorm:"not null" json:"check_out_date"`
	NumberOfGuests int       `gorm:"not null;default:1" json:"number_of_guests"`
	IsCheckIn      bool      `gorm:"not null;default:false" json:"is_check_in"`
	Deposit        float64   `gorm:"not null" json:"deposit"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user"`
	RoomID uint `gorm:"not null;index" json:"room_id"`
	Room   Room `gorm:"foreignKey:RoomID" json:"room"`

	CreatedAt time.Time `json:"created_at"`
}
