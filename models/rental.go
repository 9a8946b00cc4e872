package models

import "time"

// RoomRentalForm records a stay from check-in to check-out. Every rental is
// owned by exactly one Bill.
type RoomRentalForm struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CheckInDate    time.Time  `gorm:"not null" json:"check_in_date"`
	CheckOutDate   time.Time  `gorm:"not null" json:"check_out_date"`
	NumberOfGuests int        `gorm:"not null;default:1" json:"number_of_guests"`
	Deposit        float64    `gorm:"not null" json:"deposit"`
	CheckedOutAt   *time.Time `json:"checked_out_at,omitempty"`

	UserID        uint  `gorm:"not null;index" json:"user_id"`
	User          User  `gorm:"foreignKey:UserID" json:"user"`
	RoomID        uint  `gorm:"not null;index" json:"room_id"`
	Room          Room  `gorm:"foreignKey:RoomID" json:"room"`
	BillID        uint  `gorm:"not null;uniqueIndex" json:"bill_id"`
	ReservationID *uint `gorm:"index" json:"reservation_id,omitempty"`
}

// IsOpen reports whether the guest has not checked out yet.
func (r RoomRentalForm) IsOpen() bool {
	return r.CheckedOutAt == nil
}
