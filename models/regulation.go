package models

// RoomRegulation caps the number of guests for one room type.
type RoomRegulation struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	NumberOfGuests int  `gorm:"not null" json:"number_of_guests"`
	UserID         uint `gorm:"not null;index" json:"user_id"`
	RoomTypeID     uint `gorm:"not null;uniqueIndex" json:"room_type_id"`

	ExtraCharge *ExtraChargeRegulation `gorm:"foreignKey:RoomRegulationID;constraint:OnDelete:CASCADE" json:"extra_charge,omitempty"`
}

// ExtraChargeRegulation is the surcharge rate applied on top of the room
// price when a stay exceeds the base occupancy.
type ExtraChargeRegulation struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	Rate             float64 `gorm:"not null" json:"rate"`
	UserID           uint    `gorm:"not null;index" json:"user_id"`
	RoomRegulationID uint    `gorm:"not null;uniqueIndex" json:"room_regulation_id"`
}

// CustomerRegulation is the price coefficient of a customer type.
type CustomerRegulation struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Coefficient    float64 `gorm:"not null" json:"coefficient"`
	UserID         uint    `gorm:"not null;index" json:"user_id"`
	CustomerTypeID uint    `gorm:"not null;uniqueIndex" json:"customer_type_id"`
}
