package models

// RoomType is the category of a room (Single, Twin, Double).
type RoomType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`

	// One-to-one: at most one capacity rule per room type.
	Regulation *RoomRegulation `gorm:"foreignKey:RoomTypeID" json:"regulation,omitempty"`
}
