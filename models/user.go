package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultAvatar is stored for users who register without uploading a picture.
const DefaultAvatar = "https://res.cloudinary.com/dxxwcby8l/image/upload/v1647056401/ipmsmnxjydrhpo21xrd8.jpg"

type User struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	Name               string `gorm:"size:50;not null" json:"name"`
	Username           string `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Password           string `gorm:"size:255;not null" json:"-"` // hashed, never returned
	Email              string `gorm:"size:50;not null;uniqueIndex" json:"email"`
	Phone              string `gorm:"size:15;not null;uniqueIndex" json:"phone"`
	Avatar             string `gorm:"size:255" json:"avatar"`
	Gender             string `gorm:"size:6;not null" json:"gender"`
	IdentificationCard string `gorm:"size:12;not null;uniqueIndex" json:"identification_card"`
	Role               Role   `gorm:"size:20;not null;default:customer" json:"role"`

	CustomerTypeID uint         `gorm:"not null;default:1" json:"customer_type_id"`
	CustomerType   CustomerType `gorm:"foreignKey:CustomerTypeID" json:"customer_type"`

	Comments []Comment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}
