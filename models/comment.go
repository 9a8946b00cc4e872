package models

import "time"

// MaxCommentLength is the column size of Comment.Content.
const MaxCommentLength = 1000

type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Content      string    `gorm:"size:1000;not null" json:"content"`
	CreationDate time.Time `gorm:"not null" json:"creation_date"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user"`
	RoomID uint `gorm:"not null;index" json:"room_id"`
}
