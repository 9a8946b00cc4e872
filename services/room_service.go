package services

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"gorm.io/gorm"

	"hotel-management/models"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Preload("RoomType.Regulation").Order("id").Find(&rooms).Error; err != nil {
		return nil, oops.Code("ROOM_LIST_FAILED").Wrap(err)
	}
	return rooms, nil
}

// Get loads a room with its type, capacity rule and comments, newest first.
func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).
		Preload("RoomType.Regulation.ExtraCharge").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("creation_date DESC, id DESC")
		}).
		Preload("Comments.User").
		First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, oops.Code("ROOM_LOOKUP_FAILED").With("room_id", id).Wrap(err)
	}
	return &room, nil
}
