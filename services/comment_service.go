package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/oops"
	"gorm.io/gorm"

	"hotel-management/models"
)

var (
	ErrCommentEmpty   = errors.New("comment cannot be empty")
	ErrCommentTooLong = errors.New("comment is too long")
)

type CommentService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{DB: db, now: time.Now}
}

func (s *CommentService) Add(ctx context.Context, userID, roomID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentEmpty
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Count(&n).Error; err != nil {
		return nil, oops.Code("COMMENT_CREATE_FAILED").With("room_id", roomID).Wrap(err)
	}
	if n == 0 {
		return nil, ErrRoomNotFound
	}

	comment := &models.Comment{
		Content:      content,
		CreationDate: s.now(),
		UserID:       userID,
		RoomID:       roomID,
	}
	if err := s.DB.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, oops.Code("COMMENT_CREATE_FAILED").With("room_id", roomID).Wrap(err)
	}
	return comment, nil
}
