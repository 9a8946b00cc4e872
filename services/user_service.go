package services

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
	"gorm.io/gorm"

	"hotel-management/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserHasBookings = errors.New("user still has reservations, rentals or bills")
	ErrUserManagesRoom = errors.New("user still manages rooms")
)

// UserService is the data access layer for accounts.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Preload("CustomerType").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").With("user_id", id).Wrap(err)
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").With("username", username).Wrap(err)
	}
	return &user, nil
}

// GetByAccount matches either the username or the email address.
func (s *UserService) GetByAccount(ctx context.Context, account string) (*models.User, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, ErrUserNotFound
	}

	var user models.User
	err := s.DB.WithContext(ctx).
		Where("username = ? OR email = ?", account, account).
		Order("id").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, oops.Code("USER_LOOKUP_FAILED").With("account", account).Wrap(err)
	}
	return &user, nil
}

// Exists reports whether any user has value in one of the unique columns.
func (s *UserService) Exists(ctx context.Context, column, value string) (bool, error) {
	switch column {
	case "username", "email", "phone", "identification_card":
	default:
		return false, oops.Code("USER_UNKNOWN_COLUMN").Errorf("unsupported lookup column %q", column)
	}

	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return false, oops.Code("USER_LOOKUP_FAILED").With("column", column).Wrap(err)
	}
	return n > 0, nil
}

func (s *UserService) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return oops.Code("USER_PASSWORD_UPDATE_FAILED").With("user_id", id).Wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user and the user's comments in one transaction.
// Users with booking history or managed rooms are kept.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return oops.Code("USER_DELETE_FAILED").With("user_id", id).Wrap(err)
		}

		for _, model := range []any{&models.RoomReservationForm{}, &models.RoomRentalForm{}, &models.Bill{}} {
			var n int64
			if err := tx.Model(model).Where("user_id = ?", id).Count(&n).Error; err != nil {
				return oops.Code("USER_DELETE_FAILED").With("user_id", id).Wrap(err)
			}
			if n > 0 {
				return ErrUserHasBookings
			}
		}
		var rooms int64
		if err := tx.Model(&models.Room{}).Where("user_id = ?", id).Count(&rooms).Error; err != nil {
			return oops.Code("USER_DELETE_FAILED").With("user_id", id).Wrap(err)
		}
		if rooms > 0 {
			return ErrUserManagesRoom
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return oops.Code("USER_DELETE_FAILED").With("user_id", id).Wrap(err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return oops.Code("USER_DELETE_FAILED").With("user_id", id).Wrap(err)
		}
		return nil
	})
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Preload("CustomerType").Order("id").Find(&users).Error; err != nil {
		return nil, oops.Code("USER_LIST_FAILED").Wrap(err)
	}
	return users, nil
}
