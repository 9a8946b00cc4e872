package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"hotel-management/models"
)

// Session keys.
const (
	SessionUserKey        = "user_id"
	SessionResetUserKey   = "reset_user_id"
	SessionOTPKey         = "otp_code"
	SessionOTPVerifiedKey = "otp_verified"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
var ErrInvalidCredentials = errors.New("username or password incorrect")

// SessionState is the per-browser key/value store handlers pass to services.
type SessionState interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(keys ...string)
	// Renew reissues the session under a new id, keeping its values.
	Renew()
}

type AuthService struct {
	Users  *UserService
	Hasher *PasswordHasher
	log    *zap.Logger
}

func NewAuthService(users *UserService, hasher *PasswordHasher, log *zap.Logger) *AuthService {
	return &AuthService{Users: users, Hasher: hasher, log: log}
}

// Authenticate returns the user whose username and password match. A legacy
// hash that verifies is re-hashed with the configured scheme.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.Hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if s.Hasher.NeedsUpgrade(user.Password) {
		hashed, err := s.Hasher.Hash(password)
		if err == nil {
			err = s.Users.UpdatePasswordHash(ctx, user.ID, hashed)
		}
		if err != nil {
			s.log.Warn("password hash upgrade failed", zap.Uint("user_id", user.ID), zap.Error(err))
		} else {
			user.Password = hashed
			s.log.Info("password hash upgraded", zap.Uint("user_id", user.ID), zap.String("scheme", s.Hasher.Scheme()))
		}
	}
	return user, nil
}

// ChangePassword hashes and stores a new password.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, password string) error {
	hashed, err := s.Hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.Users.UpdatePasswordHash(ctx, userID, hashed)
}

// CurrentUser resolves the logged-in user of the session. ok is false when
// nobody is logged in or the account no longer exists.
func (s *AuthService) CurrentUser(ctx context.Context, sess SessionState) (*models.User, bool, error) {
	id, ok := SessionUserID(sess)
	if !ok {
		return nil, false, nil
	}
	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			TerminateSession(sess)
			return nil, false, nil
		}
		return nil, false, err
	}
	return user, true, nil
}

// EstablishSession logs the browser in under a fresh session id.
func EstablishSession(sess SessionState, user *models.User) {
	sess.Renew()
	sess.Set(SessionUserKey, strconv.FormatUint(uint64(user.ID), 10))
}

func TerminateSession(sess SessionState) {
	sess.Delete(SessionUserKey)
}

func SessionUserID(sess SessionState) (uint, bool) {
	return sessionUint(sess, SessionUserKey)
}

func sessionUint(sess SessionState, key string) (uint, bool) {
	raw, ok := sess.Get(key)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
