package services

import (
	"context"
	"mime/multipart"
	"regexp"
	"strings"

	"github.com/samber/oops"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hotel-management/models"
)

var (
	identificationPattern = regexp.MustCompile(`(?i)^(\d{12}|\d{9}|[a-z][a-z0-9]{7})$`)
	usernamePattern       = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// RegistrationForm is the submitted sign-up form.
type RegistrationForm struct {
	Name           string
	Username       string
	Password       string
	Confirm        string
	Email          string
	Phone          string
	Gender         string
	Identification string
	CustomerType   string
}

func (f *RegistrationForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Gender = strings.TrimSpace(f.Gender)
	f.Identification = strings.TrimSpace(f.Identification)
	f.CustomerType = strings.ToLower(strings.TrimSpace(f.CustomerType))
}

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Any() bool { return len(fe) > 0 }

type RegistrationService struct {
	DB      *gorm.DB
	Users   *UserService
	Hasher  *PasswordHasher
	Avatars AvatarStore
	log     *zap.Logger
}

func NewRegistrationService(db *gorm.DB, users *UserService, hasher *PasswordHasher, avatars AvatarStore, log *zap.Logger) *RegistrationService {
	return &RegistrationService{DB: db, Users: users, Hasher: hasher, Avatars: avatars, log: log}
}

// Validate checks every rule and collects all failures.
func (s *RegistrationService) Validate(ctx context.Context, form RegistrationForm) (FieldErrors, error) {
	form.normalize()
	errs := FieldErrors{}

	if !identificationPattern.MatchString(form.Identification) {
		errs["identification"] = "Identification card is invalid."
	} else if taken, err := s.Users.Exists(ctx, "identification_card", form.Identification); err != nil {
		return nil, err
	} else if taken {
		errs["identification"] = "Identification card is already registered."
	}

	if taken, err := s.Users.Exists(ctx, "username", form.Username); err != nil {
		return nil, err
	} else if taken {
		errs["username"] = "Username is already taken."
	}
	if !usernamePattern.MatchString(form.Username) {
		errs["username_format"] = "Invalid username. Only letters and numbers"
	}

	if strings.TrimSpace(form.Password) == "" {
		errs["password"] = "Password is required."
	} else if form.Password != form.Confirm {
		errs["password"] = "Password and confirm password do not match."
	}

	if !strings.Contains(form.Email, "@") {
		errs["email"] = "Email is invalid."
	} else if taken, err := s.Users.Exists(ctx, "email", form.Email); err != nil {
		return nil, err
	} else if taken {
		errs["email"] = "Email is already taken."
	}

	if n := len(form.Phone); n < 7 || n > 15 {
		errs["phone"] = "Phone number must be between 7-15 digits."
	} else if taken, err := s.Users.Exists(ctx, "phone", form.Phone); err != nil {
		return nil, err
	} else if taken {
		errs["phone"] = "Phone number is already taken."
	}

	return errs, nil
}

// Register validates the form and creates a customer account. Field errors
// are returned as FieldErrors with a nil user; err is reserved for failures
// of the store.
func (s *RegistrationService) Register(ctx context.Context, form RegistrationForm, avatar *multipart.FileHeader) (*models.User, FieldErrors, error) {
	errs, err := s.Validate(ctx, form)
	if err != nil {
		return nil, nil, err
	}
	if errs.Any() {
		return nil, errs, nil
	}
	form.normalize()

	typeName := models.CustomerTypeDomestic
	if form.CustomerType == models.CustomerTypeForeign {
		typeName = models.CustomerTypeForeign
	}
	var customerType models.CustomerType
	if err := s.DB.WithContext(ctx).Where("type = ?", typeName).First(&customerType).Error; err != nil {
		return nil, nil, oops.Code("REGISTER_CUSTOMER_TYPE").With("type", typeName).Wrap(err)
	}

	hashed, err := s.Hasher.Hash(form.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Name:               form.Name,
		Username:           form.Username,
		Password:           hashed,
		Email:              form.Email,
		Phone:              form.Phone,
		Gender:             form.Gender,
		IdentificationCard: form.Identification,
		Role:               models.RoleCustomer,
		CustomerTypeID:     customerType.ID,
	}

	if avatar != nil && s.Avatars != nil {
		url, err := s.Avatars.Upload(ctx, avatar)
		if err != nil {
			s.log.Warn("avatar upload failed; using default", zap.String("username", form.Username), zap.Error(err))
		} else {
			user.Avatar = url
		}
	}

	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, nil, oops.Code("REGISTER_CREATE_FAILED").With("username", form.Username).Wrap(err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil, nil
}
