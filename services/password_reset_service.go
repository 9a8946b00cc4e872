package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"hotel-management/observability"
	"hotel-management/utils"
)

// ResetStep is the position in the forgot-password wizard.
type ResetStep int

const (
	ResetStepIdentify ResetStep = 1
	ResetStepVerify   ResetStep = 2
	ResetStepReset    ResetStep = 3
)

// Messages shown by the wizard.
const (
	MsgAccountNotFound  = "username or email do not exist"
	MsgOTPMismatch      = "OTP code do not match"
	MsgVerifyFirst      = "Please verify your OTP code first"
	MsgPasswordMismatch = "Password and confirm password do not match"
	MsgPasswordEmpty    = "Password cannot be empty"
	MsgPasswordChanged  = "Changed password successfully"
)

// ParseResetStep reads the step form field. Anything unknown starts over.
func ParseResetStep(raw string) ResetStep {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return ResetStepIdentify
	}
	switch step := ResetStep(n); step {
	case ResetStepIdentify, ResetStepVerify, ResetStepReset:
		return step
	}
	return ResetStepIdentify
}

// ResetForm carries the fields of every step; each step reads its own.
type ResetForm struct {
	Account  string
	OTP      string
	Password string
	Confirm  string
}

// ResetResult tells the caller which step to render next.
type ResetResult struct {
	Step        ResetStep
	Error       string
	MaskedEmail string
	// Completed is set once the password has been replaced.
	Completed bool
}

type PasswordResetService struct {
	Auth     *AuthService
	Mailer   utils.Mailer
	Metrics  *observability.Metrics
	generate func() (string, error)
	log      *zap.Logger
}

func NewPasswordResetService(auth *AuthService, mailer utils.Mailer, metrics *observability.Metrics, log *zap.Logger) *PasswordResetService {
	return &PasswordResetService{Auth: auth, Mailer: mailer, Metrics: metrics, generate: utils.GenerateOTP, log: log}
}

// Handle runs one submitted step.
func (s *PasswordResetService) Handle(ctx context.Context, sess SessionState, step ResetStep, form ResetForm) (ResetResult, error) {
	switch step {
	case ResetStepVerify:
		return s.Verify(sess, form.OTP), nil
	case ResetStepReset:
		return s.Reset(ctx, sess, form.Password, form.Confirm)
	default:
		return s.Identify(ctx, sess, form.Account)
	}
}

// Identify looks the account up by username or email and mails a fresh code.
func (s *PasswordResetService) Identify(ctx context.Context, sess SessionState, account string) (ResetResult, error) {
	user, err := s.Auth.Users.GetByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ResetResult{Step: ResetStepIdentify, Error: MsgAccountNotFound}, nil
		}
		return ResetResult{}, err
	}

	code, err := s.generate()
	if err != nil {
		return ResetResult{}, err
	}
	sess.Delete(SessionOTPVerifiedKey)
	sess.Set(SessionOTPKey, code)
	sess.Set(SessionResetUserKey, strconv.FormatUint(uint64(user.ID), 10))
	s.Metrics.RecordOTPIssued()

	if err := s.Mailer.SendOTP(ctx, user.Email, user.Name, code); err != nil {
		s.Metrics.RecordEmailFailure()
		s.log.Warn("otp email failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return ResetResult{Step: ResetStepVerify, MaskedEmail: utils.MaskEmail(user.Email)}, nil
}

// Verify accepts exactly six digits equal to the issued code.
func (s *PasswordResetService) Verify(sess SessionState, input string) ResetResult {
	mismatch := ResetResult{Step: ResetStepVerify, Error: MsgOTPMismatch}

	stored, ok := sess.Get(SessionOTPKey)
	if !ok {
		return mismatch
	}
	input = strings.TrimSpace(input)
	if !isSixDigits(input) {
		return mismatch
	}
	want, err := strconv.Atoi(stored)
	if err != nil {
		return mismatch
	}
	got, _ := strconv.Atoi(input)
	if got != want {
		return mismatch
	}

	sess.Set(SessionOTPVerifiedKey, "1")
	return ResetResult{Step: ResetStepReset}
}

// Reset replaces the password of the verified account and clears the wizard
// state.
func (s *PasswordResetService) Reset(ctx context.Context, sess SessionState, password, confirm string) (ResetResult, error) {
	verified, _ := sess.Get(SessionOTPVerifiedKey)
	userID, ok := sessionUint(sess, SessionResetUserKey)
	if verified != "1" || !ok {
		return ResetResult{Step: ResetStepIdentify, Error: MsgVerifyFirst}, nil
	}

	if password != confirm {
		return ResetResult{Step: ResetStepReset, Error: MsgPasswordMismatch}, nil
	}

	if err := s.Auth.ChangePassword(ctx, userID, password); err != nil {
		switch {
		case errors.Is(err, ErrEmptyPassword):
			return ResetResult{Step: ResetStepReset, Error: MsgPasswordEmpty}, nil
		case errors.Is(err, ErrUserNotFound):
			sess.Delete(SessionOTPKey, SessionOTPVerifiedKey, SessionResetUserKey)
			return ResetResult{Step: ResetStepIdentify, Error: MsgAccountNotFound}, nil
		}
		return ResetResult{}, err
	}

	sess.Delete(SessionOTPKey, SessionOTPVerifiedKey, SessionResetUserKey)
	s.log.Info("password reset", zap.Uint("user_id", userID))
	return ResetResult{Step: ResetStepIdentify, Completed: true}, nil
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
