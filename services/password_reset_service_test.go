package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResetStep(t *testing.T) {
	assert.Equal(t, ResetStepIdentify, ParseResetStep(""))
	assert.Equal(t, ResetStepIdentify, ParseResetStep("1"))
	assert.Equal(t, ResetStepVerify, ParseResetStep(" 2 "))
	assert.Equal(t, ResetStepReset, ParseResetStep("3"))
	assert.Equal(t, ResetStepIdentify, ParseResetStep("4"))
	assert.Equal(t, ResetStepIdentify, ParseResetStep("x"))
}

func TestIdentify_IssuesCode(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustRegister(t, validForm())
	sess := mapSession{}

	for _, account := range []string{"alice", "alice@x.com"} {
		res, err := env.reset.Identify(context.Background(), sess, account)
		require.NoError(t, err)
		assert.Equal(t, ResetStepVerify, res.Step)
		assert.Empty(t, res.Error)
		assert.Equal(t, "a***e@x.com", res.MaskedEmail)

		code := sess[SessionOTPKey]
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
		assert.Equal(t, strconv.Itoa(int(user.ID)), sess[SessionResetUserKey])
		assert.NotContains(t, sess, SessionUserKey)

		sent := env.mailer.last()
		assert.Equal(t, "alice@x.com", sent.To)
		assert.Equal(t, code, sent.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.OTPIssuedTotal))
}

func TestIdentify_UnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	sess := mapSession{}

	res, err := env.reset.Identify(context.Background(), sess, "ghost")
	require.NoError(t, err)
	assert.Equal(t, ResetResult{Step: ResetStepIdentify, Error: MsgAccountNotFound}, res)
	assert.Empty(t, sess)
}

func TestIdentify_EmailFailureStillAdvances(t *testing.T) {
	env := newTestEnv(t)
	env.mustRegister(t, validForm())
	env.mailer.fail = true
	sess := mapSession{}

	res, err := env.reset.Identify(context.Background(), sess, "alice")
	require.NoError(t, err)
	assert.Equal(t, ResetStepVerify, res.Step)
	assert.Contains(t, sess, SessionOTPKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.EmailFailuresTotal))
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		stored string
		input  string
		ok     bool
	}{
		{"match", "123456", "123456", true},
		{"match with spaces", "123456", " 123456 ", true},
		{"wrong", "123456", "654321", false},
		{"too short", "123456", "12345", false},
		{"leading zero", "123456", "0123456", false},
		{"not numeric", "123456", "12a456", false},
		{"empty", "123456", "", false},
		{"no code issued", "", "123456", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := mapSession{}
			if tt.stored != "" {
				sess[SessionOTPKey] = tt.stored
			}

			res := env.reset.Verify(sess, tt.input)
			if tt.ok {
				assert.Equal(t, ResetResult{Step: ResetStepReset}, res)
				assert.Equal(t, "1", sess[SessionOTPVerifiedKey])
			} else {
				assert.Equal(t, ResetResult{Step: ResetStepVerify, Error: MsgOTPMismatch}, res)
				assert.NotContains(t, sess, SessionOTPVerifiedKey)
			}
		})
	}
}

func TestReset_RequiresVerification(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustRegister(t, validForm())

	sess := mapSession{SessionOTPKey: "123456", SessionResetUserKey: strconv.Itoa(int(user.ID))}
	res, err := env.reset.Reset(context.Background(), sess, "NewPass1", "NewPass1")
	require.NoError(t, err)
	assert.Equal(t, ResetResult{Step: ResetStepIdentify, Error: MsgVerifyFirst}, res)

	_, err = env.auth.Authenticate(context.Background(), "alice", "Secr3t!")
	assert.NoError(t, err)
}

func TestReset_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mustRegister(t, validForm())
	sess := mapSession{}

	res, err := env.reset.Handle(ctx, sess, ResetStepIdentify, ResetForm{Account: "alice"})
	require.NoError(t, err)
	require.Equal(t, ResetStepVerify, res.Step)
	code := sess[SessionOTPKey]

	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}
	res, err = env.reset.Handle(ctx, sess, ResetStepVerify, ResetForm{OTP: wrong})
	require.NoError(t, err)
	assert.Equal(t, ResetResult{Step: ResetStepVerify, Error: MsgOTPMismatch}, res)

	res, err = env.reset.Handle(ctx, sess, ResetStepVerify, ResetForm{OTP: code})
	require.NoError(t, err)
	require.Equal(t, ResetStepReset, res.Step)

	res, err = env.reset.Handle(ctx, sess, ResetStepReset, ResetForm{Password: "NewPass1", Confirm: "Other"})
	require.NoError(t, err)
	assert.Equal(t, ResetResult{Step: ResetStepReset, Error: MsgPasswordMismatch}, res)
	assert.Equal(t, code, sess[SessionOTPKey])

	res, err = env.reset.Handle(ctx, sess, ResetStepReset, ResetForm{Password: "NewPass1", Confirm: "NewPass1"})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Empty(t, sess)

	_, err = env.auth.Authenticate(ctx, "alice", "NewPass1")
	assert.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, "alice", "Secr3t!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestReset_EmptyPassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustRegister(t, validForm())
	sess := mapSession{
		SessionOTPKey:         "123456",
		SessionOTPVerifiedKey: "1",
		SessionResetUserKey:   strconv.Itoa(int(user.ID)),
	}

	res, err := env.reset.Reset(context.Background(), sess, "  ", "  ")
	require.NoError(t, err)
	assert.Equal(t, ResetResult{Step: ResetStepReset, Error: MsgPasswordEmpty}, res)
	assert.Contains(t, sess, SessionOTPVerifiedKey)
}
