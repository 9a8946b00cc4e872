package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotel-management/models"
	"hotel-management/observability"
	"hotel-management/testutil"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *gorm.DB
	hasher   *PasswordHasher
	users    *UserService
	auth     *AuthService
	register *RegistrationService
	reset    *PasswordResetService
	rooms    *RoomService
	comments *CommentService
	booking  *BookingService
	bills    *BillService
	mailer   *fakeMailer
	metrics  *observability.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()
	hasher := NewPasswordHasher(SchemeBcrypt, bcrypt.MinCost)
	db := testutil.OpenTestDB(t, hasher.Hash)

	users := NewUserService(db)
	auth := NewAuthService(users, hasher, log)
	mailer := &fakeMailer{}
	metrics := observability.NewMetrics()

	booking := NewBookingService(db, log)
	booking.now = func() time.Time { return testNow }
	comments := NewCommentService(db)
	comments.now = func() time.Time { return testNow }

	return &testEnv{
		db:       db,
		hasher:   hasher,
		users:    users,
		auth:     auth,
		register: NewRegistrationService(db, users, hasher, nil, log),
		reset:    NewPasswordResetService(auth, mailer, metrics, log),
		rooms:    NewRoomService(db),
		comments: comments,
		booking:  booking,
		bills:    NewBillService(db),
		mailer:   mailer,
		metrics:  metrics,
	}
}

func validForm() RegistrationForm {
	return RegistrationForm{
		Name:           "Alice",
		Username:       "alice",
		Password:       "Secr3t!",
		Confirm:        "Secr3t!",
		Email:          "alice@x.com",
		Phone:          "0123456789",
		Gender:         "female",
		Identification: "123456789012",
		CustomerType:   models.CustomerTypeDomestic,
	}
}

func (e *testEnv) mustRegister(t *testing.T, form RegistrationForm) *models.User {
	t.Helper()
	user, fieldErrs, err := e.register.Register(context.Background(), form, nil)
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.NotNil(t, user)
	return user
}

// mapSession is an in-memory SessionState.
type mapSession map[string]string

func (m mapSession) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapSession) Set(key, value string) { m[key] = value }

func (m mapSession) Delete(keys ...string) {
	for _, k := range keys {
		delete(m, k)
	}
}

func (m mapSession) Renew() { m[renewedKey] = "1" }

const renewedKey = "_renewed"

type sentOTP struct {
	To, Name, Code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentOTP
	fail bool
}

func (m *fakeMailer) SendOTP(_ context.Context, to, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("relay unavailable")
	}
	m.sent = append(m.sent, sentOTP{To: to, Name: name, Code: code})
	return nil
}

func (m *fakeMailer) last() sentOTP {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentOTP{}
	}
	return m.sent[len(m.sent)-1]
}

// fileHeader builds a *multipart.FileHeader the way a parsed form would.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["avatar"][0]
}
