package services

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeBcrypt    = "bcrypt"
	SchemeLegacyMD5 = "legacy-md5"
)

// ErrEmptyPassword is returned when the trimmed password is empty.
var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher hashes new passwords with one scheme and verifies stored
// hashes of either scheme. Input is trimmed of surrounding whitespace first.
type PasswordHasher struct {
	scheme string
	cost   int
}

func NewPasswordHasher(scheme string, bcryptCost int) *PasswordHasher {
	if scheme != SchemeLegacyMD5 {
		scheme = SchemeBcrypt
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PasswordHasher{scheme: scheme, cost: bcryptCost}
}

func (h *PasswordHasher) Scheme() string { return h.scheme }

func (h *PasswordHasher) Hash(password string) (string, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return "", ErrEmptyPassword
	}
	if h.scheme == SchemeLegacyMD5 {
		return LegacyDigest(password), nil
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(b), nil
}

// Verify reports whether password matches the stored hash.
func (h *PasswordHasher) Verify(password, stored string) bool {
	password = strings.TrimSpace(password)
	if password == "" || stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	if isLegacyDigest(stored) {
		return subtle.ConstantTimeCompare([]byte(LegacyDigest(password)), []byte(strings.ToLower(stored))) == 1
	}
	return false
}

// NeedsUpgrade reports whether a verified hash should be re-hashed with the
// configured scheme.
func (h *PasswordHasher) NeedsUpgrade(stored string) bool {
	return h.scheme == SchemeBcrypt && !isBcryptHash(stored)
}

// LegacyDigest is the unsalted hex MD5 of the trimmed password. It matches
// hashes written by the previous system.
func LegacyDigest(password string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(password)))
	return hex.EncodeToString(sum[:])
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func isLegacyDigest(s string) bool {
	if len(s) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
