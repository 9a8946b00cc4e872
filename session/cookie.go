package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidCookie = errors.New("invalid session cookie")

// CookieCodec signs session ids so a client cannot pick someone else's id.
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

func (c *CookieCodec) Encode(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       id,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *CookieCodec) Decode(value string) (string, error) {
	if value == "" {
		return "", errInvalidCookie
	}

	token, err := jwt.ParseWithClaims(value, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", errInvalidCookie
	}
	return claims.ID, nil
}
