package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("PASSWORD_HASH_SCHEME", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "bcrypt", cfg.Password.Scheme)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.NotEmpty(t, cfg.Session.Secret)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Nil(t, cfg.TrustedProxies)
	assert.NotContains(t, cfg.String(), cfg.Session.Secret)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"APP_ENV": "production", "SESSION_SECRET": ""}},
		{"unknown hash scheme", map[string]string{"PASSWORD_HASH_SCHEME": "sha1"}},
		{"bad ttl", map[string]string{"SESSION_TTL": "tomorrow"}},
		{"bad integer", map[string]string{"REDIS_DB": "zero"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"*"}, parseList(" , "))
	assert.Equal(t, []string{"http://a", "http://b"}, parseList("http://a, http://b"))
	assert.Nil(t, splitList(" , "))
	assert.Equal(t, []string{"10.0.0.0/8"}, splitList("10.0.0.0/8,"))
}

func TestResolveMySQLDSN(t *testing.T) {
	t.Setenv("MYSQL_URL", "mysql://hotel:pw@db.internal/hotel_db")
	dsn, err := ResolveMySQLDSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "hotel:pw@tcp(db.internal:3306)/hotel_db?")
	assert.Contains(t, dsn, "parseTime=True")

	t.Setenv("MYSQL_URL", "mysql://hotel:pw@db.internal/")
	_, err = ResolveMySQLDSN()
	assert.Error(t, err)
}
