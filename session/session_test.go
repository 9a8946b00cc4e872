package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, "")
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	mr, store := setupTestStore(t)
	ctx := context.Background()

	err := store.Save(ctx, "abc", map[string]string{"user_id": "7", "otp_code": "123456"}, time.Hour)
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	values, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user_id": "7", "otp_code": "123456"}, values)

	// Save replaces, it does not merge.
	require.NoError(t, store.Save(ctx, "abc", map[string]string{"user_id": "7"}, time.Hour))
	values, err = store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user_id": "7"}, values)

	require.NoError(t, store.Delete(ctx, "abc"))
	values, err = store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestRedisStore_SaveEmptyDeletes(t *testing.T) {
	mr, store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "x", map[string]string{"a": "b"}, time.Minute))
	require.NoError(t, store.Save(ctx, "x", map[string]string{}, time.Minute))
	assert.False(t, mr.Exists("session:x"))
}

func TestCookieCodec(t *testing.T) {
	codec := NewCookieCodec("secret")

	value, err := codec.Encode("sid-1")
	require.NoError(t, err)

	id, err := codec.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", id)

	_, err = NewCookieCodec("other").Decode(value)
	assert.Error(t, err)

	_, err = codec.Decode("")
	assert.Error(t, err)

	_, err = codec.Decode("not-a-token")
	assert.Error(t, err)
}

func TestSession_Flash(t *testing.T) {
	s := newSession("id", nil, true)
	assert.Equal(t, "", s.PopFlash())

	s.SetFlash("hello")
	assert.True(t, s.dirty)
	assert.Equal(t, "hello", s.PopFlash())
	assert.Equal(t, "", s.PopFlash())
}

func TestManager_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, store := setupTestStore(t)
	mgr := NewManager(store, NewCookieCodec("secret"), Options{CookieName: "sid", TTL: time.Hour}, zap.NewNop())

	r := gin.New()
	r.Use(mgr.Middleware())
	r.GET("/set", func(c *gin.Context) {
		Default(c).Set("user_id", "42")
		c.String(http.StatusOK, "ok")
	})
	r.GET("/get", func(c *gin.Context) {
		v, _ := Default(c).Get("user_id")
		c.String(http.StatusOK, v)
	})
	r.GET("/clear", func(c *gin.Context) {
		Default(c).Clear()
		c.String(http.StatusOK, "cleared")
	})

	t.Run("read-only request sets no cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get", nil))
		assert.Empty(t, w.Result().Cookies())
		assert.Equal(t, "", w.Body.String())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "sid", cookie.Name)
	assert.True(t, cookie.HttpOnly)

	t.Run("value survives across requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/get", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "42", w.Body.String())
	})

	t.Run("tampered cookie starts a fresh session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/get", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: cookie.Value + "x"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "", w.Body.String())
	})

	t.Run("clear drops the stored values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/clear", nil)
		req.AddCookie(cookie)
		r.ServeHTTP(httptest.NewRecorder(), req)

		req = httptest.NewRequest(http.MethodGet, "/get", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "", w.Body.String())
	})
}

func TestManager_PersistsBeforeBodyIsWritten(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, store := setupTestStore(t)
	mgr := NewManager(store, NewCookieCodec("secret"), Options{CookieName: "sid", TTL: time.Hour}, zap.NewNop())

	var storedDuringWrite bool
	r := gin.New()
	r.Use(mgr.Middleware())
	r.GET("/set", func(c *gin.Context) {
		sess := Default(c)
		sess.Set("user_id", "7")
		c.Writer.WriteHeaderNow()
		storedDuringWrite = mr.Exists("session:" + sess.ID())
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, storedDuringWrite)
}

func TestManager_RenewIssuesNewID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, store := setupTestStore(t)
	codec := NewCookieCodec("secret")
	mgr := NewManager(store, codec, Options{CookieName: "sid", TTL: time.Hour}, zap.NewNop())

	r := gin.New()
	r.Use(mgr.Middleware())
	r.GET("/visit", func(c *gin.Context) {
		Default(c).Set("otp_code", "123456")
		c.Status(http.StatusNoContent)
	})
	r.GET("/login", func(c *gin.Context) {
		sess := Default(c)
		sess.Renew()
		sess.Set("user_id", "7")
		c.Status(http.StatusNoContent)
	})
	r.GET("/get", func(c *gin.Context) {
		v, _ := Default(c).Get("user_id")
		c.String(http.StatusOK, v)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/visit", nil))
	require.Len(t, w.Result().Cookies(), 1)
	before := w.Result().Cookies()[0]
	oldID, err := codec.Decode(before.Value)
	require.NoError(t, err)
	require.True(t, mr.Exists("session:"+oldID))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(before)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Len(t, w.Result().Cookies(), 1)
	after := w.Result().Cookies()[0]
	newID, err := codec.Decode(after.Value)
	require.NoError(t, err)

	assert.NotEqual(t, oldID, newID)
	assert.False(t, mr.Exists("session:"+oldID))
	assert.Equal(t, "123456", mr.HGet("session:"+newID, "otp_code"))

	req = httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(after)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "7", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(before)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "", w.Body.String())
}

func TestManager_ReadExtendsExpiry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, store := setupTestStore(t)
	codec := NewCookieCodec("secret")
	mgr := NewManager(store, codec, Options{CookieName: "sid", TTL: time.Hour}, zap.NewNop())

	r := gin.New()
	r.Use(mgr.Middleware())
	r.GET("/set", func(c *gin.Context) {
		Default(c).Set("user_id", "42")
		c.Status(http.StatusNoContent)
	})
	r.GET("/get", func(c *gin.Context) {
		v, _ := Default(c).Get("user_id")
		c.String(http.StatusOK, v)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookie := w.Result().Cookies()[0]
	id, err := codec.Decode(cookie.Value)
	require.NoError(t, err)

	mr.FastForward(50 * time.Minute)
	assert.Equal(t, 10*time.Minute, mr.TTL("session:"+id))

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "42", w.Body.String())
	assert.Equal(t, time.Hour, mr.TTL("session:"+id))
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, 3600, w.Result().Cookies()[0].MaxAge)
}
