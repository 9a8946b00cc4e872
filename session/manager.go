package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const contextKey = "hotel.session"

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager loads the session before each handler and persists it afterwards.
type Manager struct {
	store Store
	codec *CookieCodec
	opts  Options
	log   *zap.Logger
}

func NewManager(store Store, codec *CookieCodec, opts Options, log *zap.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "hotel_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, codec: codec, opts: opts, log: log}
}

func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := m.load(c)
		c.Set(contextKey, sess)
		c.Writer = &persistingWriter{ResponseWriter: c.Writer, flush: func() { m.flush(c, sess) }}

		c.Next()

		m.flush(c, sess)
	}
}

// flush stores pending changes and sets the cookie. It runs before the first
// body byte so the next request from the browser always sees them.
func (m *Manager) flush(c *gin.Context, sess *Session) {
	if sess.cookieID != "" && sess.cookieID != sess.sentID && !c.Writer.Written() {
		m.writeCookie(c, sess.cookieID)
		sess.sentID = sess.cookieID
	}
	if !sess.dirty {
		return
	}
	sess.dirty = false
	if err := m.store.Save(c.Request.Context(), sess.ID(), sess.values, m.opts.TTL); err != nil {
		m.log.Error("persist session failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	if sess.previousID != "" {
		if err := m.store.Delete(c.Request.Context(), sess.previousID); err != nil {
			m.log.Warn("drop renewed session failed", zap.Error(err))
		}
		sess.previousID = ""
	}
}

type persistingWriter struct {
	gin.ResponseWriter
	flush func()
}

func (w *persistingWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *persistingWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *persistingWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}

func (m *Manager) load(c *gin.Context) *Session {
	if raw, err := c.Cookie(m.opts.CookieName); err == nil {
		id, err := m.codec.Decode(raw)
		if err == nil {
			values, err := m.store.Load(c.Request.Context(), id)
			if err == nil {
				sess := newSession(id, values, false)
				if len(values) > 0 {
					m.touch(c, sess)
				}
				return sess
			}
			m.log.Warn("load session failed; starting a new one", zap.Error(err))
		} else {
			m.log.Debug("rejected session cookie", zap.Error(err))
		}
	}

	return newSession(uuid.NewString(), nil, true)
}

// touch slides the expiry of an active session so it lasts TTL past the
// last request rather than the last write.
func (m *Manager) touch(c *gin.Context, sess *Session) {
	if err := m.store.Touch(c.Request.Context(), sess.ID(), m.opts.TTL); err != nil {
		m.log.Warn("extend session failed", zap.Error(err))
		return
	}
	sess.cookieID = sess.id
}

func (m *Manager) writeCookie(c *gin.Context, id string) {
	value, err := m.codec.Encode(id)
	if err != nil {
		m.log.Error("sign session cookie failed", zap.Error(err))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, value, int(m.opts.TTL.Seconds()), "/", "", m.opts.Secure, true)
}

// Default returns the session loaded for this request. Outside the
// middleware it returns a throwaway empty session.
func Default(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return newSession(uuid.NewString(), nil, true)
}
