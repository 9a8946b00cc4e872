// Package session keeps per-browser state (login identity, pending password
// reset) on the server. Handlers receive an explicit *Session for the current
// request; nothing is stored in package-level state.
package session

import "github.com/google/uuid"

const flashKey = "_flash"

// Session is the key/value state of one browser session.
type Session struct {
	id     string
	values map[string]string
	isNew  bool
	// dirty is set by every write and cleared once the values are stored.
	dirty bool
	// previousID is the id given up by Renew; the manager deletes it on save.
	previousID string

	// cookieID is the id this response must send back in the cookie, and
	// sentID the one already sent. A brand-new session asks for a cookie
	// only once something is stored in it.
	cookieID string
	sentID   string
}

func newSession(id string, values map[string]string, isNew bool) *Session {
	if values == nil {
		values = map[string]string{}
	}
	return &Session{id: id, values: values, isNew: isNew}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	s.values[key] = value
	s.markModified()
}

func (s *Session) Delete(keys ...string) {
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			s.markModified()
		}
	}
}

// Clear removes every value; the stored session is deleted on save.
func (s *Session) Clear() {
	if len(s.values) == 0 {
		return
	}
	s.values = map[string]string{}
	s.markModified()
}

// SetFlash stores a one-shot message shown on the next rendered page.
func (s *Session) SetFlash(msg string) {
	s.Set(flashKey, msg)
}

// PopFlash returns and removes the pending flash message.
func (s *Session) PopFlash() string {
	msg, ok := s.values[flashKey]
	if !ok {
		return ""
	}
	s.Delete(flashKey)
	return msg
}

// Renew moves the values to a fresh id and reissues the cookie. The old id
// is deleted from the store on save. A session minted in this request
// already has an id nobody else has seen and is left alone.
func (s *Session) Renew() {
	if s.isNew {
		return
	}
	if s.previousID == "" {
		s.previousID = s.id
	}
	s.id = uuid.NewString()
	s.cookieID = s.id
	s.dirty = true
}

func (s *Session) markModified() {
	if s.isNew {
		s.cookieID = s.id
	}
	s.dirty = true
}
