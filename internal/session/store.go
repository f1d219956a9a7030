package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// Store is a sessions.Store backed by a Backend.
type Store struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options

	backend Backend
	ttl     time.Duration
	newID   func() string
}

var _ sessions.Store = (*Store)(nil)

// NewStore returns a store whose records and cookies live for ttl.
// keyPairs are securecookie hash/block key pairs used to sign the id.
//
// Cookies default to HttpOnly, not Secure, Path "/" and Max-Age = ttl.
func NewStore(backend Backend, ttl time.Duration, keyPairs ...[]byte) *Store {
	maxAge := int(ttl / time.Second)
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(maxAge)
		}
	}
	return &Store{
		Codecs: codecs,
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   false,
			SameSite: http.SameSiteLaxMode,
		},
		backend: backend,
		ttl:     ttl,
		newID:   uuid.NewString,
	}
}

func (s *Store) TTL() time.Duration { return s.ttl }

// Get returns the session registered for this request, loading it on first use.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, tampered or
// expired cookie yields a new anonymous session and no error. Backend
// failures are returned along with the anonymous session.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	opts := *s.Options
	sess.Options = &opts
	sess.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.Codecs...); err != nil {
		return sess, nil
	}

	rec, found, err := s.backend.Get(r.Context(), id)
	if err != nil {
		return sess, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return sess, nil
	}

	sess.ID = id
	sess.IsNew = false
	Apply(sess, rec)
	return sess, nil
}

// Save persists the session and sets the cookie. A negative MaxAge deletes
// the record and expires the cookie.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	if sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.backend.Delete(r.Context(), sess.ID); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}

	if sess.ID == "" {
		sess.ID = s.newID()
	}
	if err := s.backend.Set(r.Context(), sess.ID, RecordOf(sess), s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(sess.Name(), encoded, sess.Options))
	sess.IsNew = false
	return nil
}
