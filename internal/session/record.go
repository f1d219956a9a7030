package session

import (
	"context"
	"time"

	"github.com/gorilla/sessions"
)

// Record is the state kept for one session.
type Record struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	Username   string `json:"username,omitempty"`
}

// Backend stores records by id with a time-to-live.
type Backend interface {
	// Get returns found=false for unknown or expired ids.
	Get(ctx context.Context, id string) (rec Record, found bool, err error)
	Set(ctx context.Context, id string, rec Record, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

const (
	valueLoggedIn = "isLoggedIn"
	valueUsername = "username"
)

// RecordOf reads the record out of the session values.
// A fresh session yields the anonymous record.
func RecordOf(s *sessions.Session) Record {
	var rec Record
	if v, ok := s.Values[valueLoggedIn].(bool); ok {
		rec.IsLoggedIn = v
	}
	if v, ok := s.Values[valueUsername].(string); ok {
		rec.Username = v
	}
	return rec
}

// Apply writes rec into the session values. Call Save to persist it.
func Apply(s *sessions.Session, rec Record) {
	s.Values[valueLoggedIn] = rec.IsLoggedIn
	if rec.Username != "" {
		s.Values[valueUsername] = rec.Username
	} else {
		delete(s.Values, valueUsername)
	}
}
