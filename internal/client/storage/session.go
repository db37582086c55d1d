// Package storage keeps the client's local state: the saved session and the
// HTTP transport used to reach the server.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultSessionFile is where the session is kept when no path is given.
const DefaultSessionFile = "session.json"

// ErrNoSession is returned by ActiveToken when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Session is the persisted login state of the CLI.
type Session struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`

	mu   sync.Mutex
	path string
}

// LoadSession reads the session file at path. A missing file yields an
// empty session.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(s); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	return s, nil
}

// Set records a new login and writes it to disk.
func (s *Session) Set(username, token string, expiresAt time.Time) error {
	s.mu.Lock()
	s.Username, s.Token, s.ExpiresAt = username, token, expiresAt
	s.mu.Unlock()
	return s.Save()
}

// Clear forgets the login and removes the session file.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.Username, s.Token, s.ExpiresAt = "", "", time.Time{}
	s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ActiveToken returns the saved token, or ErrNoSession when it is missing or
// has expired.
func (s *Session) ActiveToken() (string, error) {
	return s.ActiveTokenAt(time.Now())
}

// ActiveTokenAt is ActiveToken evaluated at now.
func (s *Session) ActiveTokenAt(now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Token == "" || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)) {
		return "", ErrNoSession
	}
	return s.Token, nil
}

// Save writes the session with owner-only permissions.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(s)
}
