package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// ErrEmptySecret is returned when no signing secret is configured.
var ErrEmptySecret = errors.New("signing secret is empty")

// SigningSecret is the process-wide token signing key. It is read on every
// token validation, so a Rotate or Reload takes effect for the next request
// and invalidates all tokens signed with the previous value.
type SigningSecret struct {
	mu     sync.RWMutex
	secret []byte

	// file, when non-empty, is the source Reload reads from.
	file string
	// env is the variable Reload falls back to. It is looked up in envFile
	// first, since the process environment cannot change after start.
	env     string
	envFile string
}

// NewSigningSecret builds a handle seeded from opts. JWTSecretFile wins over
// JWTSecret when both are set.
func NewSigningSecret(opts *Options) (*SigningSecret, error) {
	s := &SigningSecret{file: opts.JWTSecretFile, env: "JWT_SECRET", envFile: ".env"}
	if s.file != "" {
		if _, err := s.Reload(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.Rotate(opts.JWTSecret); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns a copy of the active secret.
func (s *SigningSecret) Current() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]byte, len(s.secret))
	copy(out, s.secret)
	return out
}

// Rotate replaces the active secret.
func (s *SigningSecret) Rotate(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ErrEmptySecret
	}
	s.mu.Lock()
	s.secret = []byte(secret)
	s.mu.Unlock()
	return nil
}

// Reload re-reads the secret from its file, or from the .env file and then
// the environment when no file is configured. It reports whether the active
// secret changed. The previous secret stays active on error.
func (s *SigningSecret) Reload() (bool, error) {
	next, err := s.source()
	if err != nil {
		return false, err
	}
	next = strings.TrimSpace(next)
	if next == "" {
		return false, ErrEmptySecret
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bytes.Equal(s.secret, []byte(next)) {
		return false, nil
	}
	s.secret = []byte(next)
	return true, nil
}

func (s *SigningSecret) source() (string, error) {
	if s.file != "" {
		data, err := os.ReadFile(s.file)
		if err != nil {
			return "", fmt.Errorf("read secret file: %w", err)
		}
		return string(data), nil
	}
	// A missing .env is the normal case outside local development.
	if vals, err := godotenv.Read(s.envFile); err == nil {
		if v := vals[s.env]; v != "" {
			return v, nil
		}
	}
	return os.Getenv(s.env), nil
}
