// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session exposes the signed-in identity. The identity comes from the
// backend access token and is read-only for the rest of the daemon.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSession    = model.ErrNotSignedIn
	ErrInvalidToken = errors.New("access token has no usable subject")
)

// Identity is the signed-in user.
type Identity struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   *time.Time
}

// Expired reports whether the token has an exp claim at or before now.
func (i Identity) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// Store holds the current identity.
type Store struct {
	mu       sync.RWMutex
	identity *Identity
}

// New builds a store from an access token. userID overrides the token
// subject; with no token and no override the store starts signed out.
func New(accessToken, userID string) (*Store, error) {
	s := &Store{}
	if accessToken == "" && userID == "" {
		return s, nil
	}
	ident, err := parseToken(accessToken)
	if err != nil && userID == "" {
		return nil, err
	}
	if userID != "" {
		ident.UserID = userID
	}
	ident.AccessToken = accessToken
	s.identity = &ident
	return s, nil
}

// Current returns the identity, or ErrNoSession.
func (s *Store) Current() (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, ErrNoSession
	}
	return *s.identity, nil
}

// UserID returns the current user id or the empty string.
func (s *Store) UserID() string {
	ident, err := s.Current()
	if err != nil {
		return ""
	}
	return ident.UserID
}

// AccessToken returns the bearer token for backend calls.
func (s *Store) AccessToken() string {
	ident, err := s.Current()
	if err != nil {
		return ""
	}
	return ident.AccessToken
}

// Replace swaps in a new token, for example after an external refresh.
func (s *Store) Replace(accessToken string) error {
	ident, err := parseToken(accessToken)
	if err != nil {
		return err
	}
	ident.AccessToken = accessToken
	s.mu.Lock()
	s.identity = &ident
	s.mu.Unlock()
	return nil
}

// parseToken reads the claims without verifying the signature. The backend
// verifies the token on every request; the daemon only needs the subject.
func parseToken(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	sub, err := claims.GetSubject()
	if err != nil || !id.IsUUID(sub) {
		return Identity{}, ErrInvalidToken
	}
	ident := Identity{UserID: sub}
	if email, ok := claims["email"].(string); ok {
		ident.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		ident.ExpiresAt = &t
	}
	return ident, nil
}
