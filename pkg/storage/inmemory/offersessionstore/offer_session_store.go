/*
Copyright WalletID Authors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package offersessionstore stores credential offer sessions in process
// memory. Intended for single-node deployments and tests; use the redis or
// mongodb backend when sessions must survive restarts or be shared.
package offersessionstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/walletid/oid4vc/pkg/restapi/resterr"
	"github.com/walletid/oid4vc/pkg/service/credentialoffer"
)

var logger = log.New("offersessionstore")

// Store keeps offer sessions in a mutex-guarded map. All operations are
// atomic with respect to each other, so a Take can never observe a
// partially-written entry from a concurrent Set.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*credentialoffer.Session
}

// New creates a new instance of Store. Sessions expire ttl after their
// caller-supplied creation time; expiry is enforced by ClearExpired sweeps
// and by Take.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*credentialoffer.Session),
	}
}

// Set inserts or replaces the session stored under id. The session's
// CreatedAt is stored as supplied.
func (s *Store) Set(_ context.Context, id string, session *credentialoffer.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = session.Clone()

	return nil
}

// Get returns a copy of the session stored under id.
func (s *Store) Get(_ context.Context, id string) (*credentialoffer.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, resterr.ErrDataNotFound
	}

	return session.Clone(), nil
}

// Has reports whether a session is stored under id.
func (s *Store) Has(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[id]

	return ok, nil
}

// Delete removes the session stored under id and reports whether an entry
// existed.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)

	return ok, nil
}

// Take removes and returns the session stored under id, enforcing single-use
// consumption: the check-then-delete sequence runs under one lock, and an
// expired session is removed but reported as not found.
func (s *Store) Take(_ context.Context, id string) (*credentialoffer.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, resterr.ErrDataNotFound
	}

	delete(s.sessions, id)

	if expired(session, s.ttl, time.Now()) {
		return nil, resterr.ErrDataNotFound
	}

	return session, nil
}

// ClearExpired removes every session whose creation time plus the store ttl
// is at or before now. The boundary is inclusive: a session expiring exactly
// at now is removed.
func (s *Store) ClearExpired(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for id, session := range s.sessions {
		if expired(session, s.ttl, now) {
			delete(s.sessions, id)

			removed++
		}
	}

	if removed > 0 {
		logger.Debugc(ctx, fmt.Sprintf("Cleared %d expired offer sessions", removed))
	}

	return nil
}

// ClearAll empties the store unconditionally.
func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*credentialoffer.Session)

	return nil
}

func expired(session *credentialoffer.Session, ttl time.Duration, now time.Time) bool {
	return !session.ExpiresAt(ttl).After(now)
}
