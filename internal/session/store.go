// Package session holds per-operator state for the HTTP service: the
// validated credential and the editable email prompt. Nothing here survives
// a process restart.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// Session is a value snapshot of one operator session. Copies handed out by
// Get never alias store state; mutations go through Store methods.
type Session struct {
	ID           string
	APIKey       string
	KeyValidated bool
	EmailPrompt  string
	CreatedAt    time.Time
	LastSeen     time.Time
}

// Store keeps sessions in memory, expiring them after ttl of inactivity.
// Every access through a Store method counts as activity.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	defaultEmailPrompt string
	ttl                time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// NewStore builds a store whose sessions start with defaultEmailPrompt and
// expire after ttl idle time. A non-positive ttl disables expiry. The
// returned store runs a background sweeper until Close.
func NewStore(defaultEmailPrompt string, ttl time.Duration) *Store {
	s := &Store{
		sessions:           make(map[string]*Session),
		defaultEmailPrompt: defaultEmailPrompt,
		ttl:                ttl,
		done:               make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Close stops the background sweeper. Safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Create mints a new session seeded with the default email prompt.
func (s *Store) Create() Session {
	now := time.Now()
	sess := &Session{
		ID:          uuid.NewString(),
		EmailPrompt: s.defaultEmailPrompt,
		CreatedAt:   now,
		LastSeen:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return *sess
}

// Get returns a copy of the session and refreshes its idle timer.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.locked(id)
	if err != nil {
		return Session{}, err
	}
	return *sess, nil
}

// SetCredential stores a validated API key on the session, in memory only.
func (s *Store) SetCredential(id, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.locked(id)
	if err != nil {
		return err
	}
	sess.APIKey = key
	sess.KeyValidated = true
	return nil
}

// ClearCredential drops the session's key and validated flag. A failed
// validation clears any previously working key.
func (s *Store) ClearCredential(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.locked(id)
	if err != nil {
		return err
	}
	sess.APIKey = ""
	sess.KeyValidated = false
	return nil
}

// SetEmailPrompt overwrites the session's email system prompt.
func (s *Store) SetEmailPrompt(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.locked(id)
	if err != nil {
		return err
	}
	sess.EmailPrompt = text
	return nil
}

// EmailPrompt reads the session's email system prompt.
func (s *Store) EmailPrompt(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.locked(id)
	if err != nil {
		return "", err
	}
	return sess.EmailPrompt, nil
}

// locked resolves id to a live session and refreshes LastSeen. Expired
// sessions are deleted on sight rather than waiting for the sweeper. Callers
// hold s.mu.
func (s *Store) locked(id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	sess.LastSeen = now
	return sess, nil
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastSeen) > s.ttl
}

// sweep frees sessions idle past the ttl. The lazy check in locked keeps
// expiry correct without it; the sweeper only reclaims memory for sessions
// nobody asks for again.
func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *Store) janitor() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			s.sweep(time.Now())
		}
	}
}

// count reports the live session count. Test hook.
func (s *Store) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
