package services

import (
	"crypto/rand"
	"sync"
	"time"

	"quizroom/models"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// SessionStore is the process-wide collection of live game sessions, keyed
// by shareable code. It is an explicit injected object rather than a
// module-level map so the lifecycle engine can be exercised without a
// network layer. Sessions are memory-resident and die with the process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.GameSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.GameSession),
	}
}

// PutNew assigns the session a fresh 6-character uppercase alphanumeric
// code and inserts it, all under one write lock, so two concurrent creates
// can never mint the same code and overwrite each other.
func (s *SessionStore) PutNew(session *models.GameSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		code := randomCode()
		if _, taken := s.sessions[code]; !taken {
			session.Code = code
			s.sessions[code] = session
			return
		}
	}
}

func randomCode() string {
	// Rejection-sample to keep every charset character equally likely;
	// 252 is the largest multiple of len(codeCharset) below 256.
	const limit = 256 - 256%len(codeCharset)

	buf := make([]byte, codeLength)
	var b [1]byte
	for i := 0; i < codeLength; {
		rand.Read(b[:])
		if int(b[0]) >= limit {
			continue
		}
		buf[i] = codeCharset[int(b[0])%len(codeCharset)]
		i++
	}
	return string(buf)
}

func (s *SessionStore) Put(session *models.GameSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Code] = session
}

func (s *SessionStore) Get(code string) (*models.GameSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[code]
	return session, ok
}

func (s *SessionStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, code)
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// IdleSince returns the codes of sessions with no activity since the
// cutoff. The janitor uses this to reap abandoned rooms.
func (s *SessionStore) IdleSince(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var codes []string
	for code, session := range s.sessions {
		session.Mu.Lock()
		idle := session.LastActivity.Before(cutoff)
		session.Mu.Unlock()
		if idle {
			codes = append(codes, code)
		}
	}
	return codes
}
