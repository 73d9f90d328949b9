package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ostanin/huddle/internal/domain/runtime"
)

// SessionRepository holds the live Session records by session id. Sessions
// are stored by value; callers mutate a copy and Save it back.
type SessionRepository interface {
	Add(session runtime.Session)
	Get(sessionID uuid.UUID) (runtime.Session, bool)
	Remove(sessionID uuid.UUID)
}

type sessionRepository struct {
	// sessions хранит map[session_id]Session
	sessions map[uuid.UUID]runtime.Session

	mu sync.RWMutex
}

func NewSessionRepository() SessionRepository {
	return &sessionRepository{
		sessions: make(map[uuid.UUID]runtime.Session),
	}
}

func (r *sessionRepository) Add(session runtime.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session
}

func (r *sessionRepository) Get(sessionID uuid.UUID) (runtime.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	return session, ok
}

func (r *sessionRepository) Remove(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
}
