package assessment

import "sync"

// sessionLocks serializes operations per session ID. Operations on
// distinct sessions share nothing and proceed in parallel; two
// submissions for the same session take the same mutex, so a session's
// question pointer can never be advanced twice from the same state.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given session and returns its unlock
// function. Lock entries are kept for the life of the process; the
// session space is small (one per registered product).
func (s *sessionLocks) acquire(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
