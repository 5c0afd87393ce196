package memory

import (
	"sort"
	"sync"
)

// sessionLog tracks per-session conversation history in memory. It is
// deliberately not persisted; a session's history lives only as long as
// the process.
type sessionLog struct {
	mu       sync.RWMutex
	sessions map[string][]Interaction
}

func newSessionLog() *sessionLog {
	return &sessionLog{sessions: make(map[string][]Interaction)}
}

func (s *sessionLog) add(sessionID string, interaction Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], interaction)
}

func (s *sessionLog) history(sessionID string, n int) []Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.sessions[sessionID]
	if n > 0 && len(log) > n {
		log = log[len(log)-n:]
	}
	out := make([]Interaction, len(log))
	copy(out, log)
	return out
}

func (s *sessionLog) clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *sessionLog) clearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string][]Interaction)
}

func (s *sessionLog) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *sessionLog) ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
