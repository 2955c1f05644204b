package oracle

import "sync"

// DefaultMaxTurns bounds a session's history. Sessions keep the most recent
// turns in a ring; history is recorded for future prompt injection but is not
// consulted during synthesis yet.
const DefaultMaxTurns = 256

// Turn is one completed question/answer pair.
type Turn struct {
	Question string
	Answer   Answer
}

// Session is the append-only history of one conversation. A session is a
// single-writer resource: the engine serializes queries per session by
// holding mu across the whole pipeline, so answers are appended in the order
// queries complete and history never interleaves.
type Session struct {
	id       string
	maxTurns int

	// mu serializes queries against this session.
	mu    sync.Mutex
	turns []Turn
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// append records a completed turn, evicting the oldest when full. Caller
// holds mu.
func (s *Session) append(turn Turn) {
	if len(s.turns) >= s.maxTurns {
		s.turns = s.turns[1:]
	}
	s.turns = append(s.turns, turn)
}

// History returns a copy of the recorded turns, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// SessionStore hands out sessions by id, creating them on first use.
// Sessions persist for the process lifetime.
type SessionStore struct {
	mu       sync.Mutex
	maxTurns int
	sessions map[string]*Session
}

// NewSessionStore creates a session store. maxTurns <= 0 uses
// DefaultMaxTurns.
func NewSessionStore(maxTurns int) *SessionStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &SessionStore{
		maxTurns: maxTurns,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session for id, creating it if absent.
func (st *SessionStore) Acquire(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s
	}

	s := &Session{id: id, maxTurns: st.maxTurns}
	st.sessions[id] = s
	return s
}

// Len reports how many sessions exist.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
