package bot

import (
	"sync"

	"github.com/whereismy/whereismy/internal/matching"
)

// step names the position of a chat inside the report or search dialogue.
type step int

const (
	stepNone step = iota
	stepType
	stepPhoto
	stepDescription
	stepCategory
	stepLocation
	stepPlace
	stepContactMethod
	stepContactInfo
	stepSearch
)

// session is the per-chat dialogue state. Draft accumulates the report fields
// as the user answers.
type session struct {
	Step  step
	Draft matching.Report
}

// sessions is a mutex-guarded session map keyed by chat ID. Updates are
// dispatched one at a time, so only the map itself needs the lock.
type sessions struct {
	mu sync.Mutex
	m  map[int64]*session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*session)}
}

// get returns the session for a chat, creating an idle one if needed.
func (s *sessions) get(chatID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[chatID]
	if !ok {
		sess = &session{}
		s.m[chatID] = sess
	}
	return sess
}

// reset returns the chat to the idle state and drops the draft.
func (s *sessions) reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
}
