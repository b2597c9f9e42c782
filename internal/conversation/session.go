package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/discipline-bot/internal/models"
)

// Session is the transient context of one user.
type Session struct {
	State State
	// Category is the most recently selected category.
	Category models.Category
	LastSeen time.Time
}

func (s Session) empty() bool {
	_, idle := s.State.(Idle)
	return idle && s.Category == ""
}

// Sessions maps users to their conversation context and forgets
// contexts that stay untouched for longer than the TTL.
type Sessions struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	byID map[models.UserID]Session
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:  ttl,
		now:  time.Now,
		byID: make(map[models.UserID]Session),
	}
}

// Get returns the user's session, or an idle one if none is live.
func (s *Sessions) Get(user models.UserID) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[user]
	if !ok || s.expired(sess) {
		delete(s.byID, user)
		return Session{State: Idle{}}
	}
	return sess
}

func (s *Sessions) Put(user models.UserID, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.State == nil {
		sess.State = Idle{}
	}
	if sess.empty() {
		delete(s.byID, user)
		return
	}
	sess.LastSeen = s.now()
	s.byID[user] = sess
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Sweep drops expired sessions and reports how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.byID {
		if s.expired(sess) {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps on every tick until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *Sessions) expired(sess Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.LastSeen) > s.ttl
}
