package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionKey struct {
	app     string
	user    string
	session string
}

// InMemoryService keeps sessions in a map. Suitable for single-process
// demos and tests; contents vanish with the process.
type InMemoryService struct {
	mu       sync.RWMutex
	sessions map[sessionKey]*Session
	closed   bool
}

// NewInMemoryService returns an empty in-memory store.
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{sessions: make(map[sessionKey]*Session)}
}

func (s *InMemoryService) Create(ctx context.Context, appName, userID, sessionID string) (*Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrServiceClosed
	}

	key := sessionKey{appName, userID, sessionID}
	if _, exists := s.sessions[key]; exists {
		return nil, ErrAlreadyExists
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:        sessionID,
		AppName:   appName,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[key] = sess
	return copySession(sess), nil
}

func (s *InMemoryService) Get(ctx context.Context, appName, userID, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrServiceClosed
	}

	sess, ok := s.sessions[sessionKey{appName, userID, sessionID}]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(sess), nil
}

func (s *InMemoryService) AppendEvent(ctx context.Context, appName, userID, sessionID string, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServiceClosed
	}

	sess, ok := s.sessions[sessionKey{appName, userID, sessionID}]
	if !ok {
		return ErrNotFound
	}
	sess.Events = append(sess.Events, event)
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryService) List(ctx context.Context, appName, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrServiceClosed
	}

	var ids []string
	for key := range s.sessions {
		if key.app == appName && key.user == userID {
			ids = append(ids, key.session)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemoryService) Delete(ctx context.Context, appName, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServiceClosed
	}
	delete(s.sessions, sessionKey{appName, userID, sessionID})
	return nil
}

func (s *InMemoryService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.sessions = nil
	return nil
}

// copySession returns a snapshot so callers cannot mutate stored state.
func copySession(sess *Session) *Session {
	out := *sess
	out.Events = make([]Event, len(sess.Events))
	copy(out.Events, sess.Events)
	return &out
}
