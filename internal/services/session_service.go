package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/models"
)

// SessionServiceProvider defines the interface for login sessions.
type SessionServiceProvider interface {
	Issue(username string) (string, models.Session, error)
	Resolve(token string) (models.Identity, models.Session, error)
	Revoke(sessionID string) error
	PruneExpired(now time.Time) int
	Active() int
}

// SessionService tracks live sessions backed by signed tokens.
type SessionService struct {
	issuer   *auth.TokenIssuer
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(issuer *auth.TokenIssuer) *SessionService {
	return &SessionService{
		issuer:   issuer,
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

// Issue starts a session for username and returns its signed token.
func (s *SessionService) Issue(username string) (string, models.Session, error) {
	if username == "" {
		return "", models.Session{}, ErrUnauthenticated
	}

	token, claims, err := s.issuer.GenerateJWT(username, uuid.New().String())
	if err != nil {
		return "", models.Session{}, fmt.Errorf("failed to sign token: %w", err)
	}

	session := models.Session{
		ID:        claims.ID,
		Username:  username,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return token, session, nil
}

// Resolve validates token and returns the identity of a live session.
func (s *SessionService) Resolve(token string) (models.Identity, models.Session, error) {
	claims, err := s.issuer.ValidateJWT(token)
	if err != nil {
		return models.Identity{}, models.Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	s.mu.Lock()
	session, ok := s.sessions[claims.ID]
	s.mu.Unlock()
	if !ok || session.Username != claims.Username {
		return models.Identity{}, models.Session{}, ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		return models.Identity{}, models.Session{}, fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}

	identity, err := models.NewIdentity(session.Username)
	if err != nil {
		return models.Identity{}, models.Session{}, err
	}
	return identity, session, nil
}

// Revoke ends a session. Its token is refused from then on.
func (s *SessionService) Revoke(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// PruneExpired drops sessions that expired at or before now and returns how many.
func (s *SessionService) PruneExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	pruned := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Active returns the number of live sessions.
func (s *SessionService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
