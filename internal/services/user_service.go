package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/bookshelf-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for the account directory.
type UserServiceProvider interface {
	Register(username, password string) error
	Authenticate(username, password string) bool
	Count() int
}

// PasswordStorage selects how account passwords are kept.
type PasswordStorage string

const (
	// PasswordPlain stores passwords as given and compares them for exact equality.
	PasswordPlain PasswordStorage = "plain"
	// PasswordBcrypt stores bcrypt hashes.
	PasswordBcrypt PasswordStorage = "bcrypt"
)

// ParsePasswordStorage validates a configured storage mode.
func ParsePasswordStorage(s string) (PasswordStorage, error) {
	switch PasswordStorage(s) {
	case PasswordPlain, PasswordBcrypt:
		return PasswordStorage(s), nil
	}
	return "", fmt.Errorf("unknown password storage %q", s)
}

// UserService keeps registered accounts in memory.
type UserService struct {
	mu           sync.RWMutex
	users        []models.User
	storage      PasswordStorage
	eventService EventServiceProvider
}

// NewUserService creates a new UserService. eventService may be nil.
func NewUserService(storage PasswordStorage, eventService EventServiceProvider) *UserService {
	if storage == "" {
		storage = PasswordPlain
	}
	return &UserService{storage: storage, eventService: eventService}
}

// IsValidUsername reports whether username is at least 3 characters of [A-Za-z0-9].
func IsValidUsername(username string) bool {
	if len(username) < 3 {
		return false
	}
	for i := 0; i < len(username); i++ {
		c := username[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}

// Register creates a new account.
func (s *UserService) Register(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	if !IsValidUsername(username) {
		return ErrInvalidUsername
	}

	stored := password
	if s.storage == PasswordBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		stored = string(hashed)
	}

	s.mu.Lock()
	if _, ok := s.find(username); ok {
		s.mu.Unlock()
		return ErrUsernameTaken
	}
	s.users = append(s.users, models.User{Username: username, Password: stored, CreatedAt: time.Now().UTC()})
	s.mu.Unlock()

	if s.eventService != nil {
		s.eventService.CreateEvent("user.register", "info", fmt.Sprintf("User '%s' registered", username), nil, &username)
	}
	return nil
}

// Authenticate reports whether username exists and password matches it exactly.
func (s *UserService) Authenticate(username, password string) bool {
	s.mu.RLock()
	user, ok := s.find(username)
	s.mu.RUnlock()
	if !ok {
		return false
	}

	if s.storage == PasswordBcrypt {
		return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
	}
	return user.Password == password
}

// Count returns the number of registered accounts.
func (s *UserService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// find must be called with s.mu held.
func (s *UserService) find(username string) (models.User, bool) {
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}
