package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

// LoginRecorder counts login attempts.
type LoginRecorder interface {
	RecordLogin(success bool)
}

// UserHandler handles HTTP requests for registration and login.
type UserHandler struct {
	users        services.UserServiceProvider
	sessions     services.SessionServiceProvider
	eventService services.EventServiceProvider
	recorder     LoginRecorder
	secureCookie bool
}

// NewUserHandler creates a new UserHandler. eventService and recorder may be nil.
func NewUserHandler(users services.UserServiceProvider, sessions services.SessionServiceProvider, eventService services.EventServiceProvider, recorder LoginRecorder, secureCookie bool) *UserHandler {
	return &UserHandler{
		users:        users,
		sessions:     sessions,
		eventService: eventService,
		recorder:     recorder,
		secureCookie: secureCookie,
	}
}

// CredentialsPayload defines the structure for register and login requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	err := h.users.Register(payload.Username, payload.Password)
	switch {
	case errors.Is(err, services.ErrMissingCredentials):
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
	case errors.Is(err, services.ErrInvalidUsername):
		writeMessage(w, http.StatusBadRequest, "Username must be at least 3 characters long and alphanumeric")
	case errors.Is(err, services.ErrUsernameTaken):
		writeMessage(w, http.StatusConflict, "Username already exists")
	case err != nil:
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		writeMessage(w, http.StatusInternalServerError, "Failed to register user")
	default:
		log.Info().Str("username", payload.Username).Msg("User registered")
		writeMessage(w, http.StatusCreated, "User registered successfully")
	}
}

// Login authenticates the user, issues a token and sets the session cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Username == "" || payload.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if !h.users.Authenticate(payload.Username, payload.Password) {
		h.recordLogin(false)
		log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, session, err := h.sessions.Issue(payload.Username)
	if err != nil {
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to issue token")
		writeMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	h.recordLogin(true)
	if h.eventService != nil {
		username := payload.Username
		h.eventService.CreateEvent("user.login", "info", "User '"+username+"' logged in", nil, &username)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeJSON(w, http.StatusOK, envelope{"message": "Login successful", "token": token})
}

// Logout revokes the caller's session and clears the cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.SessionIDFromContext(r.Context()); ok {
		if err := h.sessions.Revoke(id); err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("Failed to revoke session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	writeMessage(w, http.StatusOK, "Logout successful")
}

// GetMe returns the username behind the caller's token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusForbidden, "User not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Authenticated", "username": identity.Username()})
}

func (h *UserHandler) recordLogin(success bool) {
	if h.recorder != nil {
		h.recorder.RecordLogin(success)
	}
}
