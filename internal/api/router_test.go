package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookshelf-be/internal/api/middleware"
	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/database"
	"github.com/isdelr/bookshelf-be/internal/metrics"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	catalog *services.CatalogService
	users   *services.UserService
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()

	db, err := database.New("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	events := services.NewEventService(db)
	seed := map[string]models.Book{
		"ISBN001": {Author: "Robert Martin", Title: "Clean Code", Reviews: models.Reviews{}},
		"ISBN002": {Author: "J.R.R. Tolkien", Title: "The Hobbit", Reviews: models.Reviews{}},
	}
	catalog := services.NewCatalogService(seed, events, nil)
	users := services.NewUserService(services.PasswordPlain, events)

	router := NewRouter(Deps{
		Catalog:      catalog,
		AsyncCatalog: services.NewAsyncCatalog(catalog, time.Millisecond),
		Users:        users,
		Sessions:     services.NewSessionService(issuer),
		Events:       events,
		Metrics:      metrics.New(),
		AuthLimiter:  limiter,
	})
	return &testServer{t: t, handler: router, catalog: catalog, users: users}
}

type response struct {
	code int
	body map[string]interface{}
	raw  *httptest.ResponseRecorder
}

func (s *testServer) do(method, target, body, token string) response {
	s.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	res := response{code: w.Code, raw: w}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res.body), w.Body.String())
	}
	return res
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/register", `{"username":"`+username+`","password":"`+password+`"}`, "")
	require.Equal(s.t, http.StatusCreated, res.code)
	res = s.do(http.MethodPost, "/login", `{"username":"`+username+`","password":"`+password+`"}`, "")
	require.Equal(s.t, http.StatusOK, res.code)
	token, ok := res.body["token"].(string)
	require.True(s.t, ok)
	return token
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"created", `{"username":"alice","password":"pw"}`, http.StatusCreated},
		{"duplicate", `{"username":"alice","password":"other"}`, http.StatusConflict},
		{"missing password", `{"username":"bob"}`, http.StatusBadRequest},
		{"invalid username", `{"username":"b!","password":"pw"}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.do(http.MethodPost, "/register", tt.body, "")
			assert.Equal(t, tt.wantStatus, res.code)
			assert.NotEmpty(t, res.body["message"])
		})
	}
	assert.Equal(t, 1, s.users.Count())
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.users.Register("alice", "pw"))

	res := s.do(http.MethodPost, "/login", `{"username":"alice"}`, "")
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = s.do(http.MethodPost, "/login", `{"username":"alice","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, res.code)

	res = s.do(http.MethodPost, "/login", `{"username":"alice","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, res.code)
	assert.NotEmpty(t, res.body["token"])

	var cookie *http.Cookie
	for _, c := range res.raw.Result().Cookies() {
		if c.Name == auth.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, res.body["token"], cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		target     string
		wantStatus int
		wantKey    string
	}{
		{"/", http.StatusOK, "books"},
		{"/isbn/ISBN001", http.StatusOK, "book"},
		{"/isbn/ISBN999", http.StatusNotFound, ""},
		{"/author/martin", http.StatusOK, "books"},
		{"/author/xyz", http.StatusNotFound, ""},
		{"/title/" + url.PathEscape("the hob"), http.StatusOK, "books"},
		{"/title/xyz", http.StatusNotFound, ""},
		{"/review/ISBN001", http.StatusNotFound, ""},
		{"/review/ISBN999", http.StatusNotFound, ""},
		{"/async/books", http.StatusOK, "books"},
		{"/async/author/tolkien", http.StatusOK, "books"},
		{"/async/author/xyz", http.StatusNotFound, ""},
		{"/promise/isbn/ISBN002", http.StatusOK, "book"},
		{"/promise/isbn/ISBN999", http.StatusNotFound, ""},
		{"/promise/title/clean", http.StatusOK, "books"},
		{"/promise/title/xyz", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			res := s.do(http.MethodGet, tt.target, "", "")
			assert.Equal(t, tt.wantStatus, res.code)
			assert.NotEmpty(t, res.body["message"])
			if tt.wantKey != "" {
				assert.Contains(t, res.body, tt.wantKey)
			}
		})
	}
}

func TestSearchMatchesSeveralBooks(t *testing.T) {
	s := newTestServer(t, nil)
	res := s.do(http.MethodGet, "/title/c", "", "")
	require.Equal(t, http.StatusOK, res.code)
	books := res.body["books"].(map[string]interface{})
	assert.Len(t, books, 1)

	res = s.do(http.MethodGet, "/author/r", "", "")
	require.Equal(t, http.StatusOK, res.code)
	books = res.body["books"].(map[string]interface{})
	assert.Len(t, books, 2)
}

func TestReviewLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.login("alice", "pw")
	bob := s.login("bob", "pw")

	// Unauthenticated attempts never reach the store.
	res := s.do(http.MethodPut, "/auth/review/ISBN001?review=great", "", "")
	assert.Equal(t, http.StatusUnauthorized, res.code)
	res = s.do(http.MethodPut, "/auth/review/ISBN001?review=great", "", "forged")
	assert.Equal(t, http.StatusForbidden, res.code)
	assert.Equal(t, 0, s.catalog.Stats().Reviews)

	res = s.do(http.MethodPut, "/auth/review/ISBN001", "", alice)
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = s.do(http.MethodPut, "/auth/review/ISBN999?review=great", "", alice)
	assert.Equal(t, http.StatusNotFound, res.code)

	res = s.do(http.MethodPut, "/auth/review/ISBN001?review=great", "", alice)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, map[string]interface{}{"alice": "great"}, res.body["reviews"])

	res = s.do(http.MethodPut, "/auth/review/ISBN001?review="+url.QueryEscape("just ok"), "", alice)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, map[string]interface{}{"alice": "just ok"}, res.body["reviews"])

	res = s.do(http.MethodPut, "/auth/review/ISBN001?review=meh", "", bob)
	require.Equal(t, http.StatusOK, res.code)

	res = s.do(http.MethodGet, "/review/ISBN001", "", "")
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, map[string]interface{}{"alice": "just ok", "bob": "meh"}, res.body["reviews"])

	res = s.do(http.MethodDelete, "/auth/review/ISBN002", "", alice)
	assert.Equal(t, http.StatusNotFound, res.code)
	res = s.do(http.MethodDelete, "/auth/review/ISBN999", "", alice)
	assert.Equal(t, http.StatusNotFound, res.code)

	res = s.do(http.MethodDelete, "/auth/review/ISBN001", "", alice)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, map[string]interface{}{"bob": "meh"}, res.body["reviews"])

	res = s.do(http.MethodDelete, "/auth/review/ISBN001", "", bob)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, map[string]interface{}{}, res.body["reviews"])

	res = s.do(http.MethodGet, "/review/ISBN001", "", "")
	assert.Equal(t, http.StatusNotFound, res.code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("alice", "pw")

	res := s.do(http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "alice", res.body["username"])

	res = s.do(http.MethodPost, "/auth/logout", "", token)
	require.Equal(t, http.StatusOK, res.code)

	res = s.do(http.MethodPut, "/auth/review/ISBN001?review=late", "", token)
	assert.Equal(t, http.StatusForbidden, res.code)
}

func TestEventsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login("alice", "pw")
	res := s.do(http.MethodPut, "/auth/review/ISBN001?review=great", "", token)
	require.Equal(t, http.StatusOK, res.code)

	res = s.do(http.MethodGet, "/events?limit=10", "", "")
	require.Equal(t, http.StatusOK, res.code)
	events := res.body["events"].([]interface{})
	require.Len(t, events, 3)

	var types []string
	for _, e := range events {
		types = append(types, e.(map[string]interface{})["type"].(string))
	}
	assert.ElementsMatch(t, []string{"user.register", "user.login", "review.upsert"}, types)
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(0.001, 1))

	res := s.do(http.MethodPost, "/login", `{"username":"x","password":"y"}`, "")
	assert.Equal(t, http.StatusUnauthorized, res.code)
	res = s.do(http.MethodPost, "/login", `{"username":"x","password":"y"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, res.code)

	// Catalog reads are not limited.
	res = s.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, res.code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	res := s.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "OK", res.body["message"])
	assert.Contains(t, res.body, "catalog")

	res = s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, res.code)
	assert.Contains(t, res.raw.Body.String(), "bookshelf_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	res := s.do(http.MethodGet, "/nope/nope", "", "")
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "Route not found", res.body["message"])
}
