package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/bookshelf-be/internal/api/handlers"
	"github.com/isdelr/bookshelf-be/internal/api/middleware"
	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/metrics"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/isdelr/bookshelf-be/internal/websocket"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Hub            *websocket.Hub
	Catalog        services.CatalogServiceProvider
	AsyncCatalog   *services.AsyncCatalog
	Users          services.UserServiceProvider
	Sessions       services.SessionServiceProvider
	Events         services.EventServiceProvider
	Metrics        *metrics.Metrics
	AuthLimiter    *middleware.RateLimiter // nil disables rate limiting
	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	bookHandler := handlers.NewBookHandler(d.Catalog, d.AsyncCatalog)
	var recorder handlers.ReviewRecorder
	var loginRecorder handlers.LoginRecorder
	if d.Metrics != nil {
		recorder, loginRecorder = d.Metrics, d.Metrics
	}
	reviewHandler := handlers.NewReviewHandler(d.Catalog, recorder)
	userHandler := handlers.NewUserHandler(d.Users, d.Sessions, d.Events, loginRecorder, d.SecureCookies)
	healthHandler := handlers.NewHealthHandler(d.Catalog, d.Users, d.Sessions)

	// Public catalog routes
	r.Get("/", bookHandler.GetAll)
	r.Get("/isbn/{isbn}", bookHandler.GetByISBN)
	r.Get("/author/{author}", bookHandler.GetByAuthor)
	r.Get("/title/{title}", bookHandler.GetByTitle)
	r.Get("/review/{isbn}", reviewHandler.Get)

	// Delayed variants of the lookups
	if d.AsyncCatalog != nil {
		r.Get("/async/books", bookHandler.GetAllAsync)
		r.Get("/async/author/{author}", bookHandler.GetByAuthorAsync)
		r.Get("/promise/isbn/{isbn}", bookHandler.GetByISBNPromise)
		r.Get("/promise/title/{title}", bookHandler.GetByTitlePromise)
	}

	// Account routes
	r.Group(func(r chi.Router) {
		if d.AuthLimiter != nil {
			r.Use(d.AuthLimiter.Handler)
		}
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
	})

	// Authenticated routes
	r.Route("/auth", func(r chi.Router) {
		r.Use(auth.Middleware(d.Sessions))
		r.Put("/review/{isbn}", reviewHandler.Upsert)
		r.Delete("/review/{isbn}", reviewHandler.Delete)
		r.Post("/logout", userHandler.Logout)
		r.Get("/me", userHandler.GetMe)
	})

	if d.Events != nil {
		r.Get("/events", handlers.NewEventHandler(d.Events).GetRecent)
	}
	if d.Hub != nil {
		r.Get("/ws", handlers.NewWebSocketHandler(d.Hub, d.AllowedOrigins).Serve)
	}
	r.Get("/health", healthHandler.Get)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Route not found"}` + "\n"))
	})

	return r
}
