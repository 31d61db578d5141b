package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/isdelr/bookshelf-be/internal/api"
	"github.com/isdelr/bookshelf-be/internal/api/middleware"
	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/config"
	"github.com/isdelr/bookshelf-be/internal/database"
	"github.com/isdelr/bookshelf-be/internal/logger"
	"github.com/isdelr/bookshelf-be/internal/metrics"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/monitoring"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/isdelr/bookshelf-be/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "bookshelf",
		Short:        "Book catalog and review service",
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, args []string) error { return serve() },
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
		},
		&cobra.Command{
			Use:   "books",
			Short: "Print the seed catalog",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return listBooks(cmd) },
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCatalog(cfg *config.Config) (map[string]models.Book, error) {
	if cfg.CatalogPath == "" {
		return services.DefaultCatalog(), nil
	}
	return services.LoadCatalogFile(cfg.CatalogPath)
}

func serve() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	storage, err := services.ParsePasswordStorage(cfg.PasswordStorage)
	if err != nil {
		return err
	}
	seed, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	// Set up the activity log database
	db, err := database.New(cfg.EventsDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Set up services
	eventService := services.NewEventService(db)
	catalogService := services.NewCatalogService(seed, eventService, hub)
	userService := services.NewUserService(storage, eventService)
	sessionService := services.NewSessionService(issuer)
	asyncCatalog := services.NewAsyncCatalog(catalogService, cfg.AsyncDelay)

	m := metrics.New()
	m.RegisterGauge("catalog", "reviews", "Number of reviews across all books.", func() float64 {
		return float64(catalogService.Stats().Reviews)
	})
	m.RegisterGauge("auth", "active_sessions", "Number of live login sessions.", func() float64 {
		return float64(sessionService.Active())
	})
	m.RegisterGauge("auth", "registered_users", "Number of registered accounts.", func() float64 {
		return float64(userService.Count())
	})

	var limiter *middleware.RateLimiter
	if cfg.AuthRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	}

	// Set up and run the background scheduler
	var sweeper monitoring.Sweeper
	if limiter != nil {
		sweeper = limiter
	}
	scheduler := monitoring.NewScheduler(sessionService, catalogService, hub, sweeper)
	if err := scheduler.Register(cfg.StatsInterval); err != nil {
		return err
	}
	scheduler.Run()

	// Set up router
	router := api.NewRouter(api.Deps{
		Hub:            hub,
		Catalog:        catalogService,
		AsyncCatalog:   asyncCatalog,
		Users:          userService,
		Sessions:       sessionService,
		Events:         eventService,
		Metrics:        m,
		AuthLimiter:    limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Int("books", len(seed)).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		scheduler.Stop()
		return fmt.Errorf("ListenAndServe(): %w", err)
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}

func listBooks(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	books, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	isbns := make([]string, 0, len(books))
	for isbn := range books {
		isbns = append(isbns, isbn)
	}
	// Numeric ISBNs sort numerically, everything else lexically after them.
	sort.Slice(isbns, func(i, j int) bool {
		a, errA := strconv.Atoi(isbns[i])
		b, errB := strconv.Atoi(isbns[j])
		if errA == nil && errB == nil {
			return a < b
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return isbns[i] < isbns[j]
	})

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ISBN\tAUTHOR\tTITLE\tREVIEWS")
	for _, isbn := range isbns {
		b := books[isbn]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", isbn, b.Author, b.Title, len(b.Reviews))
	}
	return tw.Flush()
}
