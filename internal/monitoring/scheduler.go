package monitoring

import (
	"fmt"
	"time"

	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/isdelr/bookshelf-be/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Broadcaster pushes messages to live feed subscribers.
type Broadcaster interface {
	BroadcastTo(topic string, message []byte)
}

// Sweeper forgets idle state and reports how much it removed.
type Sweeper interface {
	Cleanup(idle time.Duration) int
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron       *cron.Cron
	sessionSvc services.SessionServiceProvider
	catalogSvc services.CatalogServiceProvider
	hub        Broadcaster
	limiter    Sweeper
	now        func() time.Time
}

// NewScheduler creates a new scheduler instance. hub and limiter may be nil.
func NewScheduler(sessionSvc services.SessionServiceProvider, catalogSvc services.CatalogServiceProvider, hub Broadcaster, limiter Sweeper) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		sessionSvc: sessionSvc,
		catalogSvc: catalogSvc,
		hub:        hub,
		limiter:    limiter,
		now:        time.Now,
	}
}

// Register adds the maintenance jobs. statsSpec is a cron spec such as "@every 30s".
func (s *Scheduler) Register(statsSpec string) error {
	if _, err := s.cron.AddFunc("@every 1m", s.pruneSessions); err != nil {
		return fmt.Errorf("failed to schedule session pruning: %w", err)
	}
	if s.hub != nil {
		if _, err := s.cron.AddFunc(statsSpec, s.broadcastStats); err != nil {
			return fmt.Errorf("invalid stats schedule %q: %w", statsSpec, err)
		}
	}
	if s.limiter != nil {
		if _, err := s.cron.AddFunc("@every 5m", s.sweepLimiter); err != nil {
			return fmt.Errorf("failed to schedule rate limiter cleanup: %w", err)
		}
	}
	return nil
}

// Run starts the scheduler in its own goroutine.
func (s *Scheduler) Run() {
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Starting background scheduler...")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped background scheduler.")
}

func (s *Scheduler) pruneSessions() {
	if n := s.sessionSvc.PruneExpired(s.now()); n > 0 {
		log.Info().Int("pruned", n).Int("active", s.sessionSvc.Active()).Msg("Pruned expired sessions")
	}
}

func (s *Scheduler) broadcastStats() {
	s.hub.BroadcastTo(websocket.GlobalTopic, websocket.NewStatsMessage(s.catalogSvc.Stats()))
}

func (s *Scheduler) sweepLimiter() {
	if n := s.limiter.Cleanup(10 * time.Minute); n > 0 {
		log.Debug().Int("removed", n).Msg("Swept idle rate limiter entries")
	}
}
