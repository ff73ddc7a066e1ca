package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const purgeInterval = 5 * time.Minute

// SessionPurger removes abandoned registration sessions.
type SessionPurger interface {
	PurgeStale(ttl time.Duration) int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  SessionPurger
	ttl       time.Duration
	log       *zap.SugaredLogger
}

// New creates a new scheduler instance
func New(sessions SessionPurger, ttl time.Duration, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		ttl:       ttl,
		log:       log,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(purgeInterval).Do(s.purgeSessions)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// purgeSessions drops registration dialogs idle for longer than the
// configured TTL so a stuck conflict step cannot hold a user forever.
func (s *Scheduler) purgeSessions() {
	if purged := s.sessions.PurgeStale(s.ttl); purged > 0 {
		s.log.Infow("purged stale registration sessions", "count", purged)
	}
}
