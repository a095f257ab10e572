package scheduler

import (
	"context"
	"errors"

	"github.com/classpulse/classpulse-backend/internal/credential"
	"github.com/classpulse/classpulse-backend/internal/syncer"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs periodic background sync cycles for every user that
// currently holds a platform credential.
type Scheduler struct {
	cron     *cron.Cron
	syncer   *syncer.Syncer
	creds    *credential.Store
	provider string
	log      zerolog.Logger
}

// New creates a Scheduler.
func New(s *syncer.Syncer, creds *credential.Store, provider string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		syncer:   s,
		creds:    creds,
		provider: provider,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the sync job with the given cron spec and starts the
// scheduler. An empty spec disables background syncing.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		s.log.Info().Msg("Background sync disabled")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() { s.runAll(ctx) })
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("spec", spec).Msg("Background sync scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runAll(ctx context.Context) {
	users, err := s.creds.ConnectedUsers(ctx, s.provider)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list connected users")
		return
	}

	for _, userID := range users {
		if _, err := s.syncer.Sync(ctx, userID); err != nil {
			// An already-running cycle is expected when a manual sync
			// overlaps the schedule.
			if errors.Is(err, syncer.ErrInProgress) {
				continue
			}
			s.log.Warn().Err(err).Str("user_id", userID).Msg("Scheduled sync failed")
		}
	}
}
