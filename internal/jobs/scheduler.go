package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SessionPruner sweeps expired relational session rows. The redis backend
// expires documents natively, so the scheduler runs with a nil pruner there.
type SessionPruner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	pruner SessionPruner
	log    zerolog.Logger
}

func NewScheduler(pruner SessionPruner, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		pruner: pruner,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.pruner == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 3 * * *", s.pruneSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for a running prune to finish.
func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) pruneSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.pruner.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session prune failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("pruned expired sessions")
	}
}
