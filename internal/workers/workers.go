package workers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
)

type Workers struct {
	workers []Worker
	logger  *logger.Logger
}

// NewWorkers assembles the supervisor. A nil journal or watcher is skipped.
func NewWorkers(lifecycle Lifecycle, journal JournalWriter, sessions SessionWatcher, log *logger.Logger) *Workers {
	log = log.WithComponent("workers")

	ws := &Workers{logger: log}
	ws.workers = append(ws.workers, &controllerWorker{lifecycle: lifecycle, logger: log})
	if journal != nil {
		ws.workers = append(ws.workers, journal)
	}
	if sessions != nil {
		ws.workers = append(ws.workers, &sessionWatchWorker{sessions: sessions, logger: log})
	}
	return ws
}

// Run starts every worker and waits for all of them. The first failure
// cancels the rest and is returned.
func (w *Workers) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, worker := range w.workers {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		w.logger.Err(err).Str("func", "*Workers.Run").Msg("worker failed")
		return err
	}
	w.logger.Info().Str("func", "*Workers.Run").Msg("workers stopped")
	return nil
}

// controllerWorker starts the first creation cycle and closes the controller
// once ctx is done.
type controllerWorker struct {
	lifecycle Lifecycle
	logger    *logger.Logger
}

func (c *controllerWorker) Run(ctx context.Context) error {
	if err := c.lifecycle.Start(ctx); err != nil {
		return fmt.Errorf("start controller: %w", err)
	}
	c.logger.Info().Str("func", "*controllerWorker.Run").Msg("controller started")

	<-ctx.Done()

	if err := c.lifecycle.Close(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("close controller: %w", err)
	}
	c.logger.Info().Str("func", "*controllerWorker.Run").Msg("controller closed")
	return nil
}

// sessionWatchWorker logs credential directory appearance and removal. A
// watcher that cannot be opened is logged and does not stop the relay.
type sessionWatchWorker struct {
	sessions SessionWatcher
	logger   *logger.Logger
}

func (s *sessionWatchWorker) Run(ctx context.Context) error {
	err := s.sessions.Watch(ctx, func(present bool) {
		s.logger.Info().Str("func", "*sessionWatchWorker.Run").
			Bool("credentials_present", present).
			Msg("session credentials changed")
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("func", "*sessionWatchWorker.Run").Msg("session watcher disabled")
	}
	return nil
}
