package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultSweepInterval = 1 * time.Hour

// Sweeper periodically deletes session rows that can no longer validate.
// Clients never observe it: an expired session is rejected by Validate
// whether or not the row still exists.
type Sweeper struct {
	manager  *Manager
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewSweeper(manager *Manager, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		manager:  manager,
		logger:   logger.With("component", "session_sweeper"),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting session sweeper", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("Session sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.manager.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to sweep expired sessions", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("Swept expired sessions", "deleted", deleted)
	}
}
