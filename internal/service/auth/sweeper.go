package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/tasktracker-api/internal/store"
)

// TokenSweeper periodically flags ledger entries whose expiry has passed.
// Entries are never deleted.
type TokenSweeper struct {
	tokens     store.TokenStore
	interval   time.Duration
	now        func() time.Time
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewTokenSweeper creates a TokenSweeper that runs every interval.
func NewTokenSweeper(tokens store.TokenStore, interval time.Duration, logger *slog.Logger) *TokenSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TokenSweeper{
		tokens:     tokens,
		interval:   interval,
		now:        time.Now,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With("component", "token_sweeper"),
	}
}

// Start launches the sweep loop. A non-positive interval disables it.
func (s *TokenSweeper) Start() {
	if s.interval <= 0 {
		s.logger.Info("token sweeper disabled")
		return
	}
	s.wg.Add(1)
	go s.loop()
}

// Stop ends the sweep loop and waits for an in-flight sweep.
func (s *TokenSweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

// SweepOnce flags every elapsed entry and returns how many changed.
func (s *TokenSweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.tokens.ExpireElapsed(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired elapsed tokens", "count", n)
	}
	return n, nil
}

func (s *TokenSweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(s.ctx); err != nil {
				s.logger.Error("token sweep failed", "error", err)
			}
		}
	}
}
