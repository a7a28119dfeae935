package auth

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/haandev/iskidms/internal/infrastructure/logging"
)

// sessionsSweptTotal counts sessions removed by the periodic sweep.
var sessionsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "iskidms_sessions_swept_total",
	Help: "Total number of expired sessions removed by the sweeper.",
})

// Sweeper periodically purges expired sessions from the store.
//
// It is an explicit component owned by the process lifecycle: started once at
// startup with Start and stopped at shutdown with Close. Expired sessions are
// already invisible to FindValid, so the sweep is pure housekeeping — it is
// safe to run concurrently with any read or write, and nothing depends on its
// timing.
type Sweeper struct {
	sessions SessionRepository
	logger   *logging.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper running at the given interval.
// A non-positive interval defaults to one hour.
func NewSweeper(sessions SessionRepository, logger *logging.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		sessions: sessions,
		logger:   logger,
		interval: interval,
	}
}

// Start launches the background sweep loop. It returns immediately.
func (s *Sweeper) Start(ctx context.Context) {
	var loopCtx context.Context
	loopCtx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(loopCtx)
}

// Close stops the sweep loop and waits for it to exit.
func (s *Sweeper) Close() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// run executes the sweep on a fixed ticker until the context is cancelled.
func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep deletes expired sessions and records the outcome.
func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return
	}

	if count > 0 {
		sessionsSweptTotal.Add(float64(count))
		s.logger.Info("expired sessions swept", "count", count)
	}
}
