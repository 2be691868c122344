package workers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"contest-backend/internal/common/logger"
	"contest-backend/internal/features/contest/service"
)

type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepReport, error)
}

// SweepTicker calls Sweep on a fixed interval. Sweeps are idempotent, so the
// ticker is a convenience and not needed for correctness.
type SweepTicker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	sweeper  Sweeper
	interval time.Duration
	wg       sync.WaitGroup
	log      zerolog.Logger
}

func NewSweepTicker(sweeper Sweeper, interval time.Duration) *SweepTicker {
	ctx, cancel := context.WithCancel(context.Background())
	return &SweepTicker{
		ctx:      ctx,
		cancel:   cancel,
		sweeper:  sweeper,
		interval: interval,
		log:      logger.Component("sweep_ticker"),
	}
}

func (t *SweepTicker) Start() {
	t.log.Info().Dur("interval", t.interval).Msg("Starting sweep ticker")
	t.wg.Add(1)

	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := t.sweeper.Sweep(t.ctx); err != nil {
					t.log.Error().Err(err).Msg("Sweep failed")
				}
			case <-t.ctx.Done():
				return
			}
		}
	}()
}

func (t *SweepTicker) Stop() {
	t.cancel()
	t.wg.Wait()
	t.log.Info().Msg("Sweep ticker stopped")
}
