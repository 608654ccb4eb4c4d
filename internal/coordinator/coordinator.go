// Package coordinator owns the lifecycle of every Chain Monitor in the
// process: probing each target's adapter, starting the ones that come up,
// and fanning cancellation out to all of them on shutdown.
package coordinator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	"github.com/tekiplanet/safejet-processing-deposit/pkg/logger"
)

// Runnable is the subset of *monitor.Monitor the coordinator depends on,
// narrowed so tests can supply a fake without constructing a real adapter
// and pipeline.
type Runnable interface {
	Target() entities.Target
	Probe(ctx context.Context) error
	Run(ctx context.Context) error
}

// Coordinator starts one goroutine per monitor that probes successfully,
// and waits for every started monitor to exit before returning from Run.
type Coordinator struct {
	monitors []Runnable

	mu      sync.Mutex
	running []entities.Target
}

func New(monitors []Runnable) *Coordinator {
	return &Coordinator{monitors: monitors}
}

// Run probes every configured monitor, starts the ones that probe
// successfully, and blocks until every started monitor has exited (after
// draining, once ctx is cancelled); with no started monitor it returns at
// once. A monitor whose probe fails is logged and
// permanently excluded from this run; it is never retried. Run returns nil
// once all started monitors have exited, regardless of whether individual
// monitors returned an error during shutdown — those are logged, not
// propagated, since one chain's failure must not be fatal to the others.
func (c *Coordinator) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, m := range c.monitors {
		target := m.Target()

		if err := m.Probe(ctx); err != nil {
			logger.Error(ctx, "coordinator: monitor failed to start, excluding for process lifetime",
				zap.String("chain", target.Chain.String()),
				zap.String("network", target.Network.String()),
				zap.String("message", err.Error()),
			)
			continue
		}

		c.mu.Lock()
		c.running = append(c.running, target)
		c.mu.Unlock()

		logger.Info(ctx, "coordinator: monitor ready",
			zap.String("chain", target.Chain.String()),
			zap.String("network", target.Network.String()),
		)

		wg.Add(1)
		go func(m Runnable, target entities.Target) {
			defer wg.Done()
			if err := m.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error(ctx, "coordinator: monitor exited with error",
					zap.String("chain", target.Chain.String()),
					zap.String("network", target.Network.String()),
					zap.String("message", err.Error()),
				)
			}
		}(m, target)
	}

	wg.Wait()
	return nil
}

// RunningTargets reports which targets passed their probe and are (or
// were) running under this coordinator, for the /health surface.
func (c *Coordinator) RunningTargets() []entities.Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entities.Target, len(c.running))
	copy(out, c.running)
	return out
}
