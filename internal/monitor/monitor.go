// Package monitor binds one chain adapter to its ingestion pipeline for a
// single (chain, network) pair, and is the unit the Coordinator starts,
// probes for readiness, and stops.
package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/repositories"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/blockchain"
	"github.com/tekiplanet/safejet-processing-deposit/internal/ingestion"
	"github.com/tekiplanet/safejet-processing-deposit/internal/observability"
	"github.com/tekiplanet/safejet-processing-deposit/pkg/logger"
)

// probeTimeout bounds how long Probe waits on the adapter before reporting
// this target as failed to start.
const probeTimeout = 30 * time.Second

// Monitor drives one target's ingestion pipeline for the lifetime of the
// process, from readiness probe through graceful shutdown.
type Monitor struct {
	target      entities.Target
	adapter     blockchain.ChainAdapter
	checkpoints repositories.CheckpointRepository
	pipeline    *ingestion.Pipeline
}

func New(target entities.Target, adapter blockchain.ChainAdapter, checkpoints repositories.CheckpointRepository, writer ingestion.DepositWriter, updater ingestion.ConfirmationUpdater, cfg ingestion.Config) *Monitor {
	return &Monitor{
		target:      target,
		adapter:     adapter,
		checkpoints: checkpoints,
		pipeline:    ingestion.New(target, adapter, checkpoints, writer, updater, cfg),
	}
}

// Target returns the (chain, network) pair this monitor drives.
func (m *Monitor) Target() entities.Target {
	return m.target
}

// SetMetrics wires this monitor's ingestion pipeline to record observability
// counters/gauges. A nil metrics disables recording.
func (m *Monitor) SetMetrics(metrics *observability.Metrics) {
	m.pipeline.Metrics = metrics
}

// Probe verifies the adapter is reachable and the checkpoint store is
// readable before the Coordinator counts this target as part of the run
// set. A failure here removes the target for the lifetime of the process;
// it is never retried.
func (m *Monitor) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if _, err := m.adapter.TipHeight(ctx); err != nil {
		return fmt.Errorf("monitor %s: probe adapter: %w", m.target, err)
	}
	if _, _, err := m.checkpoints.Get(ctx, m.target); err != nil {
		return fmt.Errorf("monitor %s: probe checkpoint store: %w", m.target, err)
	}
	return nil
}

// Run drives the ingestion pipeline until ctx is cancelled. On return it
// re-asserts the last fully processed height against the checkpoint store,
// independently of the per-block write already performed inside the
// pipeline, as a second line of defense against a crash mid-shutdown. The
// adapter is always closed, even if the pipeline returned an error.
func (m *Monitor) Run(ctx context.Context) error {
	runErr := m.pipeline.Run(ctx)
	m.adapter.Close()

	if height, ok := m.pipeline.LastCheckpoint(); ok {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := m.checkpoints.Set(flushCtx, m.target, height); err != nil {
			logger.Error(flushCtx, "monitor: final checkpoint flush failed",
				zap.String("chain", m.target.Chain.String()),
				zap.String("network", m.target.Network.String()),
				zap.Uint64("blockNumber", height),
				zap.String("message", err.Error()),
			)
		}
		cancel()
	}

	logger.Info(context.Background(), "monitor: stopped",
		zap.String("chain", m.target.Chain.String()),
		zap.String("network", m.target.Network.String()),
	)

	return runErr
}
