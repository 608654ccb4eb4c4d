// Package ingestion drives one (chain, network) target's block-by-block
// processing loop, in either push mode (EVM subscriptions) or pull mode
// (BTC/TRX/XRP polling), advancing a durable checkpoint as it goes.
package ingestion

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/repositories"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/blockchain"
	"github.com/tekiplanet/safejet-processing-deposit/internal/observability"
	"github.com/tekiplanet/safejet-processing-deposit/pkg/logger"
)

// Mode is the pipeline's operation mode, derived from the adapter's push
// support at construction time.
type Mode int

const (
	ModePull Mode = iota
	ModePush
)

// DepositWriter is the §4.4 collaborator: filter one block's transactions
// against the wallet directory and write matches as pending deposits.
type DepositWriter interface {
	ProcessBlock(ctx context.Context, target entities.Target, block *entities.Block) error
}

// ConfirmationUpdater is the §4.5 collaborator, invoked once per
// successfully processed block with the new chain height.
type ConfirmationUpdater interface {
	Update(ctx context.Context, target entities.Target, currentHeight uint64) error
}

// Config holds the per-chain tunables that drive tick pacing and batching.
// Values come from internal/config's per-chain settings.
type Config struct {
	BlockDelay    time.Duration
	CheckInterval time.Duration

	// MaxBlocksPerTick caps how many blocks a pull-mode tick advances in one
	// pass (BTC: 50, TRX: 5). Zero means unlimited (XRP processes the full
	// gap each tick).
	MaxBlocksPerTick uint64
}

// Pipeline drives one target's ingestion loop.
type Pipeline struct {
	target      entities.Target
	adapter     blockchain.ChainAdapter
	checkpoints repositories.CheckpointRepository
	writer      DepositWriter
	updater     ConfirmationUpdater
	cfg         Config
	mode        Mode

	lastHeight    atomic.Uint64
	everProcessed atomic.Bool

	// Metrics is optional; a nil value disables recording.
	Metrics *observability.Metrics
}

func New(target entities.Target, adapter blockchain.ChainAdapter, checkpoints repositories.CheckpointRepository, writer DepositWriter, updater ConfirmationUpdater, cfg Config) *Pipeline {
	mode := ModePull
	if adapter.SupportsPush() {
		mode = ModePush
	}
	return &Pipeline{
		target:      target,
		adapter:     adapter,
		checkpoints: checkpoints,
		writer:      writer,
		updater:     updater,
		cfg:         cfg,
		mode:        mode,
	}
}

// Run blocks until ctx is cancelled, driving the pipeline in whichever mode
// the adapter supports.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.mode == ModePush {
		return p.runPush(ctx)
	}
	return p.runPull(ctx)
}

// runPull ticks every CheckInterval, processing [checkpoint+1, tip] each
// time, capped at MaxBlocksPerTick. A block-level error aborts the rest of
// the tick; the next tick resumes from the same unadvanced checkpoint.
func (p *Pipeline) runPull(ctx context.Context) error {
	p.tick(ctx)

	ticker := time.NewTicker(p.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Pipeline) tick(ctx context.Context) {
	last, _, err := p.checkpoints.Get(ctx, p.target)
	if err != nil {
		logger.Error(ctx, "pipeline: read checkpoint", p.fields(0, "", err)...)
		return
	}

	tip, err := p.adapter.TipHeight(ctx)
	if err != nil {
		logger.Error(ctx, "pipeline: fetch tip height", p.fields(0, "", err)...)
		p.recordAdapterError("tip_height")
		return
	}

	from := last + 1
	if from > tip {
		return
	}
	to := tip
	if p.cfg.MaxBlocksPerTick > 0 && to-from+1 > p.cfg.MaxBlocksPerTick {
		to = from + p.cfg.MaxBlocksPerTick - 1
	}

	for height := from; height <= to; height++ {
		if err := p.processBlock(ctx, height); err != nil {
			logger.Error(ctx, "pipeline: aborting tick on block error", p.fields(height, "", err)...)
			return
		}
		if last, ok := p.LastCheckpoint(); !ok || last != height {
			// Block not found yet: stop so the next tick re-fetches it from
			// the same checkpoint instead of checkpointing a later block.
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.BlockDelay):
		}
	}
}

// runPush subscribes to the adapter's push feed and drains incoming heights
// with a single consumer goroutine. A buffered wake signal guarantees a
// height that arrives while the consumer is mid-batch is never lost: it is
// either picked up by the in-flight drain loop or re-wakes the consumer the
// moment it goes idle.
func (p *Pipeline) runPush(ctx context.Context) error {
	heights, err := p.adapter.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: subscribe %s: %w", p.target, err)
	}

	q := newHeightQueue()
	go p.consume(ctx, q)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case h, ok := <-heights:
			if !ok {
				return nil
			}
			q.push(h)
		}
	}
}

func (p *Pipeline) consume(ctx context.Context, q *heightQueue) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}

		for {
			height, ok := q.pop()
			if !ok {
				break
			}

			if err := p.processBlock(ctx, height); err != nil {
				logger.Error(ctx, "pipeline: push-mode block failed", p.fields(height, "", err)...)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.cfg.BlockDelay):
			}
		}
	}
}

// processBlock fetches, filters, and checkpoints a single height, then
// hands the new height to the confirmation updater. A nil block (not-found
// sentinel) is skipped without error and without advancing the checkpoint.
func (p *Pipeline) processBlock(ctx context.Context, height uint64) error {
	block, err := p.adapter.FetchBlock(ctx, height)
	if err != nil {
		p.recordAdapterError("fetch_block")
		return fmt.Errorf("fetch block %d: %w", height, err)
	}
	if block == nil {
		logger.Warn(ctx, "pipeline: block not found, will retry next tick", p.fields(height, "", nil)...)
		return nil
	}

	if err := p.writer.ProcessBlock(ctx, p.target, block); err != nil {
		return fmt.Errorf("process block %d: %w", height, err)
	}

	if err := p.checkpoints.Set(ctx, p.target, height); err != nil {
		return fmt.Errorf("set checkpoint %d: %w", height, err)
	}

	got, found, err := p.checkpoints.Get(ctx, p.target)
	if err != nil || !found || got != height {
		return fmt.Errorf("checkpoint verify mismatch at %d: got=%d found=%v err=%v", height, got, found, err)
	}

	p.lastHeight.Store(height)
	p.everProcessed.Store(true)
	p.recordBlockProcessed(height)

	if p.updater != nil {
		if err := p.updater.Update(ctx, p.target, height); err != nil {
			logger.Error(ctx, "pipeline: confirmation updater failed", p.fields(height, "", err)...)
		}
	}

	return nil
}

// LastCheckpoint reports the height of the most recently fully processed
// block, for a caller that wants to re-assert the checkpoint after Run
// returns. The second value is false if no block has been processed yet.
func (p *Pipeline) LastCheckpoint() (uint64, bool) {
	return p.lastHeight.Load(), p.everProcessed.Load()
}

// Target returns the (chain, network) pair this pipeline drives.
func (p *Pipeline) Target() entities.Target {
	return p.target
}

func (p *Pipeline) fields(height uint64, txHash string, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("chain", p.target.Chain.String()),
		zap.String("network", p.target.Network.String()),
	}
	if height != 0 {
		fields = append(fields, zap.Uint64("blockNumber", height))
	}
	if txHash != "" {
		fields = append(fields, zap.String("txHash", txHash))
	}
	if err != nil {
		fields = append(fields, zap.String("message", err.Error()))
	}
	return fields
}

func (p *Pipeline) recordBlockProcessed(height uint64) {
	if p.Metrics == nil {
		return
	}
	chain, network := p.target.Chain.String(), p.target.Network.String()
	p.Metrics.BlocksProcessed.WithLabelValues(chain, network).Inc()
	p.Metrics.CheckpointHeight.WithLabelValues(chain, network).Set(float64(height))
}

func (p *Pipeline) recordAdapterError(kind string) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.AdapterErrors.WithLabelValues(p.target.Chain.String(), p.target.Network.String(), kind).Inc()
}

// heightQueue is an unbounded FIFO with a coalescing wake signal, giving the
// push-mode consumer the "processing flag + recheck on exit" guarantee
// without losing a wake-up to a race between a late push and the consumer
// going idle.
type heightQueue struct {
	mu    sync.Mutex
	items []uint64
	wake  chan struct{}
}

func newHeightQueue() *heightQueue {
	return &heightQueue{wake: make(chan struct{}, 1)}
}

func (q *heightQueue) push(h uint64) {
	q.mu.Lock()
	q.items = append(q.items, h)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *heightQueue) pop() (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return 0, false
	}
	h := q.items[0]
	q.items = q.items[1:]
	return h, true
}
