package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"reelsplit/internal/config"
	"reelsplit/internal/logging"
	"reelsplit/internal/queue"
	"reelsplit/internal/services"
)

// Batch drains pending runs one carrier at a time under a process lock.
type Batch struct {
	cfg   *config.Config
	store *queue.Store
	orch  *Orchestrator
	log   *slog.Logger

	pollInterval time.Duration
}

// NewBatch constructs a batch runner over an orchestrator.
func NewBatch(cfg *config.Config, store *queue.Store, orch *Orchestrator, logger *slog.Logger) *Batch {
	poll := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if poll <= 0 {
		poll = 10 * time.Second
	}
	return &Batch{
		cfg:          cfg,
		store:        store,
		orch:         orch,
		log:          logging.NewComponentLogger(logger, "batch"),
		pollInterval: poll,
	}
}

// Run processes pending carriers until the queue is drained or the context
// is cancelled. Only one batch may run per host; a second invocation returns
// immediately. The downtime control file and cancellation are honored only
// between carriers, never mid-extraction.
func (b *Batch) Run(ctx context.Context) error {
	lock := flock.New(filepath.Join(b.cfg.Paths.LogDir, "reelsplit.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "batch", "acquire lock", lock.Path(), err)
	}
	if !locked {
		return services.Wrap(services.ErrConfiguration, "batch", "acquire lock",
			"another reelsplit batch is already running", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	var processed, failed int
	for {
		if err := ctx.Err(); err != nil {
			b.log.Info("batch cancelled", logging.Int("processed", processed))
			return err
		}
		if Paused(b.cfg.Paths.ControlFile) {
			b.log.Info("processing paused by control file",
				logging.String("control_file", b.cfg.Paths.ControlFile),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.pollInterval):
			}
			continue
		}

		run, err := b.store.NextForStatuses(ctx, queue.StatusPending)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "batch", "next run", "", err)
		}
		if run == nil {
			break
		}

		if _, err := b.orch.ProcessCarrier(ctx, run.CarrierID); err != nil {
			// One carrier's failure never halts the batch.
			failed++
		}
		processed++
	}

	b.log.Info("batch drained",
		logging.Int("processed", processed),
		logging.Int("failed", failed),
	)
	if failed > 0 {
		return services.Wrap(services.ErrExtraction, "batch", "run",
			fmt.Sprintf("%d of %d carriers failed", failed, processed), nil)
	}
	return nil
}
