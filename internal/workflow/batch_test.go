package workflow_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"reelsplit/internal/queue"
	"reelsplit/internal/workflow"
)

func TestBatchDrainsPendingRuns(t *testing.T) {
	cfg, store, fake, _, orch := newHarness(t)
	seedCarrier(fake, cfg)
	ctx := context.Background()

	if _, err := store.NewRun(ctx, "N_123456", ""); err != nil {
		t.Fatal(err)
	}

	batch := workflow.NewBatch(cfg, store, orch, nil)
	if err := batch.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, err := store.GetByCarrierID(ctx, "N_123456")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != queue.StatusCompleted {
		t.Fatalf("run status = %s", run.Status)
	}
}

func TestBatchContinuesPastFailedCarrier(t *testing.T) {
	cfg, store, fake, _, orch := newHarness(t)
	seedCarrier(fake, cfg)
	ctx := context.Background()

	// N_404040 is not in the catalogue and will fail its load step.
	if _, err := store.NewRun(ctx, "N_404040", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.NewRun(ctx, "N_123456", ""); err != nil {
		t.Fatal(err)
	}

	batch := workflow.NewBatch(cfg, store, orch, nil)
	err := batch.Run(ctx)
	if err == nil {
		t.Fatal("expected batch to report the failed carrier")
	}

	failed, err2 := store.GetByCarrierID(ctx, "N_404040")
	if err2 != nil {
		t.Fatal(err2)
	}
	if failed.Status != queue.StatusFailed {
		t.Fatalf("failed carrier status = %s", failed.Status)
	}
	completed, err2 := store.GetByCarrierID(ctx, "N_123456")
	if err2 != nil {
		t.Fatal(err2)
	}
	if completed.Status != queue.StatusCompleted {
		t.Fatalf("later carrier should still complete, got %s", completed.Status)
	}
}

func TestBatchHonorsCancellationBetweenCarriers(t *testing.T) {
	cfg, store, fake, _, orch := newHarness(t)
	seedCarrier(fake, cfg)

	if _, err := store.NewRun(context.Background(), "N_123456", ""); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := workflow.NewBatch(cfg, store, orch, nil)
	if err := batch.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	run, err := store.GetByCarrierID(context.Background(), "N_123456")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != queue.StatusPending {
		t.Fatalf("cancelled batch must not start carriers, got %s", run.Status)
	}
}

func TestBatchRefusesSecondInstance(t *testing.T) {
	cfg, store, _, _, orch := newHarness(t)

	// Hold the lock the way a concurrently running batch would.
	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "reelsplit.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take lock for test: locked=%v err=%v", locked, err)
	}
	defer func() { _ = lock.Unlock() }()

	batch := workflow.NewBatch(cfg, store, orch, nil)
	if err := batch.Run(context.Background()); err == nil {
		t.Fatal("expected second batch to refuse to start")
	}
}
