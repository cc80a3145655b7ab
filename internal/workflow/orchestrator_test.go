package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"reelsplit/internal/catalogue"
	"reelsplit/internal/config"
	"reelsplit/internal/extract"
	"reelsplit/internal/logging"
	"reelsplit/internal/queue"
	"reelsplit/internal/services"
	"reelsplit/internal/testsupport"
	"reelsplit/internal/workflow"
)

// toolFake simulates the stream-copy and fingerprint tools. Copies record
// the window they extracted; fingerprints are derived from frame numbers so
// a copied window always matches its source range unless a frame is marked
// corrupt.
type toolFake struct {
	mu      sync.Mutex
	windows map[string][2]int64
	corrupt map[string]int64 // output path -> frame producing a bad hash
}

func newToolFake() *toolFake {
	return &toolFake{windows: map[string][2]int64{}, corrupt: map[string]int64{}}
}

func (f *toolFake) Copy(_ context.Context, req extract.CopyRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(req.OutputPath, []byte("clip"), 0o644); err != nil {
		return err
	}
	f.windows[req.OutputPath] = [2]int64{req.StartFrame, req.EndFrame}
	return nil
}

func (f *toolFake) Frames(_ context.Context, path string, startFrame, endFrame int64, _ float64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if window, ok := f.windows[path]; ok {
		startFrame, endFrame = window[0], window[1]
	}
	hashes := make([]string, 0, endFrame-startFrame)
	for frame := startFrame; frame < endFrame; frame++ {
		if bad, ok := f.corrupt[path]; ok && bad == frame {
			hashes = append(hashes, "corrupt")
			continue
		}
		hashes = append(hashes, fmt.Sprintf("h%06d", frame))
	}
	return hashes, nil
}

func tc(frame int64) string {
	seconds := frame / 25
	ff := frame % 25
	return fmt.Sprintf("%02d:%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60, ff)
}

func seedCarrier(fake *testsupport.FakeCatalogue, cfg *config.Config) {
	fake.AddCarrier(
		catalogue.CarrierRecord{
			ID:             "N_123456",
			SourceItemID:   "C-50001",
			SourceFile:     filepath.Join(cfg.Paths.ProcessingDir, "N_123456.mkv"),
			Mode:           "multi",
			FrameRate:      25,
			DurationFrames: 400,
			Codecs:         []string{"ffv1"},
			Extension:      "mkv",
		},
		catalogue.SegmentRecord{ItemID: "C-60001", Sequence: 1, StartTimecode: tc(0), EndTimecode: tc(100), Title: "Part one"},
		catalogue.SegmentRecord{ItemID: "C-60002", Sequence: 2, StartTimecode: tc(100), EndTimecode: tc(250), Title: "Part two"},
		catalogue.SegmentRecord{ItemID: "C-60003", Sequence: 3, StartTimecode: tc(250), EndTimecode: tc(400), Title: "Part three"},
	)
}

func newHarness(t *testing.T) (*config.Config, *queue.Store, *testsupport.FakeCatalogue, *toolFake, *workflow.Orchestrator) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithHandleFrames(20))
	store := testsupport.MustOpenStore(t, cfg)
	fake := testsupport.NewFakeCatalogue()
	tools := newToolFake()
	extractor := extract.NewExtractor(tools, tools, logging.NewNop())
	orch := workflow.NewOrchestrator(cfg, store, fake, extractor, logging.NewNop())
	orch.WithRetryPolicy(services.RetryPolicy{Attempts: 2, Base: time.Millisecond, Max: time.Millisecond})
	return cfg, store, fake, tools, orch
}

func TestProcessCarrierCompletesAndRegistersAllSegments(t *testing.T) {
	cfg, store, fake, _, orch := newHarness(t)
	seedCarrier(fake, cfg)

	result, err := orch.ProcessCarrier(context.Background(), "N_123456")
	if err != nil {
		t.Fatalf("ProcessCarrier: %v", err)
	}
	if result.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", result.Status)
	}
	if result.SegmentsRegistered != 3 {
		t.Fatalf("registered = %d, want 3", result.SegmentsRegistered)
	}

	if fake.CreateItemCalls != 3 {
		t.Fatalf("create item calls = %d", fake.CreateItemCalls)
	}
	if fake.CarrierStatuses["N_123456"] != catalogue.CarrierStatusComplete {
		t.Fatalf("carrier status = %q", fake.CarrierStatuses["N_123456"])
	}
	if _, err := os.Stat(result.CompletionMarker); err != nil {
		t.Fatalf("completion marker missing: %v", err)
	}

	run, err := store.GetByCarrierID(context.Background(), "N_123456")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != queue.StatusCompleted || run.SegmentsDone != 3 {
		t.Fatalf("run = %+v", run)
	}

	regs, err := store.RegistrationsForCarrier(context.Background(), "N_123456")
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 3 {
		t.Fatalf("registrations = %d", len(regs))
	}
	for _, reg := range regs {
		if _, err := os.Stat(reg.OutputPath); err != nil {
			t.Fatalf("registered output missing: %v", err)
		}
	}
}

func TestProcessCarrierIsIdempotentWhenCompleted(t *testing.T) {
	cfg, _, fake, _, orch := newHarness(t)
	seedCarrier(fake, cfg)

	if _, err := orch.ProcessCarrier(context.Background(), "N_123456"); err != nil {
		t.Fatal(err)
	}
	result, err := orch.ProcessCarrier(context.Background(), "N_123456")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", result.Status)
	}
	if fake.CreateItemCalls != 3 {
		t.Fatalf("create item calls = %d, second run must not write", fake.CreateItemCalls)
	}
}

func TestProcessCarrierFailureRetainsEarlierRegistrations(t *testing.T) {
	cfg, store, fake, tools, orch := newHarness(t)
	seedCarrier(fake, cfg)

	// Segment 2's output diverges at frame 157 of its padded window.
	badOutput := filepath.Join(cfg.Paths.ProcessingDir, "N_123456", "N_123456_02.mkv")
	tools.corrupt[badOutput] = 157

	_, err := orch.ProcessCarrier(context.Background(), "N_123456")
	if !errors.Is(err, services.ErrVerification) {
		t.Fatalf("expected ErrVerification, got %v", err)
	}

	run, err := store.GetByCarrierID(context.Background(), "N_123456")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != queue.StatusFailed {
		t.Fatalf("run status = %s", run.Status)
	}
	if run.ErrorMessage == "" {
		t.Fatal("run should record the failure message")
	}

	regs, err := store.RegistrationsForCarrier(context.Background(), "N_123456")
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 1 || regs[0].Sequence != 1 {
		t.Fatalf("registrations = %+v, want only segment 1", regs)
	}
	if fake.CreateItemCalls != 1 {
		t.Fatalf("create item calls = %d", fake.CreateItemCalls)
	}
	if fake.CarrierStatuses["N_123456"] != catalogue.CarrierStatusFailed {
		t.Fatalf("carrier status = %q", fake.CarrierStatuses["N_123456"])
	}

	// The diverging output stays on disk for inspection.
	if _, statErr := os.Stat(badOutput); statErr != nil {
		t.Fatal("diverging output should be retained")
	}
}

func TestProcessCarrierResumesAfterFailure(t *testing.T) {
	cfg, store, fake, tools, orch := newHarness(t)
	seedCarrier(fake, cfg)

	badOutput := filepath.Join(cfg.Paths.ProcessingDir, "N_123456", "N_123456_02.mkv")
	tools.corrupt[badOutput] = 157
	if _, err := orch.ProcessCarrier(context.Background(), "N_123456"); err == nil {
		t.Fatal("expected first run to fail")
	}

	// Clear the fault and re-drive the carrier.
	delete(tools.corrupt, badOutput)
	result, err := orch.ProcessCarrier(context.Background(), "N_123456")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if result.Status != queue.StatusCompleted || result.SegmentsRegistered != 3 {
		t.Fatalf("result = %+v", result)
	}
	// Segment 1 was registered on the first run and must be skipped.
	if fake.CreateItemCalls != 3 {
		t.Fatalf("create item calls = %d, want 3 across both runs", fake.CreateItemCalls)
	}

	regs, err := store.RegistrationsForCarrier(context.Background(), "N_123456")
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 3 {
		t.Fatalf("registrations = %d", len(regs))
	}
}

func TestProcessCarrierUnknownCarrierFails(t *testing.T) {
	_, store, _, _, orch := newHarness(t)

	_, err := orch.ProcessCarrier(context.Background(), "N_999999")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	run, err := store.GetByCarrierID(context.Background(), "N_999999")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != queue.StatusFailed {
		t.Fatalf("run status = %s", run.Status)
	}
}

func TestProcessCarrierRejectsBadTimings(t *testing.T) {
	cfg, store, fake, _, orch := newHarness(t)
	fake.AddCarrier(
		catalogue.CarrierRecord{
			ID:             "N_777777",
			SourceItemID:   "C-50007",
			SourceFile:     filepath.Join(cfg.Paths.ProcessingDir, "N_777777.mkv"),
			Mode:           "multi",
			FrameRate:      25,
			DurationFrames: 400,
			Extension:      "mkv",
		},
		catalogue.SegmentRecord{ItemID: "C-60001", Sequence: 1, StartTimecode: tc(0), EndTimecode: tc(250)},
		catalogue.SegmentRecord{ItemID: "C-60002", Sequence: 2, StartTimecode: tc(100), EndTimecode: tc(400)},
	)

	_, err := orch.ProcessCarrier(context.Background(), "N_777777")
	if !errors.Is(err, services.ErrTimingValidation) {
		t.Fatalf("expected ErrTimingValidation, got %v", err)
	}
	regs, err := store.RegistrationsForCarrier(context.Background(), "N_777777")
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 0 {
		t.Fatal("validation failure must not register segments")
	}
	if fake.CreateItemCalls != 0 {
		t.Fatal("validation failure must not create items")
	}
}

func TestProcessCarrierSingleMode(t *testing.T) {
	cfg, _, fake, _, orch := newHarness(t)
	fake.AddCarrier(
		catalogue.CarrierRecord{
			ID:             "N_555555",
			SourceItemID:   "C-50005",
			SourceFile:     filepath.Join(cfg.Paths.ProcessingDir, "N_555555.mkv"),
			Mode:           "single",
			FrameRate:      25,
			DurationFrames: 400,
			Extension:      "mkv",
		},
		catalogue.SegmentRecord{ItemID: "C-60005", Sequence: 1, StartTimecode: tc(0), EndTimecode: tc(400), Title: "Whole tape"},
	)

	result, err := orch.ProcessCarrier(context.Background(), "N_555555")
	if err != nil {
		t.Fatal(err)
	}
	if result.SegmentsRegistered != 1 {
		t.Fatalf("registered = %d, want 1", result.SegmentsRegistered)
	}
}
