package carrier_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"reelsplit/internal/carrier"
	"reelsplit/internal/catalogue"
	"reelsplit/internal/logging"
	"reelsplit/internal/services"
	"reelsplit/internal/testsupport"
)

func TestLoadBuildsOrderedModel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fake := testsupport.NewFakeCatalogue()
	fake.AddCarrier(
		catalogue.CarrierRecord{
			ID:             "N_123456",
			SourceItemID:   "C-12345",
			SourceFile:     "/mnt/processing/N_123456.mkv",
			Mode:           "multi",
			FrameRate:      25,
			DurationFrames: 90000,
			Codecs:         []string{"ffv1", "pcm_s24le"},
			Extension:      "mkv",
		},
		// Returned out of order on purpose.
		catalogue.SegmentRecord{ItemID: "C-12345-2", Sequence: 2, StartTimecode: "00:10:00", EndTimecode: "00:30:00", Title: "Part two"},
		catalogue.SegmentRecord{ItemID: "C-12345-1", Sequence: 1, StartTimecode: "00:00:00", EndTimecode: "00:10:00", Title: "Part one"},
	)

	loader := carrier.NewLoader(cfg, fake, logging.NewNop())
	model, err := loader.Load(context.Background(), "N_123456")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if model.Mode != carrier.ModeMulti {
		t.Fatalf("mode = %s", model.Mode)
	}
	if len(model.Segments) != 2 {
		t.Fatalf("segment count = %d", len(model.Segments))
	}
	if model.Segments[0].Sequence != 1 || model.Segments[1].Sequence != 2 {
		t.Fatalf("segments not ordered by sequence: %+v", model.Segments)
	}
	if model.Segments[0].End != 15000 {
		t.Fatalf("segment 1 end = %d, want 15000", model.Segments[0].End)
	}
	if model.Segments[1].Start != 15000 || model.Segments[1].End != 45000 {
		t.Fatalf("segment 2 = [%d, %d]", model.Segments[1].Start, model.Segments[1].End)
	}
}

func TestLoadFailsWhenNoSegments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fake := testsupport.NewFakeCatalogue()
	fake.AddCarrier(catalogue.CarrierRecord{ID: "N_777777", FrameRate: 25, DurationFrames: 1000})

	loader := carrier.NewLoader(cfg, fake, logging.NewNop())
	_, err := loader.Load(context.Background(), "N_777777")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for segmentless carrier, got %v", err)
	}
}

func TestLoadRetriesTransientReadFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Catalogue.RetryAttempts = 3
	fake := testsupport.NewFakeCatalogue()
	fake.GetCarrierErr = services.Wrap(services.ErrCatalogueUnavailable, "catalogue", "get carrier", "", errors.New("timeout"))

	loader := carrier.NewLoader(cfg, fake, logging.NewNop())
	_, err := loader.Load(context.Background(), "N_123456")
	if !errors.Is(err, services.ErrCatalogueUnavailable) {
		t.Fatalf("expected ErrCatalogueUnavailable, got %v", err)
	}
	if fake.GetCarrierCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fake.GetCarrierCalls)
	}
}

func TestLoadDefaultsFrameRateAndSourcePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fake := testsupport.NewFakeCatalogue()
	fake.AddCarrier(
		catalogue.CarrierRecord{ID: "N_555555", SourceItemID: "C-555", DurationFrames: 1000, Extension: ".mkv"},
		catalogue.SegmentRecord{ItemID: "C-555-1", Sequence: 1, StartTimecode: "00:00:00", EndTimecode: "00:00:20"},
	)

	loader := carrier.NewLoader(cfg, fake, logging.NewNop())
	model, err := loader.Load(context.Background(), "N_555555")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if model.FrameRate != cfg.Splitting.DefaultFrameRate {
		t.Fatalf("frame rate = %v, want default %v", model.FrameRate, cfg.Splitting.DefaultFrameRate)
	}
	want := filepath.Join(cfg.Paths.ProcessingDir, "N_555555.mkv")
	if model.SourcePath != want {
		t.Fatalf("source path = %q, want %q", model.SourcePath, want)
	}
	if model.Mode != carrier.ModeSingle {
		t.Fatalf("mode = %s, want single inference", model.Mode)
	}
}

func TestLoadRejectsUnparseableTimecode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fake := testsupport.NewFakeCatalogue()
	fake.AddCarrier(
		catalogue.CarrierRecord{ID: "N_888888", FrameRate: 25, DurationFrames: 1000},
		catalogue.SegmentRecord{ItemID: "C-888-1", Sequence: 1, StartTimecode: "bogus", EndTimecode: "00:00:20"},
	)

	loader := carrier.NewLoader(cfg, fake, logging.NewNop())
	_, err := loader.Load(context.Background(), "N_888888")
	if !errors.Is(err, services.ErrTimingValidation) {
		t.Fatalf("expected ErrTimingValidation, got %v", err)
	}
}

func TestCarrierIDFromPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	loader := carrier.NewLoader(cfg, testsupport.NewFakeCatalogue(), logging.NewNop())

	id, err := loader.CarrierIDFromPath("/mnt/processing/N_123456.MKV")
	if err != nil {
		t.Fatalf("CarrierIDFromPath: %v", err)
	}
	if id != "N_123456" {
		t.Fatalf("id = %q", id)
	}

	if _, err := loader.CarrierIDFromPath("/mnt/processing/N_123456.avi"); err == nil {
		t.Fatal("expected rejection of unknown extension")
	}
	if _, err := loader.CarrierIDFromPath("/mnt/processing/noext"); err == nil {
		t.Fatal("expected rejection of missing extension")
	}
}
