package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"reelsplit/internal/carrier"
	"reelsplit/internal/logging"
	"reelsplit/internal/plan"
	"reelsplit/internal/services"
)

// CopyRequest describes one lossless stream-copy invocation.
type CopyRequest struct {
	SourcePath string
	StartFrame int64
	EndFrame   int64
	FrameRate  float64
	OutputPath string
}

// StreamCopier extracts a frame window from a source file without
// re-encoding any stream.
type StreamCopier interface {
	Copy(ctx context.Context, req CopyRequest) error
}

// Fingerprinter produces ordered per-frame fingerprints for a file. A zero
// or inverted frame range means the whole file.
type Fingerprinter interface {
	Frames(ctx context.Context, path string, startFrame, endFrame int64, frameRate float64) ([]string, error)
}

// VerificationResult records the positional fingerprint comparison between
// a source window and its extracted output.
type VerificationResult struct {
	SourceFingerprints []string
	OutputFingerprints []string
	SourceFrames       int
	OutputFrames       int
	Equal              bool
	// FirstDivergence is the zero-based index of the first differing
	// fingerprint, or -1 when the manifests match.
	FirstDivergence int
}

// Extractor runs the copy-then-verify sequence for one extraction plan.
type Extractor struct {
	copier StreamCopier
	prints Fingerprinter
	logger *slog.Logger
}

// NewExtractor constructs an extractor over the given tool capabilities.
func NewExtractor(copier StreamCopier, prints Fingerprinter, logger *slog.Logger) *Extractor {
	return &Extractor{
		copier: copier,
		prints: prints,
		logger: logging.NewComponentLogger(logger, "extract"),
	}
}

// Extract copies the plan's padded window to its output path, fingerprints
// both the source range and the whole output, and compares positionally.
//
// A tool failure returns services.ErrExtraction and removes any partial
// output so it can never be registered. A fingerprint mismatch returns
// services.ErrVerification naming the first diverging frame, and the output
// is retained on disk for inspection. Neither failure is retryable.
func (e *Extractor) Extract(ctx context.Context, c *carrier.Carrier, p plan.ExtractionPlan) (VerificationResult, error) {
	req := CopyRequest{
		SourcePath: c.SourcePath,
		StartFrame: p.PaddedStart,
		EndFrame:   p.PaddedEnd,
		FrameRate:  c.FrameRate,
		OutputPath: p.OutputPath,
	}

	e.logger.Info("extracting segment",
		logging.String(logging.FieldCarrierID, c.ID),
		logging.Int(logging.FieldSegment, p.Segment.Sequence),
		logging.Int64("padded_start", p.PaddedStart),
		logging.Int64("padded_end", p.PaddedEnd),
		logging.String("output", p.OutputPath),
	)

	if err := e.copier.Copy(ctx, req); err != nil {
		_ = os.Remove(p.OutputPath)
		return VerificationResult{}, services.Wrap(services.ErrExtraction, "extract", "stream-copy",
			fmt.Sprintf("segment %d of carrier %s", p.Segment.Sequence, c.ID), err)
	}

	source, err := e.prints.Frames(ctx, c.SourcePath, p.PaddedStart, p.PaddedEnd, c.FrameRate)
	if err != nil {
		_ = os.Remove(p.OutputPath)
		return VerificationResult{}, services.Wrap(services.ErrExtraction, "extract", "fingerprint source",
			fmt.Sprintf("segment %d of carrier %s", p.Segment.Sequence, c.ID), err)
	}

	output, err := e.prints.Frames(ctx, p.OutputPath, 0, 0, c.FrameRate)
	if err != nil {
		_ = os.Remove(p.OutputPath)
		return VerificationResult{}, services.Wrap(services.ErrExtraction, "extract", "fingerprint output",
			fmt.Sprintf("segment %d of carrier %s", p.Segment.Sequence, c.ID), err)
	}

	result := compare(source, output)
	if !result.Equal {
		return result, services.Wrap(services.ErrVerification, "extract", "verify",
			fmt.Sprintf("segment %d of carrier %s diverges at frame %d (source %d frames, output %d frames)",
				p.Segment.Sequence, c.ID, result.FirstDivergence, result.SourceFrames, result.OutputFrames), nil)
	}

	e.logger.Info("segment verified lossless",
		logging.String(logging.FieldCarrierID, c.ID),
		logging.Int(logging.FieldSegment, p.Segment.Sequence),
		logging.Int("frames", result.OutputFrames),
	)
	return result, nil
}

func compare(source, output []string) VerificationResult {
	result := VerificationResult{
		SourceFingerprints: source,
		OutputFingerprints: output,
		SourceFrames:       len(source),
		OutputFrames:       len(output),
		FirstDivergence:    -1,
	}
	limit := len(source)
	if len(output) < limit {
		limit = len(output)
	}
	for i := 0; i < limit; i++ {
		if source[i] != output[i] {
			result.FirstDivergence = i
			return result
		}
	}
	if len(source) != len(output) {
		result.FirstDivergence = limit
		return result
	}
	result.Equal = true
	return result
}
