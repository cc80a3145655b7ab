package plan

import (
	"fmt"
	"path/filepath"

	"reelsplit/internal/carrier"
	"reelsplit/internal/timing"
)

// ExtractionPlan is one segment's padded extraction window. Windows are
// half-open frame ranges [PaddedStart, PaddedEnd).
type ExtractionPlan struct {
	Segment     carrier.Segment
	PaddedStart int64
	PaddedEnd   int64
	OutputPath  string
}

// Frames returns the padded window length.
func (p ExtractionPlan) Frames() int64 {
	return p.PaddedEnd - p.PaddedStart
}

// Build computes one plan per validated segment, in sequence order.
//
// Each window is the core range padded by handle frames on both sides,
// clamped to the carrier bounds. Where a padded boundary would cross into a
// neighbour's core range, it is clamped to the integer-floor midpoint of the
// inter-core gap, so both neighbours share the gap and back-to-back segments
// degrade the handle to zero on that side. Segments are never dropped.
//
// Build is pure: the same validated input always yields the same plans, so
// a failed run can be restarted from any point.
func Build(v timing.Validated, handle int64, outputDir string) []ExtractionPlan {
	c := v.Carrier
	segments := v.Segments
	if c == nil || len(segments) == 0 {
		return nil
	}
	if handle < 0 {
		handle = 0
	}

	plans := make([]ExtractionPlan, 0, len(segments))
	for i, seg := range segments {
		start := seg.Start - handle
		if start < 0 {
			start = 0
		}
		if i > 0 {
			prev := segments[i-1]
			if start < prev.End {
				start = midpoint(prev.End, seg.Start)
			}
		}

		end := seg.End + handle
		if end > c.TotalFrames {
			end = c.TotalFrames
		}
		if i < len(segments)-1 {
			next := segments[i+1]
			if end > next.Start {
				end = midpoint(seg.End, next.Start)
			}
		}

		plans = append(plans, ExtractionPlan{
			Segment:     seg,
			PaddedStart: start,
			PaddedEnd:   end,
			OutputPath:  outputPath(outputDir, c, seg),
		})
	}
	return plans
}

// midpoint halves the gap between two core boundaries using integer floor,
// so the earlier segment keeps gap/2 frames and the later segment the rest.
func midpoint(prevEnd, nextStart int64) int64 {
	return prevEnd + (nextStart-prevEnd)/2
}

// OutputName is the deterministic segment filename for a carrier and
// sequence number.
func OutputName(carrierID string, sequence int, extension string) string {
	return fmt.Sprintf("%s_%02d.%s", carrierID, sequence, extension)
}

func outputPath(outputDir string, c *carrier.Carrier, seg carrier.Segment) string {
	return filepath.Join(outputDir, c.ID, OutputName(c.ID, seg.Sequence, c.Extension))
}
