package timing

import (
	"fmt"

	"reelsplit/internal/carrier"
	"reelsplit/internal/services"
)

// Validated certifies that a carrier's segment list passed every timing
// rule. It can only be produced by Validate, so downstream components can
// require proof of validation in their signatures.
type Validated struct {
	Carrier  *carrier.Carrier
	Segments []carrier.Segment
}

// Rule names reported in validation failures.
const (
	RuleEndAfterStart    = "end-after-start"
	RuleSequenceOrder    = "sequence-order"
	RuleStartOrder       = "start-order"
	RuleCoreOverlap      = "core-overlap"
	RuleWithinCarrier    = "within-carrier"
	RuleModeSegmentCount = "mode-segment-count"
)

// Validate checks every rule against the carrier model. Violation of any
// rule rejects the whole carrier; there is no partial acceptance. The
// function is pure and performs no I/O.
func Validate(c *carrier.Carrier) (Validated, error) {
	if c == nil {
		return Validated{}, ruleError(RuleModeSegmentCount, "", 0, "carrier model is nil")
	}
	segments := c.Segments

	switch c.Mode {
	case carrier.ModeSingle:
		if len(segments) != 1 {
			return Validated{}, ruleError(RuleModeSegmentCount, c.ID, 0,
				fmt.Sprintf("single-item carrier has %d segments, expected exactly 1", len(segments)))
		}
	case carrier.ModeMulti:
		if len(segments) < 2 {
			return Validated{}, ruleError(RuleModeSegmentCount, c.ID, 0,
				fmt.Sprintf("multi-item carrier has %d segments, expected 2 or more", len(segments)))
		}
	default:
		return Validated{}, ruleError(RuleModeSegmentCount, c.ID, 0,
			fmt.Sprintf("unknown digitisation mode %q", c.Mode))
	}

	for i, seg := range segments {
		if seg.End <= seg.Start {
			return Validated{}, ruleError(RuleEndAfterStart, c.ID, seg.Sequence,
				fmt.Sprintf("end %d is not after start %d", seg.End, seg.Start))
		}
		if seg.Start < 0 || seg.End > c.TotalFrames {
			return Validated{}, ruleError(RuleWithinCarrier, c.ID, seg.Sequence,
				fmt.Sprintf("range [%d, %d] outside carrier duration %d", seg.Start, seg.End, c.TotalFrames))
		}
		if i == 0 {
			continue
		}
		prev := segments[i-1]
		if seg.Sequence <= prev.Sequence {
			return Validated{}, ruleError(RuleSequenceOrder, c.ID, seg.Sequence,
				fmt.Sprintf("sequence %d does not increase after %d", seg.Sequence, prev.Sequence))
		}
		if seg.Start <= prev.Start {
			return Validated{}, ruleError(RuleStartOrder, c.ID, seg.Sequence,
				fmt.Sprintf("start %d does not increase after %d", seg.Start, prev.Start))
		}
		if seg.Start < prev.End {
			return Validated{}, ruleError(RuleCoreOverlap, c.ID, seg.Sequence,
				fmt.Sprintf("core range [%d, %d] overlaps segment %d ending at %d", seg.Start, seg.End, prev.Sequence, prev.End))
		}
	}

	return Validated{Carrier: c, Segments: segments}, nil
}

func ruleError(rule, carrierID string, sequence int, detail string) error {
	subject := carrierID
	if sequence > 0 {
		subject = fmt.Sprintf("%s segment %d", carrierID, sequence)
	}
	return services.Wrap(services.ErrTimingValidation, "timing", "rule "+rule,
		fmt.Sprintf("%s: %s", subject, detail), nil)
}
