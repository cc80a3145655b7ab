package carrier

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTimecode converts a catalogue timecode into a frame offset. Accepted
// forms: "HH:MM:SS", "HH:MM:SS.mmm", and "HH:MM:SS:FF" where FF counts
// frames within the second.
func ParseTimecode(value string, frameRate float64) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("timecode is empty")
	}
	if frameRate <= 0 {
		return 0, fmt.Errorf("frame rate must be positive, got %v", frameRate)
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return 0, fmt.Errorf("timecode %q: expected HH:MM:SS, HH:MM:SS.mmm or HH:MM:SS:FF", value)
	}

	hours, err := parseComponent(parts[0], "hours")
	if err != nil {
		return 0, fmt.Errorf("timecode %q: %w", value, err)
	}
	minutes, err := parseComponent(parts[1], "minutes")
	if err != nil {
		return 0, fmt.Errorf("timecode %q: %w", value, err)
	}
	if minutes > 59 {
		return 0, fmt.Errorf("timecode %q: minutes out of range", value)
	}

	var seconds float64
	var frames int64
	if len(parts) == 4 {
		whole, err := parseComponent(parts[2], "seconds")
		if err != nil {
			return 0, fmt.Errorf("timecode %q: %w", value, err)
		}
		if whole > 59 {
			return 0, fmt.Errorf("timecode %q: seconds out of range", value)
		}
		seconds = float64(whole)
		frames, err = parseComponent(parts[3], "frames")
		if err != nil {
			return 0, fmt.Errorf("timecode %q: %w", value, err)
		}
		if float64(frames) >= math.Ceil(frameRate) {
			return 0, fmt.Errorf("timecode %q: frame component %d exceeds frame rate %v", value, frames, frameRate)
		}
	} else {
		secs, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || secs < 0 {
			return 0, fmt.Errorf("timecode %q: invalid seconds", value)
		}
		if secs >= 60 {
			return 0, fmt.Errorf("timecode %q: seconds out of range", value)
		}
		seconds = secs
	}

	total := (float64(hours)*3600 + float64(minutes)*60 + seconds) * frameRate
	return int64(math.Round(total)) + frames, nil
}

// FormatTimecode renders a frame offset as HH:MM:SS:FF for display.
func FormatTimecode(frame int64, frameRate float64) string {
	if frameRate <= 0 || frame < 0 {
		return "00:00:00:00"
	}
	fps := int64(math.Round(frameRate))
	if fps <= 0 {
		fps = 1
	}
	totalSeconds := frame / fps
	ff := frame % fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", totalSeconds/3600, (totalSeconds%3600)/60, totalSeconds%60, ff)
}

// Seconds converts a frame offset to seconds for handoff to external tools.
func Seconds(frame int64, frameRate float64) float64 {
	if frameRate <= 0 {
		return 0
	}
	return float64(frame) / frameRate
}

func parseComponent(value, name string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s component", name)
	}
	return n, nil
}
