package carrier

import "strings"

// Mode distinguishes single-item from multi-item digitisations.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// ParseMode converts a catalogue mode string into a known Mode. Unknown
// values fall back to an inference from the segment count.
func ParseMode(value string, segmentCount int) Mode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModeSingle):
		return ModeSingle
	case string(ModeMulti):
		return ModeMulti
	}
	if segmentCount > 1 {
		return ModeMulti
	}
	return ModeSingle
}

// Segment is one catalogued programme section, with timecodes resolved to
// frame offsets from the start of the carrier file.
type Segment struct {
	ItemID   string
	Sequence int
	Start    int64
	End      int64
	Title    string
}

// Frames returns the segment's core length in frames.
func (s Segment) Frames() int64 {
	return s.End - s.Start
}

// Carrier is the in-memory model of one whole-tape digitisation file.
type Carrier struct {
	ID           string
	SourceItemID string
	SourcePath   string
	Mode         Mode
	FrameRate    float64
	TotalFrames  int64
	Codecs       []string
	Extension    string
	Segments     []Segment
}
