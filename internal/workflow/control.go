package workflow

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// controlFlags mirrors the operations-managed downtime control file. The
// batch runner stops picking up carriers while split_control is false.
type controlFlags struct {
	SplitControl *bool `json:"split_control"`
}

// Paused reports whether the control file requests a processing pause. A
// missing file means processing is allowed; an unreadable or malformed file
// pauses processing so a bad edit fails safe.
func Paused(path string) bool {
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return !errors.Is(err, fs.ErrNotExist)
	}
	var flags controlFlags
	if err := json.Unmarshal(data, &flags); err != nil {
		return true
	}
	return flags.SplitControl != nil && !*flags.SplitControl
}
