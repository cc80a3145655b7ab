package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a carrier run.
type Status string

const (
	StatusPending     Status = "pending"
	StatusLoading     Status = "loading"
	StatusValidating  Status = "validating"
	StatusPlanning    Status = "planning"
	StatusExtracting  Status = "extracting"
	StatusRegistering Status = "registering"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusLoading,
	StatusValidating,
	StatusPlanning,
	StatusExtracting,
	StatusRegistering,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusLoading:     {},
	StatusValidating:  {},
	StatusPlanning:    {},
	StatusExtracting:  {},
	StatusRegistering: {},
}

// Run is one carrier's trip through the segmentation pipeline.
type Run struct {
	ID              int64
	CarrierID       string
	SourcePath      string
	Mode            string
	Status          Status
	ErrorMessage    string
	ProgressStage   string
	ProgressMessage string
	CorrelationID   string
	SegmentsTotal   int
	SegmentsDone    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Registration records one catalogued segment item so reruns can skip it.
type Registration struct {
	CarrierID  string
	Sequence   int
	ItemID     string
	OutputPath string
	Digest     string
	CreatedAt  time.Time
}

// HealthSummary describes aggregated run counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessingStatus reports whether a status reflects an in-flight step.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsProcessing returns true when the run is mid-pipeline.
func (r Run) IsProcessing() bool {
	return IsProcessingStatus(r.Status)
}

// SetProgress updates the run's progress fields together.
func (r *Run) SetProgress(stage, message string) {
	r.ProgressStage = stage
	r.ProgressMessage = message
}

// SetFailed marks the run as failed with the given error message.
func (r *Run) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = message
	r.ProgressStage = "Failed"
	r.ProgressMessage = message
}
