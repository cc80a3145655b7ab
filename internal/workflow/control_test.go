package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"reelsplit/internal/workflow"
)

func writeControl(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "downtime_control.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPaused(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{"processing allowed", `{"split_control": true}`, false},
		{"processing paused", `{"split_control": false}`, true},
		{"flag absent", `{}`, false},
		{"malformed file fails safe", `{"split_control":`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeControl(t, tc.content)
			if got := workflow.Paused(path); got != tc.want {
				t.Fatalf("Paused = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPausedMissingFileAllowsProcessing(t *testing.T) {
	if workflow.Paused(filepath.Join(t.TempDir(), "missing.json")) {
		t.Fatal("missing control file should not pause processing")
	}
	if workflow.Paused("") {
		t.Fatal("unconfigured control file should not pause processing")
	}
}
