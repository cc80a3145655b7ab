package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"reelsplit/internal/carrier"
)

// manifestHeader must appear in every framemd5 manifest. Its absence means
// the tool produced something other than an MD5 manifest.
const manifestHeader = "#hash: MD5"

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFmpeg implements StreamCopier and Fingerprinter over the ffmpeg binary.
type FFmpeg struct {
	binary string
	run    commandRunner
}

// NewFFmpeg constructs the tool wrapper. An empty binary falls back to
// "ffmpeg" on PATH.
func NewFFmpeg(binary string) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary, run: runCommand}
}

// WithCommandRunner injects a custom command runner for tests.
func (f *FFmpeg) WithCommandRunner(r commandRunner) {
	if f != nil && r != nil {
		f.run = r
	}
}

// Copy performs a lossless stream copy of the requested frame window. All
// streams are mapped, data streams are dropped, and timestamps are carried
// over so the cut stays frame accurate.
func (f *FFmpeg) Copy(ctx context.Context, req CopyRequest) error {
	args := copyArgs(req)
	if _, err := f.run(ctx, f.binary, args...); err != nil {
		return fmt.Errorf("stream copy %q: %w", req.OutputPath, err)
	}
	return nil
}

// Frames returns the per-frame MD5 fingerprints for the given range, or for
// the whole file when endFrame is not after startFrame.
func (f *FFmpeg) Frames(ctx context.Context, path string, startFrame, endFrame int64, frameRate float64) ([]string, error) {
	args := fingerprintArgs(path, startFrame, endFrame, frameRate)
	out, err := f.run(ctx, f.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("framemd5 %q: %w", path, err)
	}
	return parseManifest(out)
}

func copyArgs(req CopyRequest) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	args = append(args, "-ss", formatSeconds(req.StartFrame, req.FrameRate))
	args = append(args, "-to", formatSeconds(req.EndFrame, req.FrameRate))
	args = append(args, "-i", req.SourcePath)
	args = append(args,
		"-dn",
		"-map", "0",
		"-c", "copy",
		"-copyts",
		"-avoid_negative_ts", "make_zero",
	)
	return append(args, req.OutputPath)
}

func fingerprintArgs(path string, startFrame, endFrame int64, frameRate float64) []string {
	args := []string{"-hide_banner", "-nostats", "-loglevel", "error"}
	if endFrame > startFrame {
		args = append(args, "-ss", formatSeconds(startFrame, frameRate))
		args = append(args, "-to", formatSeconds(endFrame, frameRate))
	}
	args = append(args, "-i", path, "-map", "0", "-f", "framemd5", "-")
	return args
}

func formatSeconds(frame int64, frameRate float64) string {
	return strconv.FormatFloat(carrier.Seconds(frame, frameRate), 'f', 3, 64)
}

// parseManifest extracts the fingerprint column from a framemd5 manifest.
// Frame lines carry stream, dts, pts, duration and size columns before the
// hash, so only the final comma-separated field is kept.
func parseManifest(manifest []byte) ([]string, error) {
	text := string(manifest)
	if !strings.Contains(text, manifestHeader) {
		return nil, fmt.Errorf("manifest missing %q header", manifestHeader)
	}

	var hashes []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		hashes = append(hashes, strings.TrimSpace(fields[len(fields)-1]))
	}
	if len(hashes) == 0 {
		return nil, fmt.Errorf("manifest contains no frame entries")
	}
	return hashes, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%w: %s", err, detail)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
