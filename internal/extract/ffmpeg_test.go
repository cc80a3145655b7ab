package extract

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestCopyArgs(t *testing.T) {
	args := copyArgs(CopyRequest{
		SourcePath: "/work/N_123456.mkv",
		StartFrame: 50,
		EndFrame:   250,
		FrameRate:  25,
		OutputPath: "/work/out/N_123456_01.mkv",
	})
	want := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", "2.000",
		"-to", "10.000",
		"-i", "/work/N_123456.mkv",
		"-dn",
		"-map", "0",
		"-c", "copy",
		"-copyts",
		"-avoid_negative_ts", "make_zero",
		"/work/out/N_123456_01.mkv",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("copy args = %v, want %v", args, want)
	}
}

func TestFingerprintArgsWholeFile(t *testing.T) {
	args := fingerprintArgs("/work/out.mkv", 0, 0, 25)
	for _, flag := range args {
		if flag == "-ss" || flag == "-to" {
			t.Fatalf("whole-file fingerprint should not seek, got %v", args)
		}
	}
	joined := strings.Join(args, " ")
	if !strings.HasSuffix(joined, "-f framemd5 -") {
		t.Fatalf("fingerprint args should write framemd5 to stdout, got %v", args)
	}
}

func TestFingerprintArgsRange(t *testing.T) {
	args := fingerprintArgs("/work/src.mkv", 100, 200, 25)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 4.000 -to 8.000") {
		t.Fatalf("fingerprint args missing seek window, got %v", args)
	}
}

func TestParseManifest(t *testing.T) {
	manifest := strings.Join([]string{
		"#format: frame checksums",
		"#version: 2",
		"#hash: MD5",
		"#stream#, dts,        pts, duration,     size, hash",
		"0,          0,          0,        1,   829440, aaaa1111",
		"0,          1,          1,        1,   829440, bbbb2222",
		"1,          0,          0,     1920,     7680, cccc3333",
		"",
	}, "\n")

	hashes, err := parseManifest([]byte(manifest))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"aaaa1111", "bbbb2222", "cccc3333"}
	if !reflect.DeepEqual(hashes, want) {
		t.Fatalf("hashes = %v, want %v", hashes, want)
	}
}

func TestParseManifestRejectsMissingHeader(t *testing.T) {
	manifest := "#hash: SHA256\n0, 0, 0, 1, 100, aaaa\n"
	if _, err := parseManifest([]byte(manifest)); err == nil {
		t.Fatal("expected error for non-MD5 manifest")
	}
}

func TestParseManifestRejectsEmptyManifest(t *testing.T) {
	if _, err := parseManifest([]byte("#hash: MD5\n")); err == nil {
		t.Fatal("expected error for manifest without frame lines")
	}
}

func TestFFmpegFramesUsesRunner(t *testing.T) {
	f := NewFFmpeg("ffmpeg")
	var gotArgs []string
	f.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte("#hash: MD5\n0, 0, 0, 1, 100, abcd\n"), nil
	})

	hashes, err := f.Frames(context.Background(), "/work/src.mkv", 0, 100, 25)
	if err != nil {
		t.Fatal(err)
	}
	if len(hashes) != 1 || hashes[0] != "abcd" {
		t.Fatalf("hashes = %v", hashes)
	}
	if gotArgs[len(gotArgs)-1] != "-" {
		t.Fatalf("expected stdout manifest target, got %v", gotArgs)
	}
}
