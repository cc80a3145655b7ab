package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	want := []string{"add", "process", "run", "queue", "status", "config"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", "--path", target})

	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v\n%s", err, out.String())
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("sample config is empty")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "init", "--path", target})

	if err := root.Execute(); err == nil {
		t.Fatal("expected refusal without --overwrite")
	}
}

func TestLooksLikePath(t *testing.T) {
	if !looksLikePath("/mnt/processing/N_123456.mkv") {
		t.Fatal("absolute path not recognized")
	}
	if looksLikePath("N_123456") {
		t.Fatal("bare carrier id treated as path")
	}
}
