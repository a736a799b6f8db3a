package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"voxelmate.ai/internal/memory"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func seedMemory(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mem")
	store, err := memory.Open(backend, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	log, err := memory.Load(store, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := log.Append(memory.Entry{User: "Ace", Message: "hi", Response: "hello"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	cfg := filepath.Join(dir, "voxelmate.yaml")
	body := "memory:\n  backend: " + backend + "\n  path: " + path + "\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfg
}

func TestMemoryShowAndClear(t *testing.T) {
	for _, backend := range []string{memory.BackendJSON, memory.BackendJSONL, memory.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := seedMemory(t, backend)

			out, err := execute(t, "memory", "show", "--config", cfg)
			if err != nil {
				t.Fatalf("show: %v", err)
			}
			if out != "Ace: hi -> Bot: hello\n" {
				t.Fatalf("show output=%q", out)
			}

			out, err = execute(t, "memory", "show", "--json", "--config", cfg)
			if err != nil {
				t.Fatalf("show --json: %v", err)
			}
			var got []memory.Entry
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff([]memory.Entry{{User: "Ace", Message: "hi", Response: "hello"}}, got); diff != "" {
				t.Fatalf("entries mismatch (-want +got):\n%s", diff)
			}

			if _, err := execute(t, "memory", "clear", "--config", cfg); err != nil {
				t.Fatalf("clear: %v", err)
			}
			out, err = execute(t, "memory", "show", "--config", cfg)
			if err != nil {
				t.Fatalf("show after clear: %v", err)
			}
			if out != "" {
				t.Fatalf("memory not cleared: %q", out)
			}
		})
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "--url", "http://not-a-websocket")
	if err == nil || !strings.Contains(err.Error(), "world.ws_url") {
		t.Fatalf("err=%v want ws_url validation error", err)
	}
}
