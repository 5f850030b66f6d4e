package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/underlay/internal/config"
	"github.com/1broseidon/underlay/internal/ipc"
)

func writeFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func([]string) int
		args []string
		want int
	}{
		{"set without handle", runSet, nil, 2},
		{"set unparsable handle", runSet, []string{"not_a_number"}, 2},
		{"set zero handle", runSet, []string{"0"}, 2},
		{"restore extra args", runRestore, []string{"1", "2"}, 2},
		{"restore unparsable", runRestore, []string{"abc"}, 2},
		{"status with args", runStatus, []string{"x"}, 2},
		{"list with args", runList, []string{"x"}, 2},
		{"valid without handle", runValid, nil, 2},
		{"run without script", runScript, nil, 2},
		{"set help", runSet, []string{"--help"}, 0},
		{"config no subcommand", runConfig, nil, 2},
		{"config unknown", runConfig, []string{"frobnicate"}, 2},
		{"config explain no path", runConfig, []string{"explain"}, 2},
		{"mcp no subcommand", runMCP, nil, 2},
		{"mcp unknown", runMCP, []string{"bogus"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rc := tt.run(tt.args); rc != tt.want {
				t.Fatalf("rc=%d, want %d", rc, tt.want)
			}
		})
	}
}

func TestClientCommandsWithoutDaemon(t *testing.T) {
	t.Setenv("UNDERLAY_RUNTIME_DIR", t.TempDir())

	if rc := runStatus(nil); rc != 1 {
		t.Fatalf("runStatus rc=%d, want 1", rc)
	}
	if rc := runSet([]string{"12345"}); rc != 1 {
		t.Fatalf("runSet rc=%d, want 1", rc)
	}
	if rc := runRestoreAll(nil); rc != 1 {
		t.Fatalf("runRestoreAll rc=%d, want 1", rc)
	}
}

func TestRunConfigValidate(t *testing.T) {
	good := writeFile(t, "relocate:\n  fill_container: true\n")
	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}

	bad := writeFile(t, "locator:\n  strategies: [progman]\n")
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if rc := runConfig([]string{"validate", "--path", missing}); rc != 0 {
		t.Fatalf("validate missing rc=%d, want 0", rc)
	}
}

func TestRunConfigExplainAndPrint(t *testing.T) {
	path := writeFile(t, "daemon:\n  restore_on_exit: false\n")
	if rc := runConfig([]string{"explain", "--path", path, "daemon.restore_on_exit"}); rc != 0 {
		t.Fatalf("explain rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"explain", "--path", path, "daemon.nope"}); rc != 1 {
		t.Fatalf("explain unknown rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"print", "--defaults"}); rc != 0 {
		t.Fatalf("print rc=%d, want 0", rc)
	}
}

func TestRunScriptInvalidConfig(t *testing.T) {
	path := writeFile(t, "logging:\n  level: trace\n")
	if rc := runScript([]string{"--config", path, "script.js"}); rc != 1 {
		t.Fatalf("rc=%d, want 1", rc)
	}
}

func TestWriteRelocations(t *testing.T) {
	list := []ipc.RelocationInfo{{
		Handle:    "2230926",
		Parent:    "65552",
		Container: "131300",
		X:         10,
		Y:         20,
		Width:     800,
		Height:    600,
		MovedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	var table bytes.Buffer
	if err := writeRelocations(&table, list, false); err != nil {
		t.Fatalf("table: %v", err)
	}
	out := table.String()
	if !strings.HasPrefix(out, "HANDLE") || !strings.Contains(out, "800x600+10+20") || !strings.Contains(out, "2230926") {
		t.Fatalf("unexpected table:\n%s", out)
	}

	var js bytes.Buffer
	if err := writeRelocations(&js, list, true); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded []ipc.RelocationInfo
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Handle != "2230926" {
		t.Fatalf("decoded = %+v", decoded)
	}

	var empty bytes.Buffer
	if err := writeRelocations(&empty, nil, true); err != nil {
		t.Fatalf("empty json: %v", err)
	}
	if strings.TrimSpace(empty.String()) != "[]" {
		t.Fatalf("empty json = %q", empty.String())
	}
	empty.Reset()
	if err := writeRelocations(&empty, nil, false); err != nil {
		t.Fatalf("empty table: %v", err)
	}
	if !strings.Contains(empty.String(), "no relocated windows") {
		t.Fatalf("empty table = %q", empty.String())
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "window_id", 7)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "window_id=7") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
	if _, err := newLogger(&buf, "trace"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
