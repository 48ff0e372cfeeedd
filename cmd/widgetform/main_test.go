package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExitStack_RunsCleanupsBeforeExit(t *testing.T) {
	var order []string
	var exitMessage string
	exits := &exitStack{exit: func(format string, args ...any) {
		order = append(order, "exit")
		exitMessage = fmt.Sprintf(format, args...)
	}}
	exits.push(func() { order = append(order, "logs") })
	exits.push(func() { order = append(order, "form") })

	exits.fatalf("Failed to save: %v", "boom")

	if diff := cmp.Diff([]string{"form", "logs", "exit"}, order); diff != "" {
		t.Fatalf("cleanup order mismatch (-want +got):\n%s", diff)
	}
	if exitMessage != "Failed to save: boom" {
		t.Fatalf("unexpected exit message %q", exitMessage)
	}
}

func TestExitStack_ClosesJSONLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widgetform.json")
	logger, closeLogs, err := newLogger("info", path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	exits := &exitStack{exit: func(string, ...any) {}}
	exits.push(closeLogs)
	logger.Error("save failed", "status", 400)
	exits.fatalf("Failed to save")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"save failed"`) {
		t.Fatalf("expected JSON record in log file, got %q", raw)
	}
}
