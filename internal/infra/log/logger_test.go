package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSetupWritesFileLog(t *testing.T) {
	prevLogger, prevConsole := Logger, consoleLogger
	t.Cleanup(func() { Logger, consoleLogger = prevLogger, prevConsole })

	dir := t.TempDir()
	if err := Setup(dir); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	LogInfo("logo downloaded", zap.String("team", "COL"), zap.Int64("duration_ms", 12))
	LogWarn("svg missing", zap.String("team", "ARI"))
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "INFO logo downloaded") {
		t.Fatalf("expected info line, got %q", out)
	}
	if !strings.Contains(out, `"team":"COL"`) || !strings.Contains(out, `"duration_ms":12`) {
		t.Fatalf("expected json fields, got %q", out)
	}
	if !strings.Contains(out, "WARN svg missing") {
		t.Fatalf("expected warn line, got %q", out)
	}
}

func TestRequestLoggerTagsRequestID(t *testing.T) {
	prevLogger, prevConsole := Logger, consoleLogger
	t.Cleanup(func() { Logger, consoleLogger = prevLogger, prevConsole })

	dir := t.TempDir()
	if err := Setup(dir); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	RequestLogger("a1b2c3d4").Error("Request gave up", zap.String("url", "https://api.nhle.com/stats"))
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "ERROR Request gave up") || !strings.Contains(out, `"request_id":"a1b2c3d4"`) {
		t.Fatalf("expected tagged error line, got %q", out)
	}
}

func TestLoggersAreNoopBeforeSetup(t *testing.T) {
	// must not panic without Setup
	LogDebug("debug")
	LogSuccess("ok")
	LogError("failed", zap.Int64("duration_ms", 5))
	LogResponse("abc", 500, 10, zap.String("endpoint", "/goalie/summary"))
}

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if len(a) != 8 {
		t.Fatalf("expected 8 char id, got %q", a)
	}
	if a == b {
		t.Fatalf("expected unique ids, got %q twice", a)
	}
}

func TestFieldHelpers(t *testing.T) {
	fields := []zap.Field{zap.String("endpoint", "/x"), zap.Int64("duration_ms", 42)}
	if got := durationField(fields); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := endpointField(fields); got != "/x" {
		t.Fatalf("expected /x, got %q", got)
	}
	if durationField(nil) != 0 || endpointField(nil) != "" {
		t.Fatalf("expected zero values for empty fields")
	}
}
