package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/futalk/Tarot-Reading/internal/platform/logging"
)

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(&buf, "json", slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("reading drawn", "spread", "love")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "reading drawn" || rec["spread"] != "love" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(&buf, "TEXT", slog.LevelDebug))

	logger.Debug("cache miss", "key", "love")
	if !strings.Contains(buf.String(), "msg=\"cache miss\"") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tarot.log")
	logger, closer := logging.New(logging.Options{
		Level:      slog.LevelInfo,
		Format:     "json",
		File:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	logger.Info("written to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), "written to file") {
		t.Errorf("file sink missing record: %q", raw)
	}
}

func TestNew_NoFile(t *testing.T) {
	_, closer := logging.New(logging.Options{Level: slog.LevelInfo})
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
