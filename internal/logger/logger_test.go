package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("json", &buf)
	l.Info().Str("path", "/games").Msg("scanned")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if line["message"] != "scanned" || line["path"] != "/games" {
		t.Fatalf("line = %v", line)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New("console", &buf)
	l.Warn().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, "hello") || strings.Contains(out, "\x1b[") {
		t.Fatalf("output = %q", out)
	}
}

func TestSetupFileAndLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	prev := log.Logger
	defer func() { log.Logger = prev }()

	path := filepath.Join(t.TempDir(), "steamdex.log")
	Setup(Config{Level: "error", Format: "json", Output: path})

	log.Warn().Msg("dropped")
	log.Error().Msg("kept")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "dropped") || !strings.Contains(string(data), "kept") {
		t.Fatalf("log file = %q", data)
	}
}
