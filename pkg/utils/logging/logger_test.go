package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/visaire/pkg/utils/logging"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input  string
		expect slog.Level
		ok     bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			lvl, ok := logging.ParseLevel(tc.input)
			gt.Equal(t, lvl, tc.expect)
			gt.Equal(t, ok, tc.ok)
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("warn", buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	output := buf.String()
	gt.S(t, output).NotContains("debug message")
	gt.S(t, output).NotContains("info message")
	gt.S(t, output).Contains("warn message")
}

func TestNewWithInvalidLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("verbose", buf)

	gt.S(t, buf.String()).Contains("invalid log level")
	logger.Info("info message")
	gt.S(t, buf.String()).Contains("info message")
}

func TestWithAndFrom(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("debug", buf).With("component", "controller")
	ctx := logging.With(context.Background(), logger)

	retrieved := logging.From(ctx)
	gt.Equal(t, retrieved, logger)

	retrieved.Info("context message")
	gt.S(t, buf.String()).Contains("context message")
	gt.S(t, buf.String()).Contains("controller")
}

func TestFromUsesDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	custom := logging.New("info", buf)
	logging.SetDefault(custom)

	gt.Equal(t, logging.From(context.Background()), custom)
}

func TestErrAttr(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", buf)

	err := goerr.New("request failed", goerr.V("request_id", "req-123"))
	logger.Error("generation failed", logging.ErrAttr(err))

	gt.S(t, buf.String()).Contains("request failed")
	gt.S(t, buf.String()).Contains("req-123")
}

func TestNewWithoutTerminalIsPlain(t *testing.T) {
	// TERM alone would turn colors on in the handler's default
	t.Setenv("TERM", "xterm-256color")

	buf := &bytes.Buffer{}
	logging.New("info", buf).Warn("history write failed", "items", 3)

	gt.S(t, buf.String()).Contains("history write failed")
	gt.S(t, buf.String()).NotContains("\x1b[")
}

func TestNewHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	path := filepath.Join(t.TempDir(), "visaire.log")
	f, err := os.Create(path)
	gt.NoError(t, err)
	defer f.Close()

	logging.New("info", f).Info("session started")
	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.S(t, string(data)).Contains("session started")
	gt.S(t, string(data)).NotContains("\x1b[")
}
