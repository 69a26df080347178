package plog

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestPlogLevels(t *testing.T) {
	// --- Setup: Redirect plog output to capture log output ---
	var logBuf bytes.Buffer
	SetOutput(&logBuf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})

	t.Run("Logs all levels when level is Debug", func(t *testing.T) {
		logBuf.Reset()
		SetLevel(LevelDebug)

		Debug("debug message", "key", "val1")
		Info("info message", "key", "val2")
		Warn("warn message")

		output := logBuf.String()

		if !strings.Contains(output, "level=DEBUG msg=\"debug message\" key=val1") {
			t.Errorf("expected debug message to be logged, got: %s", output)
		}
		if !strings.Contains(output, "level=INFO msg=\"info message\" key=val2") {
			t.Errorf("expected info message to be logged, got: %s", output)
		}
		if !strings.Contains(output, "level=WARN msg=\"warn message\"") {
			t.Errorf("expected warn message to be logged, got: %s", output)
		}
	})

	t.Run("Suppresses lower levels when level is Warn", func(t *testing.T) {
		logBuf.Reset()
		SetLevel(LevelWarn)

		Debug("debug message")
		Notice("notice message")
		Info("info message")

		if logBuf.Len() != 0 {
			t.Errorf("expected no output below warn level, got: %s", logBuf.String())
		}
	})

	t.Run("Notice is rendered by name and Debug is suppressed", func(t *testing.T) {
		logBuf.Reset()
		SetLevel(LevelNotice)

		Debug("debug message")
		Notice("notice message", "key", "val1")
		Info("info message", "key", "val2")

		output := logBuf.String()

		if strings.Contains(output, "debug message") {
			t.Errorf("expected debug message to be suppressed at notice level, got: %s", output)
		}
		if !strings.Contains(output, "level=NOTICE msg=\"notice message\" key=val1") {
			t.Errorf("expected notice message to be logged, got: %s", output)
		}
		if !strings.Contains(output, "level=INFO msg=\"info message\" key=val2") {
			t.Errorf("expected info message to be logged, got: %s", output)
		}
	})

	t.Run("Quiet mode drops notice and info but keeps warnings", func(t *testing.T) {
		logBuf.Reset()
		SetLevel(LevelDebug)
		SetQuiet(true)
		defer SetQuiet(false)

		Notice("notice message")
		Info("info message")
		Warn("warn message")

		output := logBuf.String()
		if strings.Contains(output, "notice message") || strings.Contains(output, "info message") {
			t.Errorf("expected quiet mode to suppress notice/info, got: %s", output)
		}
		if !strings.Contains(output, "warn message") {
			t.Errorf("expected warn message in quiet mode, got: %s", output)
		}
	})
}

func TestLevelFromString(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   LevelDebug,
		"notice":  LevelNotice,
		"INFO":    LevelInfo,
		" warn ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
		"":        LevelInfo,
	}
	for input, want := range testCases {
		if got := LevelFromString(input); got != want {
			t.Errorf("LevelFromString(%q) = %v, want %v", input, got, want)
		}
	}
}
