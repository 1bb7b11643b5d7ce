package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelInfo, ParseLevel(""))
	require.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestInfo_WritesKeyValues(t *testing.T) {
	buf := capture(t, LevelInfo)

	Info("view rendered", "month", "2025-01", "cells", 34, "dangling")

	out := buf.String()
	require.Contains(t, out, "view rendered")
	require.Contains(t, out, "month=2025-01")
	require.Contains(t, out, "cells=34")
	require.NotContains(t, out, "dangling")
}

func TestLevelGate(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("hidden debug")
	Info("hidden info")
	Warn("shown warn")
	Error("shown error", errors.New("boom"), "path", "/api/view")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown warn")
	require.Contains(t, out, "err=boom")
	require.Contains(t, out, "path=/api/view")
}
