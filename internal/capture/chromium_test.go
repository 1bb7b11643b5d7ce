package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsNormalize(t *testing.T) {
	opts := Options{URL: "http://127.0.0.1:8080/calendar", OutputPath: "/tmp/p.png"}
	require.NoError(t, opts.normalize())
	require.Equal(t, DefaultWidth, opts.Width)
	require.Equal(t, DefaultHeight, opts.Height)
	require.Equal(t, DefaultTimeout, opts.Timeout)
}

func TestCalendarPNG_RequiresURLAndOutput(t *testing.T) {
	require.ErrorContains(t, CalendarPNG(context.Background(), Options{OutputPath: "x.png"}), "URL is required")
	require.ErrorContains(t, CalendarPNG(context.Background(), Options{URL: "http://x"}), "OutputPath is required")
}

func TestTasks(t *testing.T) {
	var png []byte
	tasks := Tasks(Options{URL: "http://x/calendar", Width: 10, Height: 20}, &png)
	require.Len(t, tasks, 4)
}

func TestWriteFile_ReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "preview.png")

	require.NoError(t, writeFile(path, []byte("first")))
	require.NoError(t, writeFile(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
