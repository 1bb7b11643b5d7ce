package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// Default viewport of a phone-sized calendar screen.
const (
	DefaultWidth   = 390
	DefaultHeight  = 844
	DefaultTimeout = 30 * time.Second

	// ReadySelector is set by the /calendar page once the grid is in the DOM.
	ReadySelector = `[data-ready="true"]`
)

// Options defines one snapshot of the calendar page.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/calendar".
	URL string
	// OutputPath receives the PNG.
	OutputPath string

	Width   int
	Height  int
	Timeout time.Duration
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if o.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// Tasks is the chromedp action list behind CalendarPNG; the screenshot is
// written into *png.
func Tasks(opts Options, png *[]byte) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(png, 100),
	}
}

// CalendarPNG opens opts.URL in headless Chromium, waits for ReadySelector
// and writes a full-page PNG to opts.OutputPath.
func CalendarPNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	if err := chromedp.Run(ctx, Tasks(opts, &png)); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	return writeFile(opts.OutputPath, png)
}

// writeFile replaces path atomically so /preview.png never serves a
// half-written image.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("capture: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".preview-*.png")
	if err != nil {
		return fmt.Errorf("capture: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
