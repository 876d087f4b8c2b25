// Package snapshot renders the running dashboard in headless Chrome and
// saves it as a PNG.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Irisfrogy/data-visulization/utils"
)

// readySelector matches once the page has drawn all three plots.
const readySelector = `body[data-ready="true"]`

// Capturer drives a headless browser against a dashboard URL.
type Capturer struct {
	chromeBin string
	logger    *utils.Logger
	retry     *utils.RetryConfig
	timeout   time.Duration
	width     int64
	height    int64
}

// NewCapturer creates a Capturer. An empty chromeBin is resolved from
// CHROME_BIN, PATH and the usual install locations.
func NewCapturer(chromeBin string, maxAttempts int, logger *utils.Logger) *Capturer {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &Capturer{
		chromeBin: chromeBin,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		timeout: 60 * time.Second,
		width:   1280,
		height:  900,
	}
}

// Capture loads url, waits for the plots and writes a full-page PNG to outPath.
func (c *Capturer) Capture(ctx context.Context, url, outPath string) error {
	c.logger.Info("[snapshot] Using browser binary: %s", c.chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(int(c.width), int(c.height)),
	)
	if c.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(c.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var png []byte
	err := c.retry.Do(ctx, "snapshot", func() error {
		browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancel()

		browserCtx, cancelTimeout := context.WithTimeout(browserCtx, c.timeout)
		defer cancelTimeout()

		err := chromedp.Run(browserCtx,
			chromedp.EmulateViewport(c.width, c.height),
			chromedp.Navigate(url),
			chromedp.WaitReady(readySelector, chromedp.ByQuery),
			chromedp.FullScreenshot(&png, 100),
		)
		if err != nil {
			return fmt.Errorf("chromedp capture: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("snapshot: %s: %w", url, err)
	}

	if err := os.WriteFile(outPath, png, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", outPath, err)
	}
	c.logger.Info("[snapshot] Saved %s (%d bytes)", outPath, len(png))
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
