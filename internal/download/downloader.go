package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"gsport/internal/models"
	"gsport/pkg/utils"
)

// ChunkSize is how much of the remote stream is read per write. Each
// written chunk becomes one progress event.
const ChunkSize = 8 * 1024 * 1024

// progressThreshold is the minimum expected byte total before the
// progress line is rendered; below it percentages are meaningless.
const progressThreshold = 100

// Fetcher opens a streaming read of a resolved download URL.
type Fetcher interface {
	FetchFile(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options configures a Downloader.
type Options struct {
	// Workers bounds the number of simultaneously running transfers.
	// Defaults to 1.
	Workers int

	// RateLimit caps aggregate download throughput in bytes per
	// second. Zero means unlimited.
	RateLimit int64

	// Output is where progress is rendered. Defaults to os.Stdout.
	Output io.Writer
}

// Downloader runs a queue of download targets through a bounded worker
// pool while aggregating byte progress into a single terminal line.
//
// All cross-worker communication goes through one progress channel
// consumed by the scheduling goroutine; workers never touch shared
// counters. Cancellation is broadcast through the context and checked
// at every chunk boundary, so an interrupt can never leave the
// scheduler waiting on an event that will not arrive.
type Downloader struct {
	fetcher Fetcher
	workers int
	limiter *rate.Limiter
	out     io.Writer
}

// New creates a Downloader over the given fetcher.
func New(fetcher Fetcher, opts Options) *Downloader {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), ChunkSize)
	}

	return &Downloader{
		fetcher: fetcher,
		workers: opts.Workers,
		limiter: limiter,
		out:     opts.Output,
	}
}

// Run downloads every target, keeping at most the configured number of
// transfers in flight. It blocks until all targets have completed or
// ctx is cancelled.
func (d *Downloader) Run(ctx context.Context, targets []models.DownloadTarget) error {
	total := len(targets)
	var expected int64
	for _, t := range targets {
		expected += t.Size
	}

	events := make(chan models.ProgressEvent)
	launched, active, completed := 0, 0, 0
	var downloaded int64
	start := time.Now()

	for completed < total {
		for active < d.workers && launched < total {
			go d.fetchOne(ctx, targets[launched], events)
			launched++
			active++
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(d.out)
			return ctx.Err()
		case ev := <-events:
			downloaded += ev.Bytes
			if ev.Done {
				active--
				completed++
				if ev.Err != nil {
					// Finish the progress line first so the warning
					// does not splice into it.
					fmt.Fprintln(d.out)
					slog.Warn("transfer failed", "error", ev.Err)
				}
			}
			if expected > progressThreshold {
				d.renderProgress(downloaded, expected, start)
			}
		}
	}

	fmt.Fprintln(d.out, "\nDownloading complete")
	return nil
}

// fetchOne is a single worker: it transfers one target and always ends
// with the terminal progress event, even when the transfer failed, so
// the scheduler's accounting stays correct. Only cancellation skips
// the terminal event; the scheduler observes that through the context
// itself.
func (d *Downloader) fetchOne(ctx context.Context, target models.DownloadTarget, events chan<- models.ProgressEvent) {
	ev := models.ProgressEvent{Done: true}
	if err := d.transfer(ctx, target, events); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		ev.Err = fmt.Errorf("%s: %w", target.RemotePath, err)
	}

	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func (d *Downloader) transfer(ctx context.Context, target models.DownloadTarget, events chan<- models.ProgressEvent) error {
	body, err := d.fetcher.FetchFile(ctx, target.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	if dir := filepath.Dir(target.LocalPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	out, err := os.Create(target.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target.LocalPath, err)
	}
	defer out.Close()

	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if d.limiter != nil {
				if err := d.limiter.WaitN(ctx, n); err != nil {
					return err
				}
			}
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("failed to write %s: %w", target.LocalPath, err)
			}
			select {
			case events <- models.ProgressEvent{Bytes: int64(n)}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", target.RemotePath, readErr)
		}
	}
}

func (d *Downloader) renderProgress(downloaded, expected int64, start time.Time) {
	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 {
		elapsed = 1e-3
	}
	speed := float64(downloaded) / elapsed

	eta := "0s"
	if speed > 0 {
		remaining := float64(expected-downloaded) / speed
		eta = utils.FormatETA(time.Duration(remaining * float64(time.Second)))
	}

	fmt.Fprintf(d.out, "\r%d%% Downloading %s/%s %s/sec ETA: %s     ",
		downloaded*100/expected,
		utils.FormatBytes(downloaded),
		utils.FormatBytes(expected),
		utils.FormatBytes(int64(speed)),
		eta,
	)
}
