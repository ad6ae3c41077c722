// Package watch converts source files as they arrive in a directory.
// Each creation event runs through its own small state machine: wait for
// the file size to stabilize (a copy may still be in progress), apply the
// skip-if-exists rule, then convert.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/danyanovich/dwfx2pdf/internal/convert"
	"github.com/danyanovich/dwfx2pdf/internal/domain"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	defaultMaxPolls     = 40 // 10s total
)

type Converter interface {
	Do(ctx context.Context, task domain.Task) domain.Outcome
}

type Options struct {
	Overwrite    bool
	PollInterval time.Duration
	MaxPolls     int
}

type Watcher struct {
	converter    Converter
	inputDir     string
	outputDir    string
	overwrite    bool
	pollInterval time.Duration
	maxPolls     int

	wg sync.WaitGroup
}

func New(converter Converter, inputDir, outputDir string, opts Options) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxPolls <= 0 {
		opts.MaxPolls = defaultMaxPolls
	}
	return &Watcher{
		converter:    converter,
		inputDir:     inputDir,
		outputDir:    outputDir,
		overwrite:    opts.Overwrite,
		pollInterval: opts.PollInterval,
		maxPolls:     opts.MaxPolls,
	}
}

// Run watches the input directory until ctx is canceled. In-flight file
// handlers are joined before returning and the subscription is removed.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.inputDir, 0o755); err != nil {
		return fmt.Errorf("create input dir: %w", err)
	}
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.inputDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.inputDir, err)
	}

	slog.Info("watching directory, drop .dwfx files here", slog.String("dir", w.inputDir))
	slog.Info("output PDFs will appear in", slog.String("dir", w.outputDir))

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping watch mode")
			w.wg.Wait()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				w.wg.Wait()
				return nil
			}
			if !event.Has(fsnotify.Create) || !convert.IsSource(event.Name) {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				w.handle(ctx, path)
			}(event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				w.wg.Wait()
				return nil
			}
			slog.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	name := filepath.Base(path)

	switch waitStable(ctx, path, w.pollInterval, w.maxPolls) {
	case stateStable:
	case stateEmpty:
		slog.Warn("file remains empty (0 bytes), skipping", slog.String("file", name))
		return
	default:
		// gone, never stabilized within the window, or ctx canceled
		return
	}

	dest := filepath.Join(w.outputDir, convert.PDFName(name))
	if !w.overwrite {
		if _, err := os.Stat(dest); err == nil {
			slog.Info("skip (exists)", slog.String("pdf", filepath.Base(dest)))
			return
		}
	}

	slog.Info("converting new file", slog.String("file", name))
	outcome := w.converter.Do(ctx, domain.Task{SourcePath: path, DestPath: dest})
	if outcome.Success {
		slog.Info("OK",
			slog.String("file", name),
			slog.String("pdf", filepath.Base(dest)),
			slog.Duration("elapsed", outcome.Elapsed),
		)
		return
	}
	slog.Error("FAIL", slog.String("file", name), slog.String("error", outcome.Err.Error()))
}

type fileState int

const (
	stateStable fileState = iota
	stateEmpty
	stateGone
	stateUnstable
)

// waitStable polls the file size until two consecutive reads agree on a
// nonzero size. A file that disappears, or that never settles within
// maxPolls, is abandoned without conversion. A file that settles at zero
// bytes is reported separately so the caller can log it.
func waitStable(ctx context.Context, path string, interval time.Duration, maxPolls int) fileState {
	stable := false
	for poll := 0; poll < maxPolls; poll++ {
		size1, err := fileSize(path)
		if err != nil {
			return stateGone
		}

		select {
		case <-ctx.Done():
			return stateUnstable
		case <-time.After(interval):
		}

		size2, err := fileSize(path)
		if err != nil {
			return stateGone
		}
		if size1 == size2 && size1 > 0 {
			stable = true
			break
		}
	}

	// re-check: the loop may have exhausted its budget on an empty file
	size, err := fileSize(path)
	switch {
	case err != nil:
		return stateGone
	case size == 0:
		return stateEmpty
	case stable:
		return stateStable
	default:
		return stateUnstable
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
