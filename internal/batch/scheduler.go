// Package batch enumerates source files in a directory and converts them
// concurrently through a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/danyanovich/dwfx2pdf/internal/convert"
	"github.com/danyanovich/dwfx2pdf/internal/domain"
	"github.com/danyanovich/dwfx2pdf/internal/progress"
)

type Converter interface {
	Do(ctx context.Context, task domain.Task) domain.Outcome
}

type Scheduler struct {
	converter Converter
	reporter  progress.Reporter
}

func NewScheduler(converter Converter, reporter progress.Reporter) *Scheduler {
	if reporter == nil {
		reporter = progress.Discard{}
	}
	return &Scheduler{converter: converter, reporter: reporter}
}

// ConvertAll converts every .dwfx file in inputDir into outputDir and
// returns the number of failed tasks. Tasks whose destination already
// exists are skipped unless overwrite is set. One task's failure never
// aborts the others.
func (s *Scheduler) ConvertAll(ctx context.Context, inputDir, outputDir string, overwrite bool, maxWorkers int) (int, error) {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create input dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	sources, err := listSources(inputDir)
	if err != nil {
		return 0, err
	}
	if len(sources) == 0 {
		slog.Info("no .dwfx files found", slog.String("dir", inputDir))
		return 0, nil
	}

	tasks := make([]domain.Task, 0, len(sources))
	for _, name := range sources {
		dest := filepath.Join(outputDir, convert.PDFName(name))
		if !overwrite {
			if _, err := os.Stat(dest); err == nil {
				slog.Info("skip (exists)", slog.String("pdf", filepath.Base(dest)))
				continue
			}
		}
		tasks = append(tasks, domain.Task{
			SourcePath: filepath.Join(inputDir, name),
			DestPath:   dest,
		})
	}

	if len(tasks) == 0 {
		slog.Info("no new files to convert")
		return 0, nil
	}

	s.reporter.Start(len(tasks))

	var failures atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			outcome := s.converter.Do(ctx, task)
			if !outcome.Success {
				failures.Add(1)
			}
			s.reporter.Completed(outcome)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are counted per task

	n := int(failures.Load())
	s.reporter.Finish(n)
	return n, nil
}

// listSources returns the base names of all regular .dwfx files in dir,
// sorted lexicographically for reproducible ordering.
func listSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !convert.IsSource(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
