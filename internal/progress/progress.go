// Package progress decouples the scheduler from how per-task outcomes are
// rendered: log lines, a terminal counter, or nothing at all in tests.
package progress

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/danyanovich/dwfx2pdf/internal/domain"
)

type Reporter interface {
	Start(total int)
	Completed(o domain.Outcome)
	Finish(failures int)
}

// LogReporter emits one slog line per completed task, with a running
// [done/total] counter. Concurrent workers complete in arbitrary order, so
// the counter is guarded to keep lines intact.
type LogReporter struct {
	mu    sync.Mutex
	done  int
	total int
}

func NewLogReporter() *LogReporter { return &LogReporter{} }

func (r *LogReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	r.done = 0
	slog.Info("starting conversion", slog.Int("files", total))
}

func (r *LogReporter) Completed(o domain.Outcome) {
	r.mu.Lock()
	r.done++
	done, total := r.done, r.total
	r.mu.Unlock()

	name := filepath.Base(o.Task.SourcePath)
	if o.Success {
		slog.Info("OK",
			slog.String("file", name),
			slog.String("pdf", filepath.Base(o.Task.DestPath)),
			slog.Duration("elapsed", o.Elapsed),
			slog.String("progress", progress(done, total)),
		)
		return
	}
	slog.Error("FAIL",
		slog.String("file", name),
		slog.String("error", o.Err.Error()),
		slog.String("progress", progress(done, total)),
	)
}

func (r *LogReporter) Finish(failures int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slog.Info("done", slog.Int("processed", r.total), slog.Int("failures", failures))
}

func progress(done, total int) string {
	return strconv.Itoa(done) + "/" + strconv.Itoa(total)
}

// Discard is a no-op Reporter for callers that do their own logging.
type Discard struct{}

func (Discard) Start(int) {}

func (Discard) Completed(domain.Outcome) {}

func (Discard) Finish(int) {}
