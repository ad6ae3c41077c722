package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/danyanovich/dwfx2pdf/internal/domain"
)

// Error aggregates both attempts' diagnostics when the converter fails
// twice: once against the original path and once against the .xps-renamed
// temporary copy.
type Error struct {
	Source       string
	Dest         string
	FirstStderr  string
	SecondStderr string
}

func (e *Error) Error() string {
	return fmt.Sprintf(
		"xpstopdf failed.\nTried: %s -> %s\n\nFirst error:\n%s\n\nSecond error (with .xps rename):\n%s",
		filepath.Base(e.Source),
		filepath.Base(e.Dest),
		strings.TrimSpace(e.FirstStderr),
		strings.TrimSpace(e.SecondStderr),
	)
}

// Mirror receives the path of every successfully produced PDF. Replication
// is best-effort; a full queue never fails the conversion.
type Mirror interface {
	Enqueue(path string) bool
}

// Invoker wraps a single external converter invocation with the
// two-attempt fallback strategy. It is shared by the batch scheduler, the
// directory watcher and the web handler so all three entry points carry
// the same conversion contract.
type Invoker struct {
	bin    string
	mirror Mirror
}

func NewInvoker(bin string) *Invoker {
	return &Invoker{bin: bin}
}

// WithMirror registers an optional replication hook for produced PDFs.
func (inv *Invoker) WithMirror(m Mirror) *Invoker {
	inv.mirror = m
	return inv
}

// Do runs one task and reports the timed outcome.
func (inv *Invoker) Do(ctx context.Context, task domain.Task) domain.Outcome {
	start := time.Now()
	if err := inv.Convert(ctx, task.SourcePath, task.DestPath); err != nil {
		return domain.Outcome{Task: task, Err: err}
	}
	return domain.Outcome{Task: task, Success: true, Elapsed: time.Since(start)}
}

// Convert renders src into dst, creating dst's parent directory if absent.
// The converter is picky about extensions on some inputs: DWFX is a
// zip-based container very close to XPS, so a direct attempt is made
// first, then a retry against a temporary copy named with an .xps suffix.
// The copy is removed on every path out of here.
func (inv *Invoker) Convert(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	firstStderr, err := inv.run(ctx, src, dst)
	if err == nil {
		inv.replicate(dst)
		return nil
	}

	tmp := src + ".xps"
	if err := copyFile(src, tmp); err != nil {
		return fmt.Errorf("stage .xps copy: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			slog.Warn("remove temp copy", slog.String("path", tmp), slog.String("error", err.Error()))
		}
	}()

	secondStderr, err := inv.run(ctx, tmp, dst)
	if err == nil {
		inv.replicate(dst)
		return nil
	}

	return &Error{
		Source:       src,
		Dest:         dst,
		FirstStderr:  firstStderr,
		SecondStderr: secondStderr,
	}
}

func (inv *Invoker) run(ctx context.Context, in, out string) (string, error) {
	cmd := exec.CommandContext(ctx, inv.bin, in, out)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stderr.String(), fmt.Errorf("run %s: %w", inv.bin, err)
	}
	return "", nil
}

func (inv *Invoker) replicate(dst string) {
	if inv.mirror == nil {
		return
	}
	if !inv.mirror.Enqueue(dst) {
		slog.Warn("mirror queue full, pdf kept local only", slog.String("path", dst))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
