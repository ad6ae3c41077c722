package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danyanovich/dwfx2pdf/internal/domain"
	"github.com/danyanovich/dwfx2pdf/internal/progress"
)

// stubConverter writes the destination file unless the source base name is
// listed in failOn.
type stubConverter struct {
	mu     sync.Mutex
	tasks  []domain.Task
	failOn map[string]bool
}

func (c *stubConverter) Do(ctx context.Context, task domain.Task) domain.Outcome {
	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	c.mu.Unlock()

	if c.failOn[filepath.Base(task.SourcePath)] {
		return domain.Outcome{Task: task, Err: errors.New("boom")}
	}
	if err := os.WriteFile(task.DestPath, []byte("pdf"), 0o644); err != nil {
		return domain.Outcome{Task: task, Err: err}
	}
	return domain.Outcome{Task: task, Success: true, Elapsed: time.Millisecond}
}

func (c *stubConverter) seen() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Task(nil), c.tasks...)
}

func writeDWFX(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestConvertAllNamesDestinations(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeDWFX(t, in, "a.dwfx", "B.DWFX", "notes.txt")

	conv := &stubConverter{}
	s := NewScheduler(conv, nil)
	failures, err := s.ConvertAll(context.Background(), in, out, false, 2)
	require.NoError(t, err)
	assert.Zero(t, failures)

	var dests []string
	for _, task := range conv.seen() {
		dests = append(dests, filepath.Base(task.DestPath))
	}
	sort.Strings(dests)
	assert.Equal(t, []string{"B.pdf", "a.pdf"}, dests)

	// .txt never reaches the converter
	for _, task := range conv.seen() {
		assert.False(t, strings.HasSuffix(task.SourcePath, ".txt"))
	}
}

func TestConvertAllSkipsExisting(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeDWFX(t, in, "a.dwfx", "b.dwfx")

	existing := filepath.Join(out, "a.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("old content"), 0o644))

	conv := &stubConverter{}
	s := NewScheduler(conv, nil)
	failures, err := s.ConvertAll(context.Background(), in, out, false, 4)
	require.NoError(t, err)
	assert.Zero(t, failures)

	tasks := conv.seen()
	require.Len(t, tasks, 1)
	assert.Equal(t, "b.pdf", filepath.Base(tasks[0].DestPath))

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old content", string(got), "skipped output must stay untouched")
}

func TestConvertAllOverwrite(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeDWFX(t, in, "a.dwfx")
	require.NoError(t, os.WriteFile(filepath.Join(out, "a.pdf"), []byte("old"), 0o644))

	conv := &stubConverter{}
	s := NewScheduler(conv, nil)
	failures, err := s.ConvertAll(context.Background(), in, out, true, 1)
	require.NoError(t, err)
	assert.Zero(t, failures)
	require.Len(t, conv.seen(), 1)

	got, err := os.ReadFile(filepath.Join(out, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(got))
}

func TestConvertAllFailureIsolation(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeDWFX(t, in, "bad.dwfx", "good1.dwfx", "good2.dwfx")

	conv := &stubConverter{failOn: map[string]bool{"bad.dwfx": true}}
	s := NewScheduler(conv, progress.NewLogReporter())
	failures, err := s.ConvertAll(context.Background(), in, out, false, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, failures)

	for _, name := range []string{"good1.pdf", "good2.pdf"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, "valid tasks must still produce output")
	}
	_, err = os.Stat(filepath.Join(out, "bad.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertAllEmptyDir(t *testing.T) {
	conv := &stubConverter{}
	s := NewScheduler(conv, nil)
	failures, err := s.ConvertAll(context.Background(), t.TempDir(), t.TempDir(), false, 4)
	require.NoError(t, err)
	assert.Zero(t, failures)
	assert.Empty(t, conv.seen())
}

func TestConvertAllCreatesDirs(t *testing.T) {
	base := t.TempDir()
	in := filepath.Join(base, "dwfx")
	out := filepath.Join(base, "pdf")

	s := NewScheduler(&stubConverter{}, nil)
	failures, err := s.ConvertAll(context.Background(), in, out, false, 4)
	require.NoError(t, err)
	assert.Zero(t, failures)

	for _, dir := range []string{in, out} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
