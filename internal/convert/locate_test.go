package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateFromPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "xpstopdf")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PATH", dir)

	found, err := Locate("xpstopdf", nil)
	require.NoError(t, err)
	assert.Equal(t, bin, found)
}

func TestLocateFallbackCandidates(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	dir := t.TempDir()
	candidate := filepath.Join(dir, "xpstopdf")
	require.NoError(t, os.WriteFile(candidate, []byte("#!/bin/sh\n"), 0o755))

	found, err := Locate("xpstopdf", []string{
		filepath.Join(dir, "does-not-exist"),
		candidate,
	})
	require.NoError(t, err)
	assert.Equal(t, candidate, found)
}

func TestLocateMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Locate("xpstopdf", []string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brew install libgxps")
}
