// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupRemovesOnlyNewArtifacts(t *testing.T) {
	src := t.TempDir()
	preexisting := filepath.Join(src, "old.pdf")
	fresh := filepath.Join(src, "new.pdf")
	require.NoError(t, os.WriteFile(preexisting, []byte("user file"), 0o644))

	ws, err := New(t.TempDir(), "")
	require.NoError(t, err)

	ws.Track(preexisting)
	ws.Track(fresh)
	require.NoError(t, os.WriteFile(fresh, []byte("converted"), 0o644))
	require.NoError(t, os.WriteFile(preexisting, []byte("overwritten by conversion"), 0o644))

	itemDir, err := ws.ItemDir(0)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(itemDir, "a.pdf"), []byte("x"), 0o644))

	assert.True(t, ws.Existed(preexisting))
	assert.False(t, ws.Existed(fresh))

	require.NoError(t, ws.Cleanup())

	assert.FileExists(t, preexisting)
	assert.NoFileExists(t, fresh)
	assert.NoDirExists(t, ws.Dir())
}

func TestCleanupToleratesMissingArtifacts(t *testing.T) {
	ws, err := New(t.TempDir(), "")
	require.NoError(t, err)

	ws.Track(filepath.Join(t.TempDir(), "never-written.pdf"))

	assert.NoError(t, ws.Cleanup())
	assert.NoError(t, ws.Cleanup(), "second cleanup is a no-op")
}

func TestTrackKeepsFirstObservation(t *testing.T) {
	ws, err := New(t.TempDir(), "")
	require.NoError(t, err)
	t.Cleanup(func() { ws.Cleanup() })

	p := filepath.Join(t.TempDir(), "a.pdf")
	ws.Track(p)
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	ws.Track(p)

	assert.False(t, ws.Existed(p))
}

func TestCleanupOnPanicPath(t *testing.T) {
	parent := t.TempDir()
	out := filepath.Join(t.TempDir(), "partial.pdf")

	func() {
		defer func() { _ = recover() }()
		ws, err := New(parent, "")
		require.NoError(t, err)
		defer ws.Cleanup()

		ws.Track(out)
		require.NoError(t, os.WriteFile(out, []byte("half"), 0o644))
		panic("assembly blew up")
	}()

	assert.NoFileExists(t, out)
	left, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCleanupTwice(t *testing.T) {
	ws, err := New(t.TempDir(), "")
	require.NoError(t, err)

	require.NoError(t, ws.Cleanup())
	assert.NoDirExists(t, ws.Dir())
	assert.NoError(t, ws.Cleanup())
}
