// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	folder := t.TempDir()

	tests := []struct {
		name    string
		content *string
		want    Settings
	}{
		{
			name:    "missing file",
			content: nil,
			want:    Settings{},
		},
		{
			name:    "valid record",
			content: ptr("last_folder: " + folder + "\n"),
			want:    Settings{LastFolder: folder},
		},
		{
			name:    "corrupt yaml",
			content: ptr(":::\n\t- not yaml"),
			want:    Settings{},
		},
		{
			name:    "folder no longer exists",
			content: ptr("last_folder: " + filepath.Join(folder, "gone") + "\n"),
			want:    Settings{},
		},
		{
			name:    "empty file",
			content: ptr(""),
			want:    Settings{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), fileName)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}
			assert.Equal(t, tt.want, Load(path))
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	folder := t.TempDir()
	path := filepath.Join(t.TempDir(), "nested", fileName)

	require.NoError(t, Save(path, Settings{LastFolder: folder}))

	assert.Equal(t, folder, Load(path).LastFolder)
	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".settings-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRememberFolder(t *testing.T) {
	folder := t.TempDir()
	path := filepath.Join(t.TempDir(), fileName)

	written, err := RememberFolder(path, folder)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = RememberFolder(path, folder)
	require.NoError(t, err)
	assert.False(t, written, "unchanged folder should not rewrite the file")
}

func TestDefaultStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state-home")
	assert.Equal(t, filepath.Join("/tmp/state-home", "deck-merger"), DefaultStateDir())
}

func ptr(s string) *string { return &s }
