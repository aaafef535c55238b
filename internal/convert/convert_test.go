// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deck-merger/internal/workspace"
	"github.com/pdiddy/deck-merger/pkg/types"
)

var fastWait = WaitOptions{Interval: 5 * time.Millisecond, Timeout: 200 * time.Millisecond}

// fakeConverter implements Converter for testing. It writes a small file to
// the target unless the item is listed in fail or silent.
type fakeConverter struct {
	fail   map[string]error // source base name -> error from Convert
	silent map[string]bool  // source base name -> succeed without output
	calls  []string
}

func (f *fakeConverter) Name() string                { return "fake" }
func (f *fakeConverter) Check(context.Context) error { return nil }
func (f *fakeConverter) Supports(fm Format) bool     { return fm == FormatPDF }

func (f *fakeConverter) Target(src, workDir string, fm Format) string {
	return filepath.Join(workDir, stem(src)+"."+string(fm))
}

func (f *fakeConverter) Convert(_ context.Context, src, target string, _ Format) error {
	base := filepath.Base(src)
	f.calls = append(f.calls, base)
	if err := f.fail[base]; err != nil {
		return err
	}
	if f.silent[base] {
		return nil
	}
	return os.WriteFile(target, []byte("%PDF-1.4 "+base), 0o644)
}

func entries(t *testing.T, names ...string) []types.Entry {
	t.Helper()
	dir := t.TempDir()
	out := make([]types.Entry, len(names))
	for i, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("deck"), 0o644))
		out[i] = types.Entry{Name: n, Path: p}
	}
	return out
}

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(t.TempDir(), "")
	require.NoError(t, err)
	t.Cleanup(func() { ws.Cleanup() })
	return ws
}

func TestBatch_Success(t *testing.T) {
	ws := newWorkspace(t)
	conv := &fakeConverter{}
	in := entries(t, "a.pptx", "b.ppt", "c.pptx")

	var log bytes.Buffer
	got, err := Batch(context.Background(), conv, in, ws, FormatPDF, fastWait, &log)
	require.NoError(t, err)

	require.Len(t, got, 3)
	for i, p := range got {
		assert.FileExists(t, p)
		assert.Equal(t, stem(in[i].Path)+".pdf", filepath.Base(p))
		assert.False(t, ws.Existed(p))
	}
	assert.Equal(t, []string{"a.pptx", "b.ppt", "c.pptx"}, conv.calls)
	assert.Contains(t, log.String(), "converted: b.ppt")
	assert.Contains(t, log.String(), "Batch summary: 3 converted")
}

func TestBatch_SameStemDoesNotCollide(t *testing.T) {
	ws := newWorkspace(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "talk.ppt")
	b := filepath.Join(dir, "talk.pptx")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("x"), 0o644))

	got, err := Batch(context.Background(), &fakeConverter{}, []types.Entry{{Name: "talk.ppt", Path: a}, {Name: "talk.pptx", Path: b}}, ws, FormatPDF, fastWait, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NotEqual(t, got[0], got[1])
}

func TestBatch_AbortsOnFirstFailure(t *testing.T) {
	tests := []struct {
		name    string
		conv    *fakeConverter
		wantIs  error
		wantLen int // number of Convert calls
	}{
		{
			name:    "process error",
			conv:    &fakeConverter{fail: map[string]error{"b.pptx": errors.New("exit status 1")}},
			wantLen: 2,
		},
		{
			name:    "output never appears",
			conv:    &fakeConverter{silent: map[string]bool{"a.pptx": true}},
			wantIs:  ErrTimeout,
			wantLen: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t)
			var log bytes.Buffer
			got, err := Batch(context.Background(), tt.conv, entries(t, "a.pptx", "b.pptx", "c.pptx"), ws, FormatPDF, fastWait, &log)
			require.Error(t, err)
			assert.Nil(t, got)

			var ce *ConversionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.conv.calls[len(tt.conv.calls)-1], ce.Item)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.Len(t, tt.conv.calls, tt.wantLen)
			assert.Contains(t, log.String(), "failed:")
		})
	}
}

func TestBatch_UnsupportedFormat(t *testing.T) {
	ws := newWorkspace(t)
	conv := &fakeConverter{}
	_, err := Batch(context.Background(), conv, entries(t, "a.ppt"), ws, FormatPPTX, fastWait, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, conv.calls)
}

func TestBatch_CleanupRemovesOutputs(t *testing.T) {
	ws, err := workspace.New(t.TempDir(), "")
	require.NoError(t, err)

	got, err := Batch(context.Background(), &fakeConverter{}, entries(t, "a.pptx"), ws, FormatPDF, fastWait, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, ws.Cleanup())
	assert.NoFileExists(t, got[0])
}

func TestWaitForFile(t *testing.T) {
	t.Run("appears later", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "out.pdf")
		go func() {
			time.Sleep(20 * time.Millisecond)
			os.WriteFile(p, []byte("pdf"), 0o644)
		}()
		assert.NoError(t, WaitForFile(context.Background(), p, WaitOptions{Interval: 5 * time.Millisecond, Timeout: time.Second}))
	})

	t.Run("empty file is not complete", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "out.pdf")
		require.NoError(t, os.WriteFile(p, nil, 0o644))
		assert.ErrorIs(t, WaitForFile(context.Background(), p, fastWait), ErrTimeout)
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WaitForFile(ctx, filepath.Join(t.TempDir(), "never"), WaitOptions{Interval: time.Second, Timeout: time.Minute})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWaitOptionsFrom(t *testing.T) {
	got := WaitOptionsFrom(types.ConverterConfig{})
	assert.Equal(t, DefaultPollInterval, got.Interval)
	assert.Equal(t, DefaultWaitTimeout, got.Timeout)

	got = WaitOptionsFrom(types.ConverterConfig{PollInterval: time.Second, WaitTimeout: time.Minute})
	assert.Equal(t, WaitOptions{Interval: time.Second, Timeout: time.Minute}, got)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      types.ConverterConfig
		wantName string
		wantErr  bool
	}{
		{name: "default is soffice", cfg: types.ConverterConfig{}, wantName: "soffice"},
		{name: "script", cfg: types.ConverterConfig{Backend: types.BackendScript}, wantName: "script"},
		{name: "gotenberg", cfg: types.ConverterConfig{Backend: types.BackendGotenberg, GotenbergURL: "http://localhost:3000"}, wantName: "gotenberg"},
		{name: "unknown", cfg: types.ConverterConfig{Backend: "word"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(context.Background(), tt.cfg, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name())
		})
	}
}
