package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		path     string
		wantDir  string
		wantName string
		wantErr  error
	}{
		{"out.wav", ".", "out.wav", nil},
		{filepath.Join("a", "b", "c.mp3"), filepath.Join("a", "b"), "c.mp3", nil},
		{"/tmp/speech.flac", "/tmp", "speech.flac", nil},
		{"", "", "", ErrInvalidPathParent},
		{"/", "", "", ErrInvalidPathParent},
		{".", "", "", ErrInvalidFileName},
		{filepath.Join("a", ".."), "", "", ErrInvalidFileName},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dir, name, err := Split(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, dir)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestTarget_CommitCreatesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	target, err := Open(fs, "/out/nested", "speech.wav")
	require.NoError(t, err)
	assert.Equal(t, "/out/nested/speech.wav", target.Path())

	require.NoError(t, target.Commit([]byte("RIFF....")))

	data, err := afero.ReadFile(fs, "/out/nested/speech.wav")
	require.NoError(t, err)
	assert.Equal(t, "RIFF....", string(data))
	assertNoTempFiles(t, fs, "/out/nested")
}

func TestTarget_CommitOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/a.wav", []byte("old content that is longer"), 0644))

	target, err := Open(fs, "/out", "a.wav")
	require.NoError(t, err)
	require.NoError(t, target.Commit([]byte("new")))

	data, err := afero.ReadFile(fs, "/out/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestTarget_AbortLeavesExistingFileUntouched(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/a.wav", []byte("keep me"), 0644))

	target, err := Open(fs, "/out", "a.wav")
	require.NoError(t, err)
	target.Abort()
	target.Abort()

	data, err := afero.ReadFile(fs, "/out/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
	assertNoTempFiles(t, fs, "/out")

	assert.Error(t, target.Commit([]byte("late")), "commit after abort must fail")
}

func TestOpen_ParentIsAFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/blocker", []byte("x"), 0644))

	_, err := Open(fs, "/blocker", "a.wav")
	assert.ErrorIs(t, err, ErrInvalidPathParent)
}

func TestTarget_RealFilesystem(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewOsFs()

	for _, content := range []string{"first run", "second"} {
		target, err := Open(fs, dir, "out.wav")
		require.NoError(t, err)
		require.NoError(t, target.Commit([]byte(content)))
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.wav"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assertNoTempFiles(t, fs, dir)
}

func assertNoTempFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".part"), "left-over temp file %s", e.Name())
	}
}
