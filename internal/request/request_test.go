package request

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iabetor/pisay/internal/format"
)

func strPtr(s string) *string { return &s }

func TestNew_ExactlyOneInput(t *testing.T) {
	_, err := New("", false, "", false, nil, format.WAV, false)
	assert.ErrorIs(t, err, ErrInputRequired)

	_, err = New("hi", true, "in.txt", true, nil, format.WAV, false)
	assert.ErrorIs(t, err, ErrInputRequired)

	_, err = New("", false, "", true, nil, format.WAV, false)
	assert.ErrorIs(t, err, ErrInputRequired)
}

func TestNew_Defaults(t *testing.T) {
	req, err := New("hello", true, "", false, nil, "", false)
	require.NoError(t, err)
	assert.Equal(t, format.WAV, req.Format)
	assert.True(t, req.Playback())
	assert.False(t, req.Input.IsFile())
	assert.Equal(t, "hello", req.Input.Text)
}

func TestNew_EmptyMessageIsStillAMessage(t *testing.T) {
	req, err := New("", true, "", false, nil, format.WAV, false)
	require.NoError(t, err)
	assert.False(t, req.Input.IsFile())
}

func TestNew_OutputIsCopied(t *testing.T) {
	out := "a.mp3"
	req, err := New("", false, "in.txt", true, &out, format.MP3, true)
	require.NoError(t, err)
	out = "changed"

	require.NotNil(t, req.Output)
	assert.Equal(t, "a.mp3", *req.Output)
	assert.False(t, req.Playback())
	assert.True(t, req.SSML)
	assert.Equal(t, "in.txt", req.Input.File)
}

func TestNew_EmptyOutputStillMeansWrite(t *testing.T) {
	req, err := New("hi", true, "", false, strPtr(""), format.WAV, false)
	require.NoError(t, err)
	assert.False(t, req.Playback())
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("hi", true, "", false, nil, format.Format("aiff"), false)
	assert.Error(t, err)
}

func TestAbsPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(wd, "out", "a.wav"), AbsPath(filepath.Join("out", "a.wav")))

	abs := filepath.Join(t.TempDir(), "x.wav")
	assert.Equal(t, abs, AbsPath(abs))
}

func TestResolveText_Literal(t *testing.T) {
	text, err := ResolveText(afero.NewMemMapFs(), Input{Text: "  spoken as-is  "})
	require.NoError(t, err)
	assert.Equal(t, "  spoken as-is  ", text)
}

func TestResolveText_FileRelativeToWorkingDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(wd, "notes", "speech.txt"), []byte("from a file\n"), 0644))

	text, err := ResolveText(fs, Input{File: filepath.Join("notes", "speech.txt")})
	require.NoError(t, err)
	assert.Equal(t, "from a file\n", text)
}

func TestResolveText_MissingFile(t *testing.T) {
	_, err := ResolveText(afero.NewMemMapFs(), Input{File: "/nope/missing.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatValue(t *testing.T) {
	var f format.Format
	v := NewFormatValue(&f)
	assert.Equal(t, "wav", v.String())

	require.NoError(t, v.Set("FLAC"))
	assert.Equal(t, format.FLAC, f)

	assert.Error(t, v.Set("aiff"))
	assert.Equal(t, format.FLAC, f, "failed Set must not change the value")
	assert.Contains(t, v.Type(), "mp3")
}
