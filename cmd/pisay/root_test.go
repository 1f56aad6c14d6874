package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/format"
	"github.com/iabetor/pisay/internal/request"
	"github.com/iabetor/pisay/internal/speak"
	"github.com/iabetor/pisay/internal/tts"
)

type recorder struct {
	calls int
	cfg   *config.Config
	req   *request.Request
}

func (r *recorder) run(_ context.Context, cfg *config.Config, req *request.Request) error {
	r.calls++
	r.cfg = cfg
	r.req = req
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pisay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, run runFunc, args ...string) error {
	t.Helper()
	cmd := newRootCmd(run)
	cmd.SetArgs(append([]string{"-c", writeConfig(t, "log:\n  level: error\n")}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

func TestRoot_RequiresMessageOrInput(t *testing.T) {
	rec := &recorder{}
	err := execute(t, rec.run, "-o", "out.wav")
	require.Error(t, err)
	assert.Zero(t, rec.calls)
}

func TestRoot_RejectsMessageAndInput(t *testing.T) {
	rec := &recorder{}
	err := execute(t, rec.run, "-m", "hello", "-i", "speech.txt")
	require.Error(t, err)
	assert.Zero(t, rec.calls)
}

func TestRoot_RejectsUnknownFormat(t *testing.T) {
	rec := &recorder{}
	err := execute(t, rec.run, "-m", "hello", "-f", "aiff")
	require.Error(t, err)
	assert.Zero(t, rec.calls)
}

func TestRoot_RejectsPositionalArgs(t *testing.T) {
	rec := &recorder{}
	assert.Error(t, execute(t, rec.run, "-m", "hello", "extra"))
	assert.Zero(t, rec.calls)
}

func TestRoot_PlaybackWhenOutputOmitted(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, execute(t, rec.run, "-m", "hello"))
	require.Equal(t, 1, rec.calls)
	assert.True(t, rec.req.Playback())
	assert.Equal(t, format.WAV, rec.req.Format)
	assert.Equal(t, "hello", rec.req.Input.Text)
}

func TestRoot_EmptyOutputStillWritesToFile(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, execute(t, rec.run, "-m", "hello", "-o", ""))
	require.NotNil(t, rec.req.Output)
	assert.Equal(t, "", *rec.req.Output)
}

func TestRoot_FlagsAndOverrides(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, execute(t, rec.run,
		"-i", "speech.ssml", "--ssml", "-o", "speech.mp3", "-f", "MP3",
		"-e", "Espeak", "--voice", "en-us", "--log-level", "debug"))

	require.Equal(t, 1, rec.calls)
	assert.Equal(t, "speech.ssml", rec.req.Input.File)
	assert.True(t, rec.req.SSML)
	assert.Equal(t, format.MP3, rec.req.Format)
	assert.Equal(t, "espeak", rec.cfg.TTS.Engine)
	assert.Equal(t, "en-us", rec.cfg.TTS.Espeak.Voice)
	assert.Equal(t, "debug", rec.cfg.Log.Level)
}

func TestRoot_MissingExplicitConfig(t *testing.T) {
	rec := &recorder{}
	cmd := newRootCmd(rec.run)
	cmd.SetArgs([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml"), "-m", "hello"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.ExecuteContext(context.Background()))
	assert.Zero(t, rec.calls)
}

func TestApplyVoice(t *testing.T) {
	cfg := config.Default().TTS

	cfg.Engine = "tencent"
	require.NoError(t, applyVoice(&cfg, "101001"))
	assert.EqualValues(t, 101001, cfg.Tencent.VoiceType)
	assert.Error(t, applyVoice(&cfg, "zh-CN-XiaoxiaoNeural"))

	cfg.Engine = "sherpa"
	require.NoError(t, applyVoice(&cfg, "3"))
	assert.Equal(t, 3, cfg.Sherpa.SpeakerID)

	cfg.Engine = "edge"
	require.NoError(t, applyVoice(&cfg, "zh-CN-XiaoxiaoNeural"))
	assert.Equal(t, "zh-CN-XiaoxiaoNeural", cfg.Edge.Voice)
}

type staticEngine struct{ data []byte }

func (staticEngine) Name() string { return "static" }

func (e staticEngine) Synthesize(context.Context, tts.Request) (*tts.Stream, error) {
	return &tts.Stream{ContentType: "audio/wav", Data: e.data, SampleRate: 16000, Channels: 1}, nil
}

func TestRoot_WritesWAVFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.wav")
	synthesized := []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
	run := func(ctx context.Context, _ *config.Config, req *request.Request) error {
		s := &speak.Speaker{FS: afero.NewOsFs(), Engine: staticEngine{data: synthesized}}
		return s.Run(ctx, req)
	}

	for i := 0; i < 2; i++ {
		require.NoError(t, execute(t, run, "-o", out, "-m", "hello"))
	}

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, synthesized, data)
}
