package tts

import (
	"context"
	"fmt"

	"github.com/iabetor/pisay/internal/audio"
	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/logger"
)

// PiperEngine 使用 piper CLI 子进程实现离线语音合成。
type PiperEngine struct {
	binary     string
	modelPath  string
	sampleRate int
}

// NewPiperEngine 创建指定模型的 Piper TTS 引擎。
func NewPiperEngine(cfg config.PiperConfig) (*PiperEngine, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: piper 需要配置 tts.piper.model_path", ErrEngineUnavailable)
	}
	binary, err := lookBinary(cfg.Binary)
	if err != nil {
		return nil, err
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 22050
	}
	return &PiperEngine{binary: binary, modelPath: cfg.ModelPath, sampleRate: rate}, nil
}

// Name 返回引擎名称。
func (p *PiperEngine) Name() string { return "piper" }

// Synthesize 使用 piper CLI 合成文本。
// piper 输出 signed 16-bit LE 单声道 PCM，这里封装为 WAV。
func (p *PiperEngine) Synthesize(ctx context.Context, req Request) (*Stream, error) {
	text, err := plainText(req)
	if err != nil {
		return nil, err
	}
	logger.Debugf("[tts] piper: 正在合成 %d 个字符，模型=%s", len([]rune(text)), p.modelPath)

	pcm, err := runCommand(ctx, "piper", []byte(text), p.binary, "--model", p.modelPath, "--output-raw")
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("[tts] piper: 未收到音频数据")
	}
	logger.Debugf("[tts] piper: 收到 %d 字节原始 PCM", len(pcm))

	wav, err := audio.EncodeWAV(pcm, p.sampleRate, 1)
	if err != nil {
		return nil, err
	}
	return &Stream{ContentType: audio.ContentTypeWAV, Data: wav, SampleRate: p.sampleRate, Channels: 1}, nil
}
