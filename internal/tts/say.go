package tts

import (
	"context"
	"fmt"
	"os"

	"github.com/iabetor/pisay/internal/audio"
	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/logger"
)

// saySampleRate 是请求 macOS say 输出的采样率。
const saySampleRate = 22050

// SayEngine 使用 macOS 内置 say 命令实现语音合成。
// 仅在 macOS 上可用。
type SayEngine struct {
	binary string
	voice  string // macOS 语音名称，如 "Samantha"
}

// NewSayEngine 创建 macOS say TTS 引擎。
// voice 为空时使用系统默认语音。
func NewSayEngine(cfg config.SayConfig) (*SayEngine, error) {
	binary, err := lookBinary("say")
	if err != nil {
		return nil, err
	}
	return &SayEngine{binary: binary, voice: cfg.Voice}, nil
}

// Name 返回引擎名称。
func (s *SayEngine) Name() string { return "say" }

// Synthesize 让 say 直接输出 16-bit LE 单声道 WAV 文件后读回。
// 文本通过 stdin 传入，避免以 "-" 开头的文本被当成参数。
func (s *SayEngine) Synthesize(ctx context.Context, req Request) (*Stream, error) {
	text, err := plainText(req)
	if err != nil {
		return nil, err
	}
	logger.Debugf("[tts] say: 正在合成 %d 个字符", len([]rune(text)))

	wavPath, cleanup, err := tempPath("pisay-say-*.wav")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	args := []string{
		"-o", wavPath,
		"--file-format=WAVE",
		fmt.Sprintf("--data-format=LEI16@%d", saySampleRate),
		"-f", "-",
	}
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	if _, err := runCommand(ctx, "say", []byte(text), s.binary, args...); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("[tts] say: 读取输出文件失败: %w", err)
	}
	pcm, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("[tts] say: 输出不是有效的 WAV: %w", err)
	}
	if len(pcm.Data) == 0 {
		return nil, fmt.Errorf("[tts] say: 未收到音频数据")
	}

	logger.Debugf("[tts] say: 收到 %d 字节 WAV", len(data))
	return &Stream{ContentType: audio.ContentTypeWAV, Data: data, SampleRate: pcm.SampleRate, Channels: pcm.Channels}, nil
}
