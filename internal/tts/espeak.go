package tts

import (
	"context"
	"fmt"
	"os"

	"github.com/iabetor/pisay/internal/audio"
	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/logger"
)

// EspeakEngine 使用 espeak-ng（或旧版 espeak）实现离线合成，原生支持 SSML。
type EspeakEngine struct {
	binary string
	voice  string
}

// NewEspeakEngine 创建 espeak 引擎；Binary 为空时依次查找 espeak-ng、espeak。
func NewEspeakEngine(cfg config.EspeakConfig) (*EspeakEngine, error) {
	candidates := []string{"espeak-ng", "espeak"}
	if cfg.Binary != "" {
		candidates = []string{cfg.Binary}
	}
	binary, err := lookBinary(candidates...)
	if err != nil {
		return nil, err
	}
	return &EspeakEngine{binary: binary, voice: cfg.Voice}, nil
}

// Name 返回引擎名称。
func (e *EspeakEngine) Name() string { return "espeak" }

// Synthesize 让 espeak 写入临时 WAV 文件；SSML 以 -m 模式交给 espeak 解析。
// 不使用 --stdout：写管道时 espeak 无法回填 WAV 头中的长度字段。
func (e *EspeakEngine) Synthesize(ctx context.Context, req Request) (*Stream, error) {
	if req.SSML {
		if err := ValidateSSML(req.Text); err != nil {
			return nil, err
		}
	}
	text, err := plainText(req)
	if err != nil {
		return nil, err
	}

	wavPath, cleanup, err := tempPath("pisay-espeak-*.wav")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	args := []string{"-w", wavPath, "--stdin"}
	if e.voice != "" {
		args = append(args, "-v", e.voice)
	}
	input := text
	if req.SSML {
		args = append(args, "-m")
		input = req.Text
	}

	logger.Debugf("[tts] espeak: 正在合成 %d 个字符 (ssml=%v)", len([]rune(input)), req.SSML)
	if _, err := runCommand(ctx, "espeak", []byte(input), e.binary, args...); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("[tts] espeak: 读取输出文件失败: %w", err)
	}

	pcm, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("[tts] espeak: 输出不是有效的 WAV: %w", err)
	}
	return &Stream{ContentType: audio.ContentTypeWAV, Data: data, SampleRate: pcm.SampleRate, Channels: pcm.Channels}, nil
}
