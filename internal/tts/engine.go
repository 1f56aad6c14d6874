package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iabetor/pisay/internal/config"
)

var (
	// ErrEmptyText 表示待合成文本为空。
	ErrEmptyText = errors.New("empty text")
	// ErrInvalidSSML 表示 SSML 文档无法解析。
	ErrInvalidSSML = errors.New("invalid SSML")
	// ErrEngineUnavailable 表示引擎依赖的程序或模型不可用。
	ErrEngineUnavailable = errors.New("tts engine unavailable")
)

// Request 是一次合成请求。
type Request struct {
	Text string
	// SSML 为 true 时 Text 是 SSML 文档。
	SSML bool
}

// Stream 是合成引擎输出的一段完整音频。
// Data 按 ContentType 编码（所有内置引擎均输出 audio/wav），只应被消费一次。
type Stream struct {
	ContentType string
	Data        []byte
	SampleRate  int
	Channels    int
}

// Engine 定义语音合成后端接口。
type Engine interface {
	// Name 返回引擎名称，用于日志。
	Name() string
	// Synthesize 将文本转换为音频流。
	Synthesize(ctx context.Context, req Request) (*Stream, error)
}

// Names 列出 New 支持的引擎名。
var Names = []string{"edge", "tencent", "sherpa", "piper", "espeak", "say"}

// New 根据配置创建对应的合成引擎。
func New(cfg config.TTSConfig) (Engine, error) {
	switch cfg.Engine {
	case "edge":
		return NewEdgeEngine(cfg.Edge), nil
	case "tencent":
		return NewTencentEngine(cfg.Tencent)
	case "sherpa":
		return NewSherpaEngine(cfg.Sherpa)
	case "piper":
		return NewPiperEngine(cfg.Piper)
	case "espeak":
		return NewEspeakEngine(cfg.Espeak)
	case "say":
		return NewSayEngine(cfg.Say)
	default:
		return nil, fmt.Errorf("[tts] 未知的 TTS 引擎: %q（可选: %v）", cfg.Engine, Names)
	}
}

// plainText 返回可直接交给不支持 SSML 的引擎的纯文本。
func plainText(req Request) (string, error) {
	text := req.Text
	if req.SSML {
		flat, err := FlattenSSML(req.Text)
		if err != nil {
			return "", err
		}
		text = flat
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
