package tts

import (
	"context"
	"fmt"
	"sync"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"github.com/iabetor/pisay/internal/audio"
	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/logger"
)

// SherpaEngine 封装 sherpa-onnx 离线 VITS 语音合成，完全本地运行。
type SherpaEngine struct {
	tts       *sherpa.OfflineTts
	speakerID int
	speed     float32
	mu        sync.Mutex
}

// NewSherpaEngine 加载 VITS 模型。
// Model 和 Tokens 必填；Lexicon、DataDir 视模型而定（piper 导出的模型需要 espeak-ng-data 目录）。
func NewSherpaEngine(cfg config.SherpaConfig) (*SherpaEngine, error) {
	if cfg.Model == "" || cfg.Tokens == "" {
		return nil, fmt.Errorf("%w: sherpa 需要配置 tts.sherpa.model 和 tts.sherpa.tokens", ErrEngineUnavailable)
	}

	ttsConfig := sherpa.OfflineTtsConfig{}
	ttsConfig.Model.Vits.Model = cfg.Model
	ttsConfig.Model.Vits.Tokens = cfg.Tokens
	ttsConfig.Model.Vits.Lexicon = cfg.Lexicon
	ttsConfig.Model.Vits.DataDir = cfg.DataDir
	ttsConfig.Model.Vits.NoiseScale = 0.667
	ttsConfig.Model.Vits.NoiseScaleW = 0.8
	ttsConfig.Model.Vits.LengthScale = 1.0
	ttsConfig.Model.NumThreads = cfg.NumThreads
	ttsConfig.Model.Provider = "cpu"
	ttsConfig.MaxNumSentences = 1

	engine := sherpa.NewOfflineTts(&ttsConfig)
	if engine == nil {
		return nil, fmt.Errorf("%w: 加载 sherpa-onnx 模型失败: %s", ErrEngineUnavailable, cfg.Model)
	}

	logger.Debugf("[tts] sherpa-onnx 模型已加载 (model=%s, speaker=%d)", cfg.Model, cfg.SpeakerID)

	return &SherpaEngine{tts: engine, speakerID: cfg.SpeakerID, speed: cfg.Speed}, nil
}

// Name 返回引擎名称。
func (s *SherpaEngine) Name() string { return "sherpa" }

// Synthesize 将文本合成为单声道 WAV 音频流。
func (s *SherpaEngine) Synthesize(ctx context.Context, req Request) (*Stream, error) {
	text, err := plainText(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tts == nil {
		return nil, fmt.Errorf("[tts] sherpa: 引擎已关闭")
	}

	logger.Debugf("[tts] sherpa: 正在合成 %d 个字符", len([]rune(text)))
	generated := s.tts.Generate(text, s.speakerID, s.speed)
	if generated == nil || len(generated.Samples) == 0 {
		return nil, fmt.Errorf("[tts] sherpa: 未生成音频数据")
	}

	wav, err := audio.EncodeSamplesWAV(generated.Samples, generated.SampleRate)
	if err != nil {
		return nil, err
	}
	logger.Debugf("[tts] sherpa: 生成 %d 个样本，采样率 %d Hz", len(generated.Samples), generated.SampleRate)
	return &Stream{ContentType: audio.ContentTypeWAV, Data: wav, SampleRate: generated.SampleRate, Channels: 1}, nil
}

// Close 释放模型资源。
func (s *SherpaEngine) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tts != nil {
		sherpa.DeleteOfflineTts(s.tts)
		s.tts = nil
	}
	return nil
}
