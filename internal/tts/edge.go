package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/iabetor/pisay/internal/audio"
	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/logger"
)

// EdgeEngine 使用微软 Edge TTS 实现语音合成，
// 通过 edge-tts-go 获取 MP3 音频，再用 go-mp3 解码并封装为 WAV。
type EdgeEngine struct {
	voice string
}

// NewEdgeEngine 创建指定语音的 Edge TTS 引擎。
func NewEdgeEngine(cfg config.EdgeConfig) *EdgeEngine {
	return &EdgeEngine{voice: cfg.Voice}
}

// Name 返回引擎名称。
func (e *EdgeEngine) Name() string { return "edge" }

// Synthesize 将文本合成为 WAV 音频流。
// edge-tts-go 会对文本做 XML 转义，因此 SSML 先展开为纯文本。
func (e *EdgeEngine) Synthesize(ctx context.Context, req Request) (*Stream, error) {
	text, err := plainText(req)
	if err != nil {
		return nil, err
	}
	logger.Debugf("[tts] edge-tts: 正在合成 %d 个字符，语音=%s", len([]rune(text)), e.voice)

	comm, err := edge.NewCommunicate(text, edge.WithVoice(e.voice))
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts 开始流式合成失败: %w", err)
	}

	// 从 channel 收集所有音频数据；ctx 取消时仍需排空 channel 让后台 goroutine 退出
	var mp3Buf bytes.Buffer
	for msg := range ch {
		if ctx.Err() != nil {
			continue
		}
		// Stream() 返回的 map 中，type=="audio" 的条目包含音频数据
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mp3Buf.Len() == 0 {
		return nil, fmt.Errorf("[tts] edge-tts: 未收到音频数据")
	}
	logger.Debugf("[tts] edge-tts: 收到 %d 字节 MP3 数据", mp3Buf.Len())

	pcm, err := audio.DecodeMP3(mp3Buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("[tts] edge-tts: %w", err)
	}
	wav, err := audio.EncodeWAV(pcm.Data, pcm.SampleRate, pcm.Channels)
	if err != nil {
		return nil, err
	}

	logger.Debugf("[tts] edge-tts: 解码得到 %d 字节 PCM，采样率 %d Hz", len(pcm.Data), pcm.SampleRate)
	return &Stream{ContentType: audio.ContentTypeWAV, Data: wav, SampleRate: pcm.SampleRate, Channels: pcm.Channels}, nil
}
