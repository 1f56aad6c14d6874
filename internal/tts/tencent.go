package tts

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"github.com/iabetor/pisay/internal/audio"
	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/logger"
)

// TencentEngine 使用腾讯云 TTS 实现语音合成。
// 直接请求 wav 编码，文本原生支持 SSML 标记。
type TencentEngine struct {
	client     *tts.Client
	voiceType  int64
	speed      float64
	sampleRate int64
}

// NewTencentEngine 创建腾讯云 TTS 引擎。
func NewTencentEngine(cfg config.TencentConfig) (*TencentEngine, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: 腾讯云 TTS 需要 SecretID 和 SecretKey", ErrEngineUnavailable)
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tts.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("[tts] 创建腾讯云 TTS 客户端失败: %w", err)
	}

	logger.Debugf("[tts] 腾讯云 TTS 引擎已初始化 (voice=%d, region=%s)", cfg.VoiceType, cfg.Region)

	return &TencentEngine{
		client:     client,
		voiceType:  cfg.VoiceType,
		speed:      cfg.Speed,
		sampleRate: cfg.SampleRate,
	}, nil
}

// Name 返回引擎名称。
func (e *TencentEngine) Name() string { return "tencent" }

// Synthesize 将文本合成为 WAV 音频流。
func (e *TencentEngine) Synthesize(ctx context.Context, req Request) (*Stream, error) {
	if req.SSML {
		if err := ValidateSSML(req.Text); err != nil {
			return nil, err
		}
	}
	if _, err := plainText(req); err != nil {
		return nil, err
	}
	logger.Debugf("[tts] 腾讯云 TTS: 正在合成 %d 个字符，音色=%d", len([]rune(req.Text)), e.voiceType)

	request := tts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(req.Text)
	request.SessionId = common.StringPtr(uuid.NewString())
	request.VoiceType = common.Int64Ptr(e.voiceType)
	request.Codec = common.StringPtr("wav")
	request.SampleRate = common.Uint64Ptr(uint64(e.sampleRate))
	request.Speed = common.Float64Ptr(e.speed)

	response, err := e.client.TextToVoiceWithContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS 合成失败: %w", err)
	}
	if response.Response == nil || response.Response.Audio == nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS: 未返回音频数据")
	}

	data, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return nil, fmt.Errorf("[tts] Base64 解码失败: %w", err)
	}
	pcm, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("[tts] 腾讯云 TTS: %w", err)
	}

	logger.Debugf("[tts] 腾讯云 TTS: 收到 %d 字节 WAV", len(data))
	return &Stream{ContentType: audio.ContentTypeWAV, Data: data, SampleRate: pcm.SampleRate, Channels: pcm.Channels}, nil
}
