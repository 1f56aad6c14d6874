// Package transcode 把合成引擎输出的 WAV 重新编码为目标格式。
package transcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/iabetor/pisay/internal/format"
	"github.com/iabetor/pisay/internal/logger"
	"github.com/iabetor/pisay/internal/tts"
)

// ErrTranscodeFailed 表示转码器不支持源/目标组合，或转码过程失败。
var ErrTranscodeFailed = errors.New("transcode failed")

// Prepared 是一次已准备好的转码，必须先检查 CanTranscode 再调用 Transcode。
type Prepared interface {
	CanTranscode() bool
	// Reason 在 CanTranscode 为 false 时说明原因。
	Reason() string
	Transcode(ctx context.Context) ([]byte, error)
}

// Transcoder 为给定音频流和编码配置准备转码。
type Transcoder interface {
	Prepare(ctx context.Context, src *tts.Stream, p format.Profile) (Prepared, error)
}

// Encode 按格式决策表生成最终写入文件的字节。
// 直通格式原样返回合成数据；其余格式先确认可转码，不可转码时直接失败，不做尝试。
func Encode(ctx context.Context, t Transcoder, src *tts.Stream, f format.Format) ([]byte, error) {
	p, err := format.Lookup(f)
	if err != nil {
		return nil, err
	}
	if p.Passthrough {
		logger.Debugf("[transcode] %s 无需转码，直接使用 %d 字节合成数据", p.Format, len(src.Data))
		return src.Data, nil
	}
	if t == nil {
		return nil, fmt.Errorf("%w: 未配置转码器", ErrTranscodeFailed)
	}

	prepared, err := t.Prepare(ctx, src, p)
	if err != nil {
		return nil, err
	}
	if !prepared.CanTranscode() {
		return nil, fmt.Errorf("%w: %s -> %s: %s", ErrTranscodeFailed, src.ContentType, p.Format, prepared.Reason())
	}

	out, err := prepared.Transcode(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debugf("[transcode] %s: %d 字节 -> %d 字节", p.Format, len(src.Data), len(out))
	return out, nil
}
