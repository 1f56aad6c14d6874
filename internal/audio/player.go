package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/iabetor/pisay/internal/logger"
)

// Player 使用 malgo (miniaudio) 通过默认输出设备播放合成音频。
type Player struct {
	ctx    *malgo.AllocatedContext
	mu     sync.Mutex
	closed bool
}

// NewPlayer 创建一个新的音频播放实例。
func NewPlayer() (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("[audio] 初始化播放上下文失败: %w", err)
	}
	return &Player{ctx: ctx}, nil
}

// Play 解码 data 并通过默认扬声器播放，阻塞直到播放完成或 ctx 被取消。
// 播放没有超时：设备一直不回调时会一直等待。
func (p *Player) Play(ctx context.Context, contentType string, data []byte) error {
	pcm, err := Decode(contentType, data)
	if err != nil {
		return err
	}
	if len(pcm.Data) == 0 {
		return nil
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("[audio] 播放器已关闭")
	}
	p.mu.Unlock()

	feed := newFeeder(pcm.Data)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(pcm.Channels)
	deviceConfig.SampleRate = uint32(pcm.SampleRate)
	deviceConfig.PeriodSizeInFrames = 512
	deviceConfig.Periods = 2

	callbacks := malgo.DeviceCallbacks{
		Data: func(outputSamples, _ []byte, frameCount uint32) {
			n := int(frameCount) * pcm.Channels * 2 // 每个 int16 采样点 2 字节
			if n > len(outputSamples) {
				n = len(outputSamples)
			}
			feed.fill(outputSamples[:n])
		},
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("[audio] 初始化播放设备失败: %w", err)
	}
	// Uninit 注销数据回调，播放结束后不再有回调引用 feed
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("[audio] 启动播放设备失败: %w", err)
	}
	defer device.Stop()

	logger.Debugf("[audio] 开始播放: %d 字节, %d Hz, %d 声道", len(pcm.Data), pcm.SampleRate, pcm.Channels)

	select {
	case <-ctx.Done():
		logger.Infof("[audio] 播放被取消")
		return ctx.Err()
	case <-feed.done:
		logger.Debugf("[audio] 播放完成")
		return nil
	}
}

// Close 释放所有资源。
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
}

// feeder 把 PCM 数据分块交给设备回调，数据耗尽后发出唯一一次完成信号。
// fill 在音频线程调用，done 在调用 Play 的 goroutine 上接收。
type feeder struct {
	pcm  []byte
	pos  int
	done chan struct{}
	once sync.Once
}

func newFeeder(pcm []byte) *feeder {
	return &feeder{pcm: pcm, done: make(chan struct{}, 1)}
}

// fill 填充 out；数据不足部分写入静音。
// 数据在上一次回调已全部送出时才发出完成信号，保证最后一块被播放。
func (f *feeder) fill(out []byte) {
	if f.pos >= len(f.pcm) {
		clear(out)
		f.once.Do(func() { f.done <- struct{}{} })
		return
	}
	n := copy(out, f.pcm[f.pos:])
	clear(out[n:])
	f.pos += n
}
