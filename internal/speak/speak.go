// Package speak 串联文本解析、语音合成、转码与输出。
package speak

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/iabetor/pisay/internal/format"
	"github.com/iabetor/pisay/internal/logger"
	"github.com/iabetor/pisay/internal/request"
	"github.com/iabetor/pisay/internal/sink"
	"github.com/iabetor/pisay/internal/transcode"
	"github.com/iabetor/pisay/internal/tts"
)

// Player 通过音频设备播放一段音频，阻塞直到播放结束。
type Player interface {
	Play(ctx context.Context, contentType string, data []byte) error
}

// Speaker 是主编排器。
type Speaker struct {
	FS         afero.Fs
	Engine     tts.Engine
	Transcoder transcode.Transcoder
	Player     Player
}

// Run 执行一次请求：有输出路径时写文件，否则直接播放。
func (s *Speaker) Run(ctx context.Context, req *request.Request) error {
	start := time.Now()

	text, err := request.ResolveText(s.FS, req.Input)
	if err != nil {
		return err
	}
	ttsReq := tts.Request{Text: text, SSML: req.SSML}

	if req.Playback() {
		if err := s.Play(ctx, ttsReq); err != nil {
			return err
		}
		logger.Infof("[speak] 播放完成，引擎=%s，耗时 %v", s.Engine.Name(), time.Since(start).Round(time.Millisecond))
		return nil
	}

	path, err := s.ToFile(ctx, ttsReq, *req.Output, req.Format)
	if err != nil {
		return err
	}
	logger.Infof("[speak] 已写入 %s，格式=%s，引擎=%s，耗时 %v", path, req.Format, s.Engine.Name(), time.Since(start).Round(time.Millisecond))
	return nil
}

// Play 合成后直接播放，不做任何转码。
func (s *Speaker) Play(ctx context.Context, req tts.Request) error {
	if s.Player == nil {
		return fmt.Errorf("[speak] 未配置音频播放器")
	}
	stream, err := s.Engine.Synthesize(ctx, req)
	if err != nil {
		return err
	}
	return s.Player.Play(ctx, stream.ContentType, stream.Data)
}

// ToFile 并发执行“打开输出文件”和“合成+转码”两个分支，两者都成功后一次性写入。
// 任一分支失败即整体失败，另一分支的结果被丢弃，目标文件保持不变。
// 返回最终写入的文件路径。
func (s *Speaker) ToFile(ctx context.Context, req tts.Request, output string, f format.Format) (string, error) {
	dir, name, err := sink.Split(output)
	if err != nil {
		return "", err
	}
	dir = request.AbsPath(dir)

	var (
		target *sink.Target
		buf    []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := sink.Open(s.FS, dir, name)
		if err != nil {
			return err
		}
		target = t
		return nil
	})
	g.Go(func() error {
		stream, err := s.Engine.Synthesize(gctx, req)
		if err != nil {
			return err
		}
		logger.Debugf("[speak] 合成完成: %s, %d 字节", stream.ContentType, len(stream.Data))
		out, err := transcode.Encode(gctx, s.Transcoder, stream, f)
		if err != nil {
			return err
		}
		buf = out
		return nil
	})

	if err := g.Wait(); err != nil {
		if target != nil {
			target.Abort()
		}
		return "", err
	}
	if err := target.Commit(buf); err != nil {
		return "", err
	}
	return target.Path(), nil
}
