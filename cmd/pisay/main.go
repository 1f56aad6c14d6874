package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/iabetor/pisay/internal/audio"
	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/logger"
	"github.com/iabetor/pisay/internal/request"
	"github.com/iabetor/pisay/internal/speak"
	"github.com/iabetor/pisay/internal/transcode"
	"github.com/iabetor/pisay/internal/tts"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，中断合成或播放
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在退出...", sig)
		cancel()
	}()

	err := newRootCmd(speakRequest).ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pisay: %v\n", err)
		os.Exit(1)
	}
}

// speakRequest 按配置组装引擎、转码器与播放器并执行一次请求。
func speakRequest(ctx context.Context, cfg *config.Config, req *request.Request) error {
	engine, err := tts.New(cfg.TTS)
	if err != nil {
		return err
	}
	if c, ok := engine.(io.Closer); ok {
		defer c.Close()
	}

	tc, err := transcode.NewFFmpeg(cfg.Transcode.Command)
	if err != nil {
		return err
	}

	s := &speak.Speaker{
		FS:         afero.NewOsFs(),
		Engine:     engine,
		Transcoder: tc,
	}
	if req.Playback() {
		player, err := audio.NewPlayer()
		if err != nil {
			return err
		}
		defer player.Close()
		s.Player = player
	}

	logger.Debugf("[main] 引擎=%s，格式=%s，播放=%v", engine.Name(), req.Format, req.Playback())
	return s.Run(ctx, req)
}
