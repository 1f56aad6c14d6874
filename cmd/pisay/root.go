package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iabetor/pisay/internal/config"
	"github.com/iabetor/pisay/internal/format"
	"github.com/iabetor/pisay/internal/logger"
	"github.com/iabetor/pisay/internal/request"
	"github.com/iabetor/pisay/internal/tts"
)

// runFunc 执行一次已解析的请求。
type runFunc func(ctx context.Context, cfg *config.Config, req *request.Request) error

type options struct {
	message    string
	input      string
	output     string
	format     format.Format
	ssml       bool
	configPath string
	engine     string
	voice      string
	logLevel   string
}

func newRootCmd(run runFunc) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "pisay",
		Short: "把文本转换为语音并播放或写入音频文件",
		Long: `pisay 将一段文本（或文本文件）交给语音合成引擎。

未指定 --output 时直接通过默认音频设备播放；
指定 --output 时按 --format 编码后写入文件，非 WAV 格式需要 ffmpeg。`,
		Example: `  pisay -m "hello world"
  pisay -i notes.txt -o notes.mp3 -f mp3
  pisay --ssml -m "<speak>hi<break time='300ms'/>there</speak>" -o hi.wav`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// 参数已通过校验，之后的错误不再打印用法
			cmd.SilenceUsage = true

			flags := cmd.Flags()
			var output *string
			if flags.Changed("output") {
				output = &opts.output
			}
			req, err := request.New(opts.message, flags.Changed("message"), opts.input, flags.Changed("input"), output, opts.format, opts.ssml)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(opts.configPath, flags.Changed("config"))
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, opts); err != nil {
				return err
			}
			if err := logger.Init(logger.Config{
				Level:      cfg.Log.Level,
				File:       cfg.Log.File,
				MaxSize:    cfg.Log.MaxSize,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAge,
			}); err != nil {
				return err
			}

			return run(cmd.Context(), cfg, req)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.message, "message", "m", "", "要合成的文本")
	f.StringVarP(&opts.input, "input", "i", "", "要合成的文本文件")
	f.StringVarP(&opts.output, "output", "o", "", "输出音频文件路径，省略时直接播放")
	f.VarP(request.NewFormatValue(&opts.format), "format", "f", "输出音频格式")
	f.BoolVar(&opts.ssml, "ssml", false, "将文本作为 SSML 解析")
	f.StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "配置文件路径")
	f.StringVarP(&opts.engine, "engine", "e", "", fmt.Sprintf("语音合成引擎 (%s)", strings.Join(tts.Names, "|")))
	f.StringVar(&opts.voice, "voice", "", "音色，含义取决于引擎")
	f.StringVar(&opts.logLevel, "log-level", "", "日志级别 (debug|info|warn|error)")

	cmd.MarkFlagsMutuallyExclusive("message", "input")
	cmd.MarkFlagsOneRequired("message", "input")

	return cmd
}

// loadConfig 读取配置；显式指定的配置文件必须存在，默认路径可以缺失。
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if explicit {
		return config.Load(path)
	}
	return config.LoadOptional(path)
}

// applyOverrides 用命令行参数覆盖配置。
func applyOverrides(cfg *config.Config, opts options) error {
	if opts.engine != "" {
		cfg.TTS.Engine = strings.ToLower(strings.TrimSpace(opts.engine))
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.voice != "" {
		return applyVoice(&cfg.TTS, opts.voice)
	}
	return nil
}

// applyVoice 把 --voice 写入当前引擎对应的配置项。
func applyVoice(cfg *config.TTSConfig, voice string) error {
	switch cfg.Engine {
	case "edge":
		cfg.Edge.Voice = voice
	case "tencent":
		v, err := strconv.ParseInt(voice, 10, 64)
		if err != nil {
			return fmt.Errorf("腾讯云音色必须是数字 voice_type: %q", voice)
		}
		cfg.Tencent.VoiceType = v
	case "sherpa":
		sid, err := strconv.Atoi(voice)
		if err != nil {
			return fmt.Errorf("sherpa 音色必须是数字 speaker id: %q", voice)
		}
		cfg.Sherpa.SpeakerID = sid
	case "piper":
		cfg.Piper.ModelPath = voice
	case "espeak":
		cfg.Espeak.Voice = voice
	case "say":
		cfg.Say.Voice = voice
	}
	return nil
}
