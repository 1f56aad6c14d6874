package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 pisay 的顶层配置结构。
type Config struct {
	TTS       TTSConfig       `yaml:"tts"`
	Transcode TranscodeConfig `yaml:"transcode"`
	Log       LogConfig       `yaml:"log"`
}

// TTSConfig 语音合成配置。
type TTSConfig struct {
	Engine  string        `yaml:"engine"`
	Edge    EdgeConfig    `yaml:"edge"`
	Tencent TencentConfig `yaml:"tencent"`
	Sherpa  SherpaConfig  `yaml:"sherpa"`
	Piper   PiperConfig   `yaml:"piper"`
	Espeak  EspeakConfig  `yaml:"espeak"`
	Say     SayConfig     `yaml:"say"`
}

// EdgeConfig Edge TTS 配置。
type EdgeConfig struct {
	Voice string `yaml:"voice"`
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID   string  `yaml:"secret_id"`
	SecretKey  string  `yaml:"secret_key"`
	VoiceType  int64   `yaml:"voice_type"`
	Region     string  `yaml:"region"`
	Speed      float64 `yaml:"speed"`
	SampleRate int64   `yaml:"sample_rate"`
}

// SherpaConfig sherpa-onnx 离线 VITS 模型配置。
type SherpaConfig struct {
	Model      string  `yaml:"model"`
	Tokens     string  `yaml:"tokens"`
	Lexicon    string  `yaml:"lexicon"`
	DataDir    string  `yaml:"data_dir"`
	SpeakerID  int     `yaml:"speaker_id"`
	Speed      float32 `yaml:"speed"`
	NumThreads int     `yaml:"num_threads"`
}

// PiperConfig Piper TTS 配置。
type PiperConfig struct {
	Binary     string `yaml:"binary"`
	ModelPath  string `yaml:"model_path"`
	SampleRate int    `yaml:"sample_rate"`
}

// EspeakConfig espeak-ng 配置。
type EspeakConfig struct {
	Binary string `yaml:"binary"` // 为空时依次查找 espeak-ng、espeak
	Voice  string `yaml:"voice"`
}

// SayConfig macOS say 配置。
type SayConfig struct {
	Voice string `yaml:"voice"`
}

// TranscodeConfig 转码配置。
type TranscodeConfig struct {
	// Command 是 ffmpeg 的命令行前缀，按 shell 规则拆分。
	Command string `yaml:"command"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// DefaultPath 返回默认配置文件路径 ~/.config/pisay/pisay.yaml。
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pisay", "pisay.yaml")
}

// Default 返回只包含默认值的配置。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${PISAY_TENCENT_SECRET_KEY}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// LoadOptional 与 Load 相同，但文件不存在时返回默认配置。
// 用于未显式指定 --config 的情况。
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.TTS.Engine == "" {
		cfg.TTS.Engine = "edge"
	}
	cfg.TTS.Engine = strings.ToLower(strings.TrimSpace(cfg.TTS.Engine))
	if cfg.TTS.Edge.Voice == "" {
		cfg.TTS.Edge.Voice = "en-US-AriaNeural"
	}
	if cfg.TTS.Tencent.Region == "" {
		cfg.TTS.Tencent.Region = "ap-guangzhou"
	}
	if cfg.TTS.Tencent.VoiceType == 0 {
		cfg.TTS.Tencent.VoiceType = 1001
	}
	if cfg.TTS.Tencent.Speed == 0 {
		cfg.TTS.Tencent.Speed = 1.0
	}
	if cfg.TTS.Tencent.SampleRate == 0 {
		cfg.TTS.Tencent.SampleRate = 16000
	}
	if cfg.TTS.Sherpa.Speed == 0 {
		cfg.TTS.Sherpa.Speed = 1.0
	}
	if cfg.TTS.Sherpa.NumThreads == 0 {
		cfg.TTS.Sherpa.NumThreads = 2
	}
	if cfg.TTS.Piper.Binary == "" {
		cfg.TTS.Piper.Binary = "piper"
	}
	if cfg.TTS.Piper.SampleRate == 0 {
		cfg.TTS.Piper.SampleRate = 22050
	}
	if cfg.Transcode.Command == "" {
		cfg.Transcode.Command = "ffmpeg -hide_banner -loglevel error"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	for _, p := range []*string{
		&cfg.Log.File,
		&cfg.TTS.Sherpa.Model,
		&cfg.TTS.Sherpa.Tokens,
		&cfg.TTS.Sherpa.Lexicon,
		&cfg.TTS.Sherpa.DataDir,
		&cfg.TTS.Piper.ModelPath,
	} {
		*p = expandHome(*p)
	}

	// 去除密钥两端可能的空白（环境变量展开后常见）
	cfg.TTS.Tencent.SecretID = strings.TrimSpace(cfg.TTS.Tencent.SecretID)
	cfg.TTS.Tencent.SecretKey = strings.TrimSpace(cfg.TTS.Tencent.SecretKey)
}

// expandHome 把开头的 ~/ 替换为用户主目录，Go 不会自动展开 ~。
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return path
	}
	return home + path[1:]
}
