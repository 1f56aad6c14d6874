// Package format 定义输出音频格式以及格式到编码配置的映射表。
// 新增格式只需 Register 一条 Profile，不需要改动转码流程。
package format

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Format 是输出音频格式的名称，统一为小写。
type Format string

const (
	WAV  Format = "wav"
	MP3  Format = "mp3"
	FLAC Format = "flac"
	ALAC Format = "alac"
	M4A  Format = "m4a"
	WMA  Format = "wma"
)

// Default 是未指定 --format 时使用的格式。
const Default = WAV

// Profile 描述把合成音频编码为某种格式所需的全部参数。
type Profile struct {
	Format    Format
	Extension string // 含点号，如 ".mp3"
	MIME      string

	// Passthrough 为 true 时合成输出直接作为最终结果，不经过转码。
	Passthrough bool

	Encoder string   // ffmpeg 编码器名，如 "libmp3lame"
	Muxer   string   // ffmpeg 封装格式名，如 "mp3"
	Args    []string // 附加在编码器之后的 ffmpeg 参数
}

var (
	mu       sync.RWMutex
	profiles = map[Format]Profile{}
)

func init() {
	for _, p := range []Profile{
		{Format: WAV, Extension: ".wav", MIME: "audio/wav", Passthrough: true},
		{Format: MP3, Extension: ".mp3", MIME: "audio/mpeg", Encoder: "libmp3lame", Muxer: "mp3", Args: []string{"-q:a", "2"}},
		{Format: FLAC, Extension: ".flac", MIME: "audio/flac", Encoder: "flac", Muxer: "flac"},
		// mp4 系封装写入管道时必须使用分片模式
		{Format: ALAC, Extension: ".m4a", MIME: "audio/mp4", Encoder: "alac", Muxer: "ipod", Args: []string{"-movflags", "frag_keyframe+empty_moov"}},
		{Format: M4A, Extension: ".m4a", MIME: "audio/mp4", Encoder: "aac", Muxer: "ipod", Args: []string{"-b:a", "192k", "-movflags", "frag_keyframe+empty_moov"}},
		{Format: WMA, Extension: ".wma", MIME: "audio/x-ms-wma", Encoder: "wmav2", Muxer: "asf", Args: []string{"-b:a", "128k"}},
	} {
		Register(p)
	}
}

// Register 添加或替换一个格式的编码配置。
func Register(p Profile) {
	p.Format = Format(strings.ToLower(string(p.Format)))
	mu.Lock()
	profiles[p.Format] = p
	mu.Unlock()
}

// Lookup 返回格式对应的编码配置。
func Lookup(f Format) (Profile, error) {
	mu.RLock()
	p, ok := profiles[f]
	mu.RUnlock()
	if !ok {
		return Profile{}, fmt.Errorf("不支持的音频格式: %q（可选: %s）", string(f), strings.Join(Names(), ", "))
	}
	return p, nil
}

// Parse 将用户输入（大小写不敏感）解析为已注册的 Format。
func Parse(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, err := Lookup(f); err != nil {
		return "", err
	}
	return f, nil
}

// Names 按字母序返回所有已注册格式名。
func Names() []string {
	mu.RLock()
	names := make([]string, 0, len(profiles))
	for f := range profiles {
		names = append(names, string(f))
	}
	mu.RUnlock()
	sort.Strings(names)
	return names
}
