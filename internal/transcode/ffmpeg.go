package transcode

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"

	"github.com/iabetor/pisay/internal/audio"
	"github.com/iabetor/pisay/internal/format"
	"github.com/iabetor/pisay/internal/logger"
	"github.com/iabetor/pisay/internal/tts"
)

// Runner 执行外部命令，便于测试替换。
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// 源容器类型到 ffmpeg demuxer 的映射。
var demuxers = map[string]string{
	audio.ContentTypeWAV: "wav",
	"audio/x-wav":        "wav",
	audio.ContentTypeMP3: "mp3",
}

// FFmpeg 通过 ffmpeg 子进程实现 Transcoder。
// 编码器与封装格式列表在第一次 Prepare 时探测并缓存。
type FFmpeg struct {
	bin      string
	baseArgs []string
	runner   Runner

	probeOnce sync.Once
	probeErr  error
	encoders  map[string]bool
	muxers    map[string]bool
}

// NewFFmpeg 按 shell 规则解析命令行前缀（如 "ffmpeg -hide_banner"）创建转码器。
func NewFFmpeg(command string) (*FFmpeg, error) {
	return NewFFmpegWithRunner(command, execRunner{})
}

// NewFFmpegWithRunner 与 NewFFmpeg 相同，但使用指定的 Runner。
func NewFFmpegWithRunner(command string, r Runner) (*FFmpeg, error) {
	args, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("[transcode] 解析 ffmpeg 命令失败: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("[transcode] ffmpeg 命令为空")
	}
	return &FFmpeg{bin: args[0], baseArgs: args[1:], runner: r}, nil
}

// Prepare 检查 ffmpeg 是否能解码源流并按 p 编码、封装。
// 探测失败（如未安装 ffmpeg）视为不可转码，而不是返回错误。
func (f *FFmpeg) Prepare(ctx context.Context, src *tts.Stream, p format.Profile) (Prepared, error) {
	job := &ffmpegJob{f: f, src: src, profile: p}

	demuxer, ok := demuxers[src.ContentType]
	if !ok {
		job.reason = fmt.Sprintf("无法识别的源格式 %q", src.ContentType)
		return job, nil
	}
	job.demuxer = demuxer

	if err := f.probe(ctx); err != nil {
		job.reason = fmt.Sprintf("ffmpeg 不可用: %v", err)
		return job, nil
	}
	switch {
	case !f.encoders[p.Encoder]:
		job.reason = fmt.Sprintf("ffmpeg 不支持编码器 %s", p.Encoder)
	case !f.muxers[p.Muxer]:
		job.reason = fmt.Sprintf("ffmpeg 不支持封装格式 %s", p.Muxer)
	default:
		job.ok = true
	}
	return job, nil
}

func (f *FFmpeg) probe(ctx context.Context) error {
	f.probeOnce.Do(func() {
		f.encoders, f.probeErr = f.list(ctx, "-encoders")
		if f.probeErr != nil {
			return
		}
		f.muxers, f.probeErr = f.list(ctx, "-muxers")
		if f.probeErr == nil {
			logger.Debugf("[transcode] ffmpeg 探测完成: %d 个编码器, %d 个封装格式", len(f.encoders), len(f.muxers))
		}
	})
	return f.probeErr
}

func (f *FFmpeg) list(ctx context.Context, flag string) (map[string]bool, error) {
	args := append(append([]string{}, f.baseArgs...), flag)
	stdout, stderr, err := f.runner.Run(ctx, nil, f.bin, args...)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", f.bin, flag, err, strings.TrimSpace(string(stderr)))
	}
	return parseCapabilities(stdout), nil
}

// parseCapabilities 解析 `ffmpeg -encoders` / `ffmpeg -muxers` 的输出。
// 分隔线（以 "--" 开头）之后每行格式为 "<flags> <name[,alias...]> <description>"。
func parseCapabilities(out []byte) map[string]bool {
	names := map[string]bool{}
	started := false
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !started {
			started = strings.HasPrefix(line, "--")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		for _, name := range strings.Split(fields[1], ",") {
			names[name] = true
		}
	}
	return names
}

type ffmpegJob struct {
	f       *FFmpeg
	src     *tts.Stream
	profile format.Profile
	demuxer string
	ok      bool
	reason  string
}

func (j *ffmpegJob) CanTranscode() bool { return j.ok }

func (j *ffmpegJob) Reason() string { return j.reason }

// Transcode 通过管道把源数据交给 ffmpeg，并读取编码后的输出。
func (j *ffmpegJob) Transcode(ctx context.Context) ([]byte, error) {
	if !j.ok {
		return nil, fmt.Errorf("%w: %s", ErrTranscodeFailed, j.reason)
	}
	args := append([]string{}, j.f.baseArgs...)
	args = append(args, "-f", j.demuxer, "-i", "pipe:0", "-vn", "-c:a", j.profile.Encoder)
	args = append(args, j.profile.Args...)
	args = append(args, "-f", j.profile.Muxer, "pipe:1")

	logger.Debugf("[transcode] 运行 %s %s", j.f.bin, strings.Join(args, " "))
	stdout, stderr, err := j.f.runner.Run(ctx, j.src.Data, j.f.bin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: ffmpeg: %v: %s", ErrTranscodeFailed, err, strings.TrimSpace(string(stderr)))
	}
	if len(stdout) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg 没有输出数据", ErrTranscodeFailed)
	}
	return stdout, nil
}
