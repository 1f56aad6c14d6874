package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/iabetor/pisay/internal/logger"
)

// lookBinary 返回 candidates 中第一个可以在 PATH 中找到的程序路径。
func lookBinary(candidates ...string) (string, error) {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: 找不到 %s", ErrEngineUnavailable, strings.Join(candidates, " / "))
}

// runCommand 运行子进程，stdin 写入 input，返回 stdout。
// 失败时错误信息带上 stderr 内容。
func runCommand(ctx context.Context, tag string, input []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			logger.Warnf("[tts] %s stderr: %s", tag, msg)
			return nil, fmt.Errorf("[tts] %s 执行失败: %w: %s", tag, err, msg)
		}
		return nil, fmt.Errorf("[tts] %s 执行失败: %w", tag, err)
	}
	return stdout.Bytes(), nil
}

// tempPath 创建一个空的临时文件并返回路径，cleanup 负责删除。
func tempPath(pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("[tts] 创建临时文件失败: %w", err)
	}
	path := f.Name()
	f.Close()
	return path, func() { os.Remove(path) }, nil
}
