// Package request 定义一次 pisay 调用的参数模型以及待合成文本的解析。
package request

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/iabetor/pisay/internal/format"
)

// ErrInputRequired 表示 --message 与 --input 必须且只能提供一个。
var ErrInputRequired = errors.New("exactly one of message or input file is required")

// Input 是待合成文本的来源：字面文本或文本文件，二者只有一个有效。
type Input struct {
	Text string
	File string
}

// IsFile 报告输入是否来自文件。
func (in Input) IsFile() bool { return in.File != "" }

// Request 是解析后的命令行请求，创建后不再修改。
type Request struct {
	Input Input
	// Output 为 nil 表示直接播放；非 nil（即使为空字符串）表示写入文件。
	Output *string
	Format format.Format
	SSML   bool
}

// New 校验并构造 Request。hasText/hasFile 表示对应参数是否出现过，
// 以便区分“未提供”和“提供了空字符串”。
func New(text string, hasText bool, file string, hasFile bool, output *string, f format.Format, ssml bool) (*Request, error) {
	if hasText == hasFile {
		return nil, ErrInputRequired
	}
	if hasFile && file == "" {
		return nil, fmt.Errorf("%w: input file path is empty", ErrInputRequired)
	}
	if f == "" {
		f = format.Default
	}
	if _, err := format.Lookup(f); err != nil {
		return nil, err
	}

	req := &Request{Format: f, SSML: ssml}
	if hasText {
		req.Input.Text = text
	} else {
		req.Input.File = file
	}
	if output != nil {
		o := *output
		req.Output = &o
	}
	return req, nil
}

// Playback 报告请求是否为直接播放模式。
func (r *Request) Playback() bool { return r.Output == nil }

// AbsPath 尽力将 path 解析为基于当前工作目录的绝对路径；
// 无法获取工作目录时原样返回 path，不视为错误。
func AbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(wd, path)
}

// ResolveText 返回需要合成的文本：字面文本原样返回，文件输入则读取全部内容。
func ResolveText(fs afero.Fs, in Input) (string, error) {
	if !in.IsFile() {
		return in.Text, nil
	}
	path := AbsPath(in.File)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("[request] 读取输入文件 %s 失败: %w", path, err)
	}
	return string(data), nil
}
