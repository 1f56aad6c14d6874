// Package sink 负责把编码后的音频写入目标文件。
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/iabetor/pisay/internal/logger"
)

var (
	// ErrInvalidPathParent 表示输出路径没有可用的父目录。
	ErrInvalidPathParent = errors.New("invalid path parent")
	// ErrInvalidFileName 表示输出路径没有文件名部分。
	ErrInvalidFileName = errors.New("invalid file name")
)

// Split 把输出路径拆成父目录与文件名。
// 空路径和根目录没有父目录；以 "." 或 ".." 结尾的路径没有文件名。
func Split(path string) (dir, name string, err error) {
	if path == "" {
		return "", "", ErrInvalidPathParent
	}
	name = filepath.Base(path)
	switch name {
	case string(filepath.Separator):
		return "", "", ErrInvalidPathParent
	case ".", "..":
		return "", "", ErrInvalidFileName
	}
	return filepath.Dir(path), name, nil
}

// Target 是准备写入的输出文件。
// 数据先写入同目录下的临时文件，Commit 时再替换目标文件，
// 因此失败的请求不会创建或修改目标文件。
type Target struct {
	fs    afero.Fs
	tmp   afero.File
	final string

	mu   sync.Mutex
	done bool
}

// Open 确认父目录存在（不存在则创建）并在其中创建临时文件。
func Open(fs afero.Fs, dir, name string) (*Target, error) {
	info, err := fs.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("[sink] 创建目录 %s 失败: %w", dir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("[sink] 访问目录 %s 失败: %w", dir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s 不是目录", ErrInvalidPathParent, dir)
	}

	tmp, err := afero.TempFile(fs, dir, "."+name+".*.part")
	if err != nil {
		return nil, fmt.Errorf("[sink] 创建临时文件失败: %w", err)
	}
	logger.Debugf("[sink] 输出目标已就绪: %s", filepath.Join(dir, name))
	return &Target{fs: fs, tmp: tmp, final: filepath.Join(dir, name)}, nil
}

// Path 返回最终输出文件路径。
func (t *Target) Path() string { return t.final }

// Commit 一次性写入 buf 并替换目标文件（已存在则覆盖）。
func (t *Target) Commit(buf []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("[sink] %s 已提交或已放弃", t.final)
	}
	t.done = true

	tmpName := t.tmp.Name()
	if _, err := t.tmp.Write(buf); err != nil {
		t.tmp.Close()
		t.fs.Remove(tmpName)
		return fmt.Errorf("[sink] 写入 %s 失败: %w", t.final, err)
	}
	if err := t.tmp.Close(); err != nil {
		t.fs.Remove(tmpName)
		return fmt.Errorf("[sink] 关闭临时文件失败: %w", err)
	}
	if err := t.fs.Chmod(tmpName, 0644); err != nil {
		t.fs.Remove(tmpName)
		return fmt.Errorf("[sink] 设置文件权限失败: %w", err)
	}
	if err := t.fs.Rename(tmpName, t.final); err != nil {
		t.fs.Remove(tmpName)
		return fmt.Errorf("[sink] 替换 %s 失败: %w", t.final, err)
	}
	logger.Debugf("[sink] 已写入 %s (%d 字节)", t.final, len(buf))
	return nil
}

// Abort 放弃写入并删除临时文件；Commit 之后调用无效果。
func (t *Target) Abort() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	tmpName := t.tmp.Name()
	t.tmp.Close()
	if err := t.fs.Remove(tmpName); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("[sink] 删除临时文件 %s 失败: %v", tmpName, err)
	}
}
