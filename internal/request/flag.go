package request

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/iabetor/pisay/internal/format"
)

// FormatValue 是 --format 参数的 pflag.Value 实现，非法格式在解析阶段即被拒绝。
type FormatValue format.Format

var _ pflag.Value = (*FormatValue)(nil)

// NewFormatValue 返回指向 p 的 FormatValue，并把 p 设为默认格式。
func NewFormatValue(p *format.Format) *FormatValue {
	*p = format.Default
	return (*FormatValue)(p)
}

func (v *FormatValue) String() string { return string(*v) }

func (v *FormatValue) Set(s string) error {
	f, err := format.Parse(s)
	if err != nil {
		return err
	}
	*v = FormatValue(f)
	return nil
}

func (v *FormatValue) Type() string { return strings.Join(format.Names(), "|") }
