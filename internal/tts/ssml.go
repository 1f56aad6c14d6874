package tts

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// 这些元素在朗读时对应停顿，展开为纯文本时用空格代替。
var ssmlPauseElements = map[string]bool{
	"break": true,
	"p":     true,
	"s":     true,
	"speak": true,
}

// FlattenSSML 提取 SSML 文档中需要朗读的文字，供不支持 SSML 的引擎使用。
// <sub alias="..."> 使用 alias 代替其内容；连续空白折叠为一个空格。
func FlattenSSML(doc string) (string, error) {
	d := xml.NewDecoder(strings.NewReader(doc))
	d.Strict = true
	d.Entity = xml.HTMLEntity

	var b strings.Builder
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidSSML, err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			if ssmlPauseElements[t.Name.Local] {
				b.WriteByte(' ')
			}
			if t.Name.Local == "sub" {
				if alias := attr(t, "alias"); alias != "" {
					b.WriteString(alias)
					if err := d.Skip(); err != nil {
						return "", fmt.Errorf("%w: %v", ErrInvalidSSML, err)
					}
				}
			}
		case xml.EndElement:
			if ssmlPauseElements[t.Name.Local] {
				b.WriteByte(' ')
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}

// ValidateSSML 检查 SSML 是否为格式正确的 XML。
func ValidateSSML(doc string) error {
	_, err := FlattenSSML(doc)
	return err
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
