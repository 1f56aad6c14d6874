package tts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenSSML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"speak root", `<speak version="1.0" xml:lang="en-US">Hello <emphasis>there</emphasis></speak>`, "Hello there"},
		{"break becomes pause", `<speak>one<break time="500ms"/>two</speak>`, "one two"},
		{"sentences", `<speak><s>First.</s><s>Second.</s></speak>`, "First. Second."},
		{"sub alias", `<speak>See the <sub alias="World Wide Web">WWW</sub> docs</speak>`, "See the World Wide Web docs"},
		{"entities", `<speak>Tom &amp; Jerry</speak>`, "Tom & Jerry"},
		{"whitespace collapsed", "<speak>\n  lots   of\n\tspace </speak>", "lots of space"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlattenSSML(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlattenSSML_Malformed(t *testing.T) {
	for _, in := range []string{
		"<speak>unclosed",
		"<speak><p>mismatched</s></speak>",
	} {
		_, err := FlattenSSML(in)
		assert.True(t, errors.Is(err, ErrInvalidSSML), "input %q: got %v", in, err)
	}
}

func TestPlainText(t *testing.T) {
	text, err := plainText(Request{Text: "<speak>hi</speak>", SSML: true})
	require.NoError(t, err)
	assert.Equal(t, "hi", text)

	text, err = plainText(Request{Text: "<b>kept</b>"})
	require.NoError(t, err)
	assert.Equal(t, "<b>kept</b>", text, "plain text must not be parsed as markup")

	_, err = plainText(Request{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = plainText(Request{Text: "<speak> </speak>", SSML: true})
	assert.ErrorIs(t, err, ErrEmptyText)
}
