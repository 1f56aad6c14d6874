package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWAV_Header(t *testing.T) {
	pcm := Int16ToBytes([]int16{0, 100, -100, 32000})
	data, err := EncodeWAV(pcm, 22050, 1)
	require.NoError(t, err)

	require.Len(t, data, 44+len(pcm))
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(22050), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, pcm, data[44:])
}

func TestEncodeWAV_InvalidParams(t *testing.T) {
	_, err := EncodeWAV(nil, 0, 1)
	assert.Error(t, err)
	_, err = EncodeWAV(nil, 16000, 0)
	assert.Error(t, err)
}

func TestDecodeWAV_Roundtrip(t *testing.T) {
	pcm := Int16ToBytes([]int16{1, -1, 2, -2, 300, -300})
	data, err := EncodeWAV(pcm, 16000, 2)
	require.NoError(t, err)

	got, err := DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, 16000, got.SampleRate)
	assert.Equal(t, 2, got.Channels)
	assert.Equal(t, pcm, got.Data)
}

func TestEncodeSamplesWAV_Mono(t *testing.T) {
	data, err := EncodeSamplesWAV([]float32{0, 1, -1}, 24000)
	require.NoError(t, err)

	got, err := DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Channels)
	assert.Equal(t, 24000, got.SampleRate)
	assert.Equal(t, []int16{0, 32767, -32767}, BytesToInt16(got.Data))
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode(ContentTypeWAV, []byte("definitely not a riff file"))
	assert.True(t, errors.Is(err, ErrUnsupportedContent), "got %v", err)

	_, err = Decode("audio/ogg", []byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrUnsupportedContent), "got %v", err)
}

func TestSeekBuffer_OverwriteAndExtend(t *testing.T) {
	s := &seekBuffer{}
	_, _ = s.Write([]byte("abcdef"))
	_, err := s.Seek(2, io.SeekStart)
	require.NoError(t, err)
	_, _ = s.Write([]byte("XY"))
	_, err = s.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	_, _ = s.Write([]byte("!"))

	assert.Equal(t, "abXYef!", string(s.Bytes()))

	_, err = s.Seek(-100, io.SeekCurrent)
	assert.Error(t, err)
}
