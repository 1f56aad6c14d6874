package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

const (
	// ContentTypeWAV 是所有合成引擎输出的容器类型。
	ContentTypeWAV = "audio/wav"
	// ContentTypeMP3 是 MP3 数据的容器类型。
	ContentTypeMP3 = "audio/mpeg"
)

// ErrUnsupportedContent 表示无法解码的音频容器类型或损坏的数据。
var ErrUnsupportedContent = errors.New("unsupported audio content")

// PCM 是解码后的 16-bit 小端交错 PCM。
type PCM struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// EncodeWAV 将 16-bit 小端 PCM 封装为 RIFF/WAVE 字节。
func EncodeWAV(pcm []byte, sampleRate, channels int) ([]byte, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("[audio] 无效的 WAV 参数: sample_rate=%d channels=%d", sampleRate, channels)
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           int16ToInts(BytesToInt16(pcm)),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("[audio] 写入 WAV 数据失败: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("[audio] 写入 WAV 头失败: %w", err)
	}
	return out.Bytes(), nil
}

// EncodeSamplesWAV 将 [-1, 1] 范围的单声道 float32 样本封装为 WAV。
func EncodeSamplesWAV(samples []float32, sampleRate int) ([]byte, error) {
	return EncodeWAV(Int16ToBytes(Float32ToInt16(samples)), sampleRate, 1)
}

// DecodeWAV 解析 WAV 字节并返回 16-bit PCM。
func DecodeWAV(data []byte) (*PCM, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: 不是有效的 WAV 数据", ErrUnsupportedContent)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("[audio] 读取 WAV PCM 失败: %w", err)
	}
	return &PCM{
		Data:       Int16ToBytes(intsToInt16(buf.Data, int(d.BitDepth))),
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
	}, nil
}

// DecodeMP3 将 MP3 解码为 16-bit 立体声 PCM。
func DecodeMP3(data []byte) (*PCM, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: MP3 解码失败: %v", ErrUnsupportedContent, err)
	}
	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("[audio] 读取 MP3 PCM 失败: %w", err)
	}
	// go-mp3 固定输出立体声，每帧 4 字节；截掉不完整的尾部帧
	pcm = pcm[:len(pcm)/4*4]
	return &PCM{Data: pcm, SampleRate: decoder.SampleRate(), Channels: 2}, nil
}

// Decode 按容器类型选择解码器。
func Decode(contentType string, data []byte) (*PCM, error) {
	switch contentType {
	case ContentTypeWAV, "audio/x-wav", "audio/wave":
		return DecodeWAV(data)
	case ContentTypeMP3, "audio/mp3":
		return DecodeMP3(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContent, contentType)
	}
}

// seekBuffer 是内存中的 io.WriteSeeker，供 WAV 编码器回写头部长度。
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	n := copy(s.buf[s.pos:], p)
	s.pos += n
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("seekBuffer: 无效的 whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seekBuffer: 负的偏移 %d", abs)
	}
	s.pos = int(abs)
	return abs, nil
}

func (s *seekBuffer) Bytes() []byte { return s.buf }
