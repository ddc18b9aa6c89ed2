// Package audio provides the pure audio helpers shared by the live session
// and the speech pipeline: transport encoding, PCM conversion and level
// metering. All audio on the wire is 16-bit signed little-endian PCM.
package audio

import (
	"encoding/base64"
	"math"

	"github.com/karen-assistant/karen/pkg/core"
)

const (
	// CaptureSampleRate is the upstream capture rate in Hz.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the assistant voice output rate in Hz.
	PlaybackSampleRate = 24000

	bytesPerSample = 2
)

// Blob is one transport-encoded unit of captured audio.
type Blob struct {
	Data       string `json:"data"`
	MIMEType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate"`
}

// Encode maps raw bytes to the transport-safe text representation.
// Decode(Encode(b)) == b for every byte sequence, including empty.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode is the inverse of Encode. Input outside the encoding alphabet
// fails with an encoding-typed error.
func Decode(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, core.NewEncodingError("malformed transport encoding", err)
	}
	return raw, nil
}

// CreateBlob converts normalized float samples in [-1, 1] to 16-bit PCM and
// wraps them as a transport blob at the fixed capture rate. Out-of-range
// samples are clamped; in-range samples round to the nearest integer.
func CreateBlob(samples []float32) Blob {
	pcm := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		v := math.Round(float64(s) * 32768)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		n := int16(v)
		pcm[i*2] = byte(n)
		pcm[i*2+1] = byte(n >> 8)
	}
	return Blob{
		Data:       Encode(pcm),
		MIMEType:   "audio/pcm;rate=16000",
		SampleRate: CaptureSampleRate,
	}
}

// Buffer is decoded PCM ready for scheduled playback. Samples are
// interleaved when Channels > 1.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// DecodeAudioData interprets raw bytes as 16-bit signed little-endian PCM
// and produces a playable buffer. Empty input yields a valid zero-length
// buffer; an odd trailing byte is ignored.
func DecodeAudioData(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, core.NewInvalidRequestError("sample rate must be positive")
	}
	if channels <= 0 {
		return nil, core.NewInvalidRequestError("channel count must be positive")
	}
	n := len(raw) / bytesPerSample
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(raw[i*2]) | int16(raw[i*2+1])<<8
		samples[i] = float32(s) / 32768
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// Duration returns the playback duration in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	frames := len(b.Samples) / b.Channels
	return float64(frames) / float64(b.SampleRate)
}

// PCM re-encodes the buffer as 16-bit signed little-endian PCM bytes.
func (b *Buffer) PCM() []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b.Samples)*bytesPerSample)
	for i, s := range b.Samples {
		v := math.Round(float64(s) * 32768)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		n := int16(v)
		out[i*2] = byte(n)
		out[i*2+1] = byte(n >> 8)
	}
	return out
}
