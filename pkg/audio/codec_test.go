package audio

import (
	"bytes"
	"math"
	"testing"

	"github.com/karen-assistant/karen/pkg/core"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"single byte", []byte{0x7f}},
		{"pcm-ish", []byte{0x00, 0x80, 0xff, 0x7f, 0x01, 0x00}},
		{"all values", func() []byte {
			b := make([]byte, 256)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(Encode(tt.raw))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(decoded, tt.raw) {
				t.Errorf("round trip mismatch: got %v, want %v", decoded, tt.raw)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, input := range []string{"not base64!!", "%%%", "ab\ncd\x00"} {
		_, err := Decode(input)
		if err == nil {
			t.Errorf("expected error for %q", input)
			continue
		}
		if !core.IsType(err, core.ErrEncoding) {
			t.Errorf("expected encoding error for %q, got %v", input, err)
		}
	}
}

func TestCreateBlob(t *testing.T) {
	blob := CreateBlob([]float32{0, 0.5, -0.5, 1.0, -1.0, 2.0, -2.0})

	if blob.SampleRate != CaptureSampleRate {
		t.Errorf("expected %d Hz, got %d", CaptureSampleRate, blob.SampleRate)
	}
	if blob.MIMEType != "audio/pcm;rate=16000" {
		t.Errorf("unexpected mime type %q", blob.MIMEType)
	}

	pcm, err := Decode(blob.Data)
	if err != nil {
		t.Fatalf("decode blob: %v", err)
	}

	expected := []int16{0, 16384, -16384, 32767, -32768, 32767, -32768}
	if len(pcm) != len(expected)*2 {
		t.Fatalf("expected %d bytes, got %d", len(expected)*2, len(pcm))
	}
	for i, want := range expected {
		got := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		if got != want {
			t.Errorf("sample %d: got %d, want %d", i, got, want)
		}
	}
}

func TestCreateBlobEmpty(t *testing.T) {
	blob := CreateBlob(nil)
	pcm, err := Decode(blob.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pcm) != 0 {
		t.Errorf("expected empty pcm, got %d bytes", len(pcm))
	}
}

func TestDecodeAudioDataEmpty(t *testing.T) {
	buf, err := DecodeAudioData(nil, PlaybackSampleRate, 1)
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if len(buf.Samples) != 0 {
		t.Errorf("expected zero samples, got %d", len(buf.Samples))
	}
	if buf.Duration() != 0 {
		t.Errorf("expected zero duration, got %f", buf.Duration())
	}
}

func TestDecodeAudioDataIgnoresOddTrailingByte(t *testing.T) {
	buf, err := DecodeAudioData([]byte{0x00, 0x40, 0x7f}, PlaybackSampleRate, 1)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(buf.Samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(buf.Samples))
	}
	if buf.Samples[0] != 0.5 {
		t.Errorf("expected 0.5, got %f", buf.Samples[0])
	}
}

func TestDecodeAudioDataRejectsBadParams(t *testing.T) {
	if _, err := DecodeAudioData(nil, 0, 1); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := DecodeAudioData(nil, PlaybackSampleRate, 0); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestBufferDuration(t *testing.T) {
	// 24000 mono samples at 24kHz = 1 second.
	buf := &Buffer{Samples: make([]float32, 24000), SampleRate: 24000, Channels: 1}
	if buf.Duration() != 1.0 {
		t.Errorf("expected 1s, got %f", buf.Duration())
	}

	// Stereo halves the frame count.
	buf.Channels = 2
	if buf.Duration() != 0.5 {
		t.Errorf("expected 0.5s, got %f", buf.Duration())
	}
}

func TestBlobRoundTripQuantizationBound(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.123456, -0.987654, 1.0, -1.0, 0.333333}

	blob := CreateBlob(samples)
	raw, err := Decode(blob.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	buf, err := DecodeAudioData(raw, CaptureSampleRate, 1)
	if err != nil {
		t.Fatalf("decode audio: %v", err)
	}
	if len(buf.Samples) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(buf.Samples))
	}

	const bound = 1.0 / 32768
	for i, want := range samples {
		got := buf.Samples[i]
		if math.Abs(float64(got-want)) > bound {
			t.Errorf("sample %d: got %f, want %f (±%f)", i, got, want, bound)
		}
	}
}
