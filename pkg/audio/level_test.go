package audio

import (
	"math"
	"testing"
)

func pcmFromSamples(samples []int16) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		pcm[i*2] = byte(s & 0xFF)
		pcm[i*2+1] = byte((s >> 8) & 0xFF)
	}
	return pcm
}

func TestRMSEnergy(t *testing.T) {
	tests := []struct {
		name     string
		samples  []int16
		expected float64
	}{
		{"empty", nil, 0.0},
		{"silence", []int16{0, 0, 0, 0}, 0.0},
		{"max amplitude", []int16{32767, 32767, 32767, 32767}, 1.0},
		{"half amplitude", []int16{16384, 16384, 16384, 16384}, 0.5},
		{"mixed signal", []int16{16384, -16384, 16384, -16384}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RMSEnergy(pcmFromSamples(tt.samples))
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("expected RMS %.3f, got %.3f", tt.expected, result)
			}
		})
	}
}

func TestPeakAmplitude(t *testing.T) {
	tests := []struct {
		name     string
		samples  []int16
		expected float64
	}{
		{"empty", nil, 0.0},
		{"silence", []int16{0, 0, 0, 0}, 0.0},
		{"positive peak", []int16{0, 16384, 0, 0}, 0.5},
		{"negative peak", []int16{0, -32768, 0, 0}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PeakAmplitude(pcmFromSamples(tt.samples))
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("expected peak %.3f, got %.3f", tt.expected, result)
			}
		})
	}
}
