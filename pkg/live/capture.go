package live

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"github.com/karen-assistant/karen/pkg/audio"
	"github.com/karen-assistant/karen/pkg/core"
)

// FrameSize is the number of samples per outbound capture block.
const FrameSize = 4096

// CaptureSource delivers microphone audio as fixed-size frames of normalized
// samples at the capture rate. The frame channel closes when capture ends,
// whether by Stop or by device failure.
type CaptureSource interface {
	Start(ctx context.Context) (<-chan []float32, error)
	Stop()
}

// MicSource captures the default microphone through ffmpeg as 16 kHz mono
// s16le PCM on stdout.
type MicSource struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewMicSource() *MicSource {
	return &MicSource{}
}

func (m *MicSource) Start(ctx context.Context) (<-chan []float32, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, core.NewDeviceUnavailableError("ffmpeg is required for microphone capture", err)
	}
	args, err := micFFmpegArgs(runtime.GOOS)
	if err != nil {
		return nil, core.NewDeviceUnavailableError("microphone capture unsupported", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, core.NewDeviceUnavailableError("open capture pipe", err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, core.NewDeviceUnavailableError("start microphone capture", err)
	}

	m.mu.Lock()
	m.cmd = cmd
	m.mu.Unlock()

	frames := make(chan []float32)
	go func() {
		defer close(frames)
		defer func() { _ = cmd.Wait() }()
		raw := make([]byte, FrameSize*2)
		for {
			if _, err := io.ReadFull(stdout, raw); err != nil {
				return
			}
			buf, err := audio.DecodeAudioData(raw, audio.CaptureSampleRate, 1)
			if err != nil {
				return
			}
			select {
			case frames <- buf.Samples:
			case <-ctx.Done():
				return
			}
		}
	}()
	return frames, nil
}

// Stop kills the capture process; the frame channel closes once the final
// read fails.
func (m *MicSource) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
	m.cmd = nil
}

func micFFmpegArgs(goos string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "avfoundation", "-i", ":0",
			"-ac", "1", "-ar", fmt.Sprintf("%d", audio.CaptureSampleRate),
			"-f", "s16le", "-",
		}, nil
	case "linux":
		return []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "pulse", "-i", "default",
			"-ac", "1", "-ar", fmt.Sprintf("%d", audio.CaptureSampleRate),
			"-f", "s16le", "-",
		}, nil
	default:
		return nil, fmt.Errorf("microphone capture is not implemented for %s; supported platforms: darwin, linux", goos)
	}
}
