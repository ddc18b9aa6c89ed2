package live

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/karen-assistant/karen/pkg/audio"
	"github.com/karen-assistant/karen/pkg/core"
)

// Speaker plays scheduled PCM through a long-lived ffplay process. Its clock
// is seconds since the speaker was opened; Play sleeps until the scheduled
// start before writing, so a gapless cursor keeps the pipe continuous.
type Speaker struct {
	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	epoch time.Time
}

func NewSpeaker() (*Speaker, error) {
	if _, err := exec.LookPath("ffplay"); err != nil {
		return nil, core.NewDeviceUnavailableError("ffplay is required for voice playback", err)
	}
	cmd := exec.Command("ffplay",
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", audio.PlaybackSampleRate),
		"-ac", "1",
		"-i", "pipe:0",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, core.NewDeviceUnavailableError("open playback pipe", err)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, core.NewDeviceUnavailableError("start playback", err)
	}
	return &Speaker{cmd: cmd, stdin: stdin, epoch: time.Now()}, nil
}

func (p *Speaker) Now() float64 {
	return time.Since(p.epoch).Seconds()
}

func (p *Speaker) Play(buf *audio.Buffer, startAt float64) (<-chan struct{}, error) {
	if buf == nil {
		return nil, core.NewInvalidRequestError("buffer must not be nil")
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if wait := startAt - p.Now(); wait > 0 {
			time.Sleep(time.Duration(wait * float64(time.Second)))
		}
		p.mu.Lock()
		stdin := p.stdin
		p.mu.Unlock()
		if stdin == nil {
			return
		}
		if _, err := stdin.Write(buf.PCM()); err != nil {
			return
		}
		if d := buf.Duration(); d > 0 {
			time.Sleep(time.Duration(d * float64(time.Second)))
		}
	}()
	return done, nil
}

func (p *Speaker) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stdin = nil
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	p.cmd = nil
	return nil
}
