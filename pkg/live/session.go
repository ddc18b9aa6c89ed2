// Package live implements the bidirectional voice session: microphone frames
// flow out to the streaming endpoint while inbound audio chunks are scheduled
// for gapless sequential playback.
package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/karen-assistant/karen/pkg/audio"
	"github.com/karen-assistant/karen/pkg/core"
)

// Callbacks receive session notifications. They are invoked synchronously
// and must not call back into the session.
type Callbacks struct {
	// OnState fires on every lifecycle transition.
	OnState func(State)
	// OnSpeaking fires when the assistant starts or stops producing audible
	// output.
	OnSpeaking func(bool)
}

// Session owns one live audio exchange. All lifecycle state lives here;
// the scheduler and capture source never transition it on their own.
type Session struct {
	capture  CaptureSource
	upstream Upstream
	sched    *Scheduler
	logger   *slog.Logger
	cb       Callbacks

	mu    sync.Mutex
	state State
	conn  Conn
	done  chan struct{}
}

func NewSession(capture CaptureSource, upstream Upstream, out Output, cb Callbacks, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		capture:  capture,
		upstream: upstream,
		sched:    NewScheduler(out, cb.OnSpeaking),
		logger:   logger,
		cb:       cb,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Speaking reports whether scheduled assistant audio is still playing.
func (s *Session) Speaking() bool {
	return s.sched.Speaking()
}

// Done returns a channel that closes when the session has fully returned to
// idle. It is nil before the first successful Start.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Start acquires the microphone and opens the streaming channel. A session
// that is not idle rejects the call; there is no implicit stop-then-start.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return core.NewInvalidRequestError("live session already started")
	}
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	frames, err := s.capture.Start(ctx)
	if err != nil {
		s.logger.Warn("microphone unavailable", "error", err)
		s.mu.Lock()
		s.setStateLocked(StateIdle)
		s.mu.Unlock()
		if core.IsType(err, core.ErrDeviceUnavailable) {
			return err
		}
		return core.NewDeviceUnavailableError("acquire microphone", err)
	}

	conn, err := s.upstream.Connect(ctx)
	if err != nil {
		s.logger.Error("live connect failed", "error", err)
		s.capture.Stop()
		s.mu.Lock()
		s.setStateLocked(StateErrored)
		s.setStateLocked(StateIdle)
		s.mu.Unlock()
		return core.NewTransportError("open live session", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.done = make(chan struct{})
	s.sched.Reset()
	s.setStateLocked(StateActive)
	done := s.done
	s.mu.Unlock()

	s.logger.Info("live session active")
	go s.forward(frames, conn)
	go s.receive(conn, done)
	return nil
}

// Stop ends the session. Capture stops immediately; audio already scheduled
// may finish playing.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return core.NewInvalidRequestError("no active live session")
	}
	s.setStateLocked(StateClosing)
	conn := s.conn
	s.mu.Unlock()

	s.capture.Stop()
	if conn != nil {
		_ = conn.Close()
	}
	return nil
}

// forward streams capture frames upstream. A frame readied while the session
// is not active is dropped, never queued.
func (s *Session) forward(frames <-chan []float32, conn Conn) {
	for frame := range frames {
		if s.State() != StateActive {
			continue
		}
		blob := audio.CreateBlob(frame)
		if err := conn.Send(blob); err != nil {
			s.fail(err)
			return
		}
	}
}

// receive consumes inbound messages until the channel closes and owns the
// terminal transition back to idle.
func (s *Session) receive(conn Conn, done chan struct{}) {
	defer close(done)
	for msg := range conn.Receive() {
		if msg.Err != nil {
			s.fail(msg.Err)
			continue
		}
		if msg.Interrupted {
			s.sched.Reset()
		}
		if msg.Audio == nil {
			continue
		}
		raw, err := audio.Decode(msg.Audio.Data)
		if err != nil {
			s.logger.Warn("dropped malformed audio chunk", "error", err)
			continue
		}
		buf, err := audio.DecodeAudioData(raw, audio.PlaybackSampleRate, 1)
		if err != nil {
			s.logger.Warn("dropped undecodable audio chunk", "error", err)
			continue
		}
		if err := s.sched.Schedule(buf); err != nil {
			s.logger.Warn("playback scheduling failed", "error", err)
		}
	}
	s.finish()
}

// fail aborts an in-flight session on a transport error.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.state != StateActive && s.state != StateConnecting {
		// Shutdown already in progress; the error is part of teardown.
		s.mu.Unlock()
		return
	}
	s.logger.Error("live session error", "error", err)
	s.setStateLocked(StateErrored)
	conn := s.conn
	s.mu.Unlock()

	s.capture.Stop()
	if conn != nil {
		_ = conn.Close()
	}
	s.sched.Reset()

	s.mu.Lock()
	s.setStateLocked(StateIdle)
	s.mu.Unlock()
}

// finish completes the transition to idle after the inbound channel closes.
func (s *Session) finish() {
	s.mu.Lock()
	switch s.state {
	case StateActive:
		// Graceful remote close.
		s.mu.Unlock()
		s.capture.Stop()
		s.sched.Reset()
		s.mu.Lock()
		s.setStateLocked(StateIdle)
	case StateClosing:
		s.setStateLocked(StateIdle)
	}
	s.conn = nil
	s.mu.Unlock()
}

func (s *Session) setStateLocked(next State) {
	if s.state == next {
		return
	}
	s.state = next
	if s.cb.OnState != nil {
		s.cb.OnState(next)
	}
}
