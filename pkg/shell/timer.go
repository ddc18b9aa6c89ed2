package shell

import (
	"sync"
	"time"

	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
)

// TimerState is the study timer lifecycle.
type TimerState int

const (
	TimerStopped TimerState = iota
	TimerRunning
	TimerPaused
)

func (s TimerState) String() string {
	switch s {
	case TimerStopped:
		return "stopped"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	}
	return "unknown"
}

// Timer is the study countdown. It ticks once per interval while running;
// a completed countdown fires onDone with the recorded study session.
type Timer struct {
	mu        sync.Mutex
	state     TimerState
	initial   time.Duration
	remaining time.Duration
	subjectID string
	stop      chan struct{}

	interval time.Duration
	onDone   func(types.StudySession)
}

func NewTimer(onDone func(types.StudySession)) *Timer {
	return &Timer{interval: time.Second, onDone: onDone}
}

// Start begins a countdown for the given subject. A timer that is already
// running or paused rejects the call; Reset it first.
func (t *Timer) Start(duration time.Duration, subjectID string) error {
	if duration <= 0 {
		return core.NewInvalidRequestErrorWithParam("duration must be positive", "duration")
	}
	t.mu.Lock()
	if t.state != TimerStopped {
		t.mu.Unlock()
		return core.NewInvalidRequestError("timer already running")
	}
	t.state = TimerRunning
	t.initial = duration
	t.remaining = duration
	t.subjectID = subjectID
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.run(stop)
	return nil
}

func (t *Timer) run(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.state != TimerRunning {
				t.mu.Unlock()
				continue
			}
			t.remaining -= t.interval
			if t.remaining > 0 {
				t.mu.Unlock()
				continue
			}
			t.remaining = 0
			t.state = TimerStopped
			session := types.NewStudySession(t.subjectID, t.initial)
			done := t.onDone
			t.mu.Unlock()
			if done != nil {
				done(session)
			}
			return
		}
	}
}

// Pause freezes the countdown; ticks are ignored until Resume.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning {
		return core.NewInvalidRequestError("timer is not running")
	}
	t.state = TimerPaused
	return nil
}

func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerPaused {
		return core.NewInvalidRequestError("timer is not paused")
	}
	t.state = TimerRunning
	return nil
}

// Reset stops the countdown without recording a session.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.state = TimerStopped
	t.remaining = 0
	t.subjectID = ""
}

func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the time left on the countdown.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}
