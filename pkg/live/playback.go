package live

import (
	"sync"

	"github.com/karen-assistant/karen/pkg/audio"
)

// Output is a playback sink with its own clock. Now is the current clock
// time in seconds; Play schedules a buffer to begin at startAt on that clock
// and returns a channel that closes when the chunk finishes playing.
type Output interface {
	Now() float64
	Play(buf *audio.Buffer, startAt float64) (<-chan struct{}, error)
}

// Scheduler sequences inbound audio chunks for gapless playback. A monotonic
// cursor tracks the next scheduled start time: each chunk starts at
// max(cursor, clock), so chunks play back-to-back in arrival order with no
// overlap, and a late arrival produces an audible gap rather than an error.
type Scheduler struct {
	mu         sync.Mutex
	out        Output
	cursor     float64
	active     map[uint64]struct{}
	nextID     uint64
	onSpeaking func(bool)
}

// NewScheduler creates a scheduler over out. onSpeaking, when non-nil, fires
// with true when the active chunk set becomes non-empty and false when it
// drains; it must not call back into the scheduler.
func NewScheduler(out Output, onSpeaking func(bool)) *Scheduler {
	return &Scheduler{
		out:        out,
		active:     make(map[uint64]struct{}),
		onSpeaking: onSpeaking,
	}
}

// Schedule queues buf for playback after everything already scheduled.
func (s *Scheduler) Schedule(buf *audio.Buffer) error {
	s.mu.Lock()
	start := s.cursor
	if now := s.out.Now(); now > start {
		start = now
	}
	done, err := s.out.Play(buf, start)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.cursor = start + buf.Duration()
	id := s.nextID
	s.nextID++
	s.active[id] = struct{}{}
	wasSilent := len(s.active) == 1
	s.mu.Unlock()

	if wasSilent && s.onSpeaking != nil {
		s.onSpeaking(true)
	}
	go func() {
		<-done
		s.complete(id)
	}()
	return nil
}

func (s *Scheduler) complete(id uint64) {
	s.mu.Lock()
	if _, ok := s.active[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.active, id)
	silent := len(s.active) == 0
	s.mu.Unlock()

	if silent && s.onSpeaking != nil {
		s.onSpeaking(false)
	}
}

// Reset zeroes the cursor and forgets all scheduled chunks. It runs at
// session start and whenever the assistant's turn is interrupted.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	wasSpeaking := len(s.active) > 0
	s.active = make(map[uint64]struct{})
	s.cursor = 0
	s.mu.Unlock()

	if wasSpeaking && s.onSpeaking != nil {
		s.onSpeaking(false)
	}
}

// Cursor returns the next scheduled start time in seconds.
func (s *Scheduler) Cursor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Speaking reports whether any scheduled chunk has not yet finished.
func (s *Scheduler) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active) > 0
}
