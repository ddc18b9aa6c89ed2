// Package shell is the application layer behind the UI: it owns the chat
// transcript, settings, study and project state, and orchestrates assistant
// turns, speech and the study timer.
package shell

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/karen-assistant/karen/internal/i18n"
	"github.com/karen-assistant/karen/pkg/assistant"
	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
)

// Voice plays synthesized speech PCM. Implementations should not block for
// the duration of playback.
type Voice interface {
	Play(pcm []byte)
}

type Options struct {
	Voice    Voice
	OnNotify func(text string)
	Logger   *slog.Logger
}

// Shell ties the store to the assistant. One instance serves the whole
// application run.
type Shell struct {
	store     *Store
	assistant *assistant.Client
	localizer *i18n.Localizer
	timer     *Timer
	voice     Voice
	onNotify  func(string)
	logger    *slog.Logger
}

func New(store *Store, client *assistant.Client, localizer *i18n.Localizer, opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Shell{
		store:     store,
		assistant: client,
		localizer: localizer,
		voice:     opts.Voice,
		onNotify:  opts.OnNotify,
		logger:    opts.Logger,
	}
	s.timer = NewTimer(s.timerDone)
	return s
}

func (s *Shell) Store() *Store { return s.store }
func (s *Shell) Timer() *Timer { return s.timer }

// Greet appends KAREN's opening line to the transcript.
func (s *Shell) Greet() types.Message {
	msg := types.NewMessage(types.RoleModel, s.localizer.Get(s.language(), i18n.MsgGreeting, nil))
	s.store.AppendMessage(msg)
	return msg
}

// Turn is the outcome of one chat exchange. Failed marks a turn whose reply
// degraded to the localized fallback; the transcript still holds both
// messages either way.
type Turn struct {
	User   types.Message `json:"user"`
	Reply  types.Message `json:"reply"`
	Failed bool          `json:"failed"`
}

// SendMessage runs one chat turn: the user message is appended first, then
// the assistant reply, in that order with strictly increasing timestamps.
// A failed turn still appends a reply carrying the localized fallback.
func (s *Shell) SendMessage(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, core.NewInvalidRequestErrorWithParam("message text must not be empty", "text")
	}

	history := s.store.Messages()
	user := types.NewMessage(types.RoleUser, text)
	s.store.AppendMessage(user)

	reply := s.assistant.SendMessage(ctx, text, history)
	if reply.Failed {
		s.logger.Warn("assistant reply degraded to fallback", "error", reply.Err)
	}

	model := types.NewMessage(types.RoleModel, reply.Text)
	if !model.Timestamp.After(user.Timestamp) {
		model.Timestamp = user.Timestamp.Add(time.Nanosecond)
	}
	s.store.AppendMessage(model)

	s.speak(ctx, reply.Text)
	return Turn{User: user, Reply: model, Failed: reply.Failed}, nil
}

// speak voices a reply when a voice sink is wired and voice is enabled.
// Synthesis failures are silent; the text reply has already been delivered.
func (s *Shell) speak(ctx context.Context, text string) {
	if s.voice == nil || !s.store.Settings().VoiceEnabled {
		return
	}
	pcm, ok := s.assistant.Synthesize(ctx, text)
	if !ok {
		return
	}
	s.voice.Play(pcm)
}

// StartStudyTimer begins a countdown against a subject.
func (s *Shell) StartStudyTimer(duration time.Duration, subjectID string) error {
	return s.timer.Start(duration, subjectID)
}

func (s *Shell) timerDone(session types.StudySession) {
	s.store.RecordStudySession(session)
	if s.onNotify != nil && s.store.Settings().Notifications {
		s.onNotify(s.localizer.Get(s.language(), i18n.MsgTimerDone, nil))
	}
}

func (s *Shell) language() string {
	return s.store.Settings().Language
}
