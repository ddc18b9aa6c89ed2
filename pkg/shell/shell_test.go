package shell

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/karen-assistant/karen/internal/i18n"
	"github.com/karen-assistant/karen/pkg/assistant"
	"github.com/karen-assistant/karen/pkg/core/types"
)

type stubGenerator struct {
	mu      sync.Mutex
	text    string
	textErr error
	pcm     []byte
	pcmErr  error
	calls   int
	prompts []string
}

func (g *stubGenerator) GenerateText(_ context.Context, _ string, _ []types.Message, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.text, g.textErr
}

func (g *stubGenerator) GenerateSpeech(context.Context, string) ([]byte, error) {
	return g.pcm, g.pcmErr
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recordingVoice struct {
	mu     sync.Mutex
	played [][]byte
}

func (v *recordingVoice) Play(pcm []byte) {
	v.mu.Lock()
	v.played = append(v.played, pcm)
	v.mu.Unlock()
}

func (v *recordingVoice) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.played)
}

func newTestShell(t *testing.T, gen *stubGenerator, opts Options) *Shell {
	t.Helper()
	loc, err := i18n.New("es")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	client := assistant.New(gen, loc, assistant.Options{})
	return New(NewStore(), client, loc, opts)
}

func TestSendMessageAppendsUserThenModel(t *testing.T) {
	gen := &stubGenerator{text: "Claro, Anthony."}
	s := newTestShell(t, gen, Options{})

	turn, err := s.SendMessage(context.Background(), "Hola")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if turn.Failed {
		t.Fatal("turn must not be marked failed")
	}
	if gen.callCount() != 1 {
		t.Errorf("remote client called %d times, want 1", gen.callCount())
	}
	gen.mu.Lock()
	prompt := gen.prompts[0]
	gen.mu.Unlock()
	if prompt != "Hola" {
		t.Errorf("prompt = %q, want Hola", prompt)
	}

	msgs := s.Store().Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript has %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != types.RoleUser || msgs[1].Role != types.RoleModel {
		t.Errorf("transcript order wrong: %v then %v", msgs[0].Role, msgs[1].Role)
	}
	if !turn.Reply.Timestamp.After(turn.User.Timestamp) {
		t.Error("model timestamp must be strictly after the user timestamp")
	}
	if msgs[1].Text != "Claro, Anthony." {
		t.Errorf("model text = %q", msgs[1].Text)
	}
}

func TestFailedTurnAppendsFallbackReply(t *testing.T) {
	gen := &stubGenerator{textErr: errors.New("upstream down")}
	s := newTestShell(t, gen, Options{})

	turn, err := s.SendMessage(context.Background(), "Hola")
	if err != nil {
		t.Fatalf("a failed turn must not surface an error: %v", err)
	}
	if !turn.Failed {
		t.Error("turn must be marked failed")
	}
	if !strings.Contains(turn.Reply.Text, "Anthony") {
		t.Errorf("fallback must address the user: %q", turn.Reply.Text)
	}
	if len(s.Store().Messages()) != 2 {
		t.Error("both messages must still be appended on failure")
	}
}

func TestReplySpokenWhenVoiceEnabled(t *testing.T) {
	gen := &stubGenerator{text: "Hola", pcm: []byte{1, 2}}
	voice := &recordingVoice{}
	s := newTestShell(t, gen, Options{Voice: voice})

	if _, err := s.SendMessage(context.Background(), "Hola"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if voice.count() != 1 {
		t.Errorf("reply should be voiced once, got %d", voice.count())
	}

	settings := s.Store().Settings()
	settings.VoiceEnabled = false
	if err := s.Store().UpdateSettings(settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if _, err := s.SendMessage(context.Background(), "Hola otra vez"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if voice.count() != 1 {
		t.Error("reply must not be voiced when voice is disabled")
	}
}

func TestSynthesisFailureIsSilent(t *testing.T) {
	gen := &stubGenerator{text: "Hola", pcmErr: errors.New("tts down")}
	voice := &recordingVoice{}
	s := newTestShell(t, gen, Options{Voice: voice})

	if _, err := s.SendMessage(context.Background(), "Hola"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if voice.count() != 0 {
		t.Error("failed synthesis must skip playback, not error")
	}
	if len(s.Store().Messages()) != 2 {
		t.Error("text reply must still be delivered")
	}
}

func TestGreetUsesConfiguredLanguage(t *testing.T) {
	gen := &stubGenerator{}
	s := newTestShell(t, gen, Options{})

	msg := s.Greet()
	if msg.Role != types.RoleModel {
		t.Errorf("greeting role = %v", msg.Role)
	}
	if !strings.Contains(msg.Text, "Anthony") {
		t.Errorf("greeting should address the user: %q", msg.Text)
	}
}
