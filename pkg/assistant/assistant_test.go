package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/karen-assistant/karen/internal/i18n"
	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
)

type stubGenerator struct {
	text    string
	textErr error
	pcm     []byte
	pcmErr  error

	gotSystem  string
	gotHistory []types.Message
	gotPrompt  string
}

func (s *stubGenerator) GenerateText(_ context.Context, system string, history []types.Message, prompt string) (string, error) {
	s.gotSystem = system
	s.gotHistory = history
	s.gotPrompt = prompt
	return s.text, s.textErr
}

func (s *stubGenerator) GenerateSpeech(_ context.Context, _ string) ([]byte, error) {
	return s.pcm, s.pcmErr
}

func newTestClient(t *testing.T, gen Generator) *Client {
	t.Helper()
	loc, err := i18n.New("es")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return New(gen, loc, Options{})
}

func TestSendMessageSuccess(t *testing.T) {
	gen := &stubGenerator{text: "¡Hola, Anthony! ¿En qué puedo ayudarte hoy?"}
	c := newTestClient(t, gen)

	history := []types.Message{types.NewMessage(types.RoleUser, "buenos días")}
	reply := c.SendMessage(context.Background(), "Hola", history)

	if reply.Failed {
		t.Fatalf("unexpected failure: %v", reply.Err)
	}
	if reply.Text != gen.text {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	if gen.gotPrompt != "Hola" {
		t.Errorf("prompt not forwarded, got %q", gen.gotPrompt)
	}
	if len(gen.gotHistory) != 1 {
		t.Errorf("history not forwarded, got %d entries", len(gen.gotHistory))
	}
	if !strings.Contains(gen.gotSystem, "KAREN") {
		t.Error("system instruction missing persona")
	}
}

func TestSendMessageFailureYieldsLocalizedFallback(t *testing.T) {
	gen := &stubGenerator{textErr: errors.New("upstream down")}
	c := newTestClient(t, gen)

	reply := c.SendMessage(context.Background(), "Hola", nil)

	if !reply.Failed {
		t.Fatal("expected failed reply")
	}
	if !strings.Contains(reply.Text, "Anthony") {
		t.Errorf("fallback should address the user: %q", reply.Text)
	}
	if !core.IsType(reply.Err, core.ErrAPI) {
		t.Errorf("expected api error, got %v", reply.Err)
	}
	if !errors.Is(reply.Err, gen.textErr) {
		t.Error("reply error should wrap the cause")
	}
}

func TestSendMessageEmptyTextRejected(t *testing.T) {
	gen := &stubGenerator{text: "should not be called"}
	c := newTestClient(t, gen)

	reply := c.SendMessage(context.Background(), "   ", nil)

	if !reply.Failed {
		t.Fatal("expected failed reply")
	}
	if !core.IsType(reply.Err, core.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", reply.Err)
	}
	if gen.gotPrompt != "" {
		t.Error("generator should not run for empty input")
	}
}

func TestSendMessageEmptyResponseIsFailure(t *testing.T) {
	gen := &stubGenerator{text: "  "}
	c := newTestClient(t, gen)

	reply := c.SendMessage(context.Background(), "Hola", nil)
	if !reply.Failed {
		t.Fatal("expected failed reply for empty model output")
	}
	if reply.Text == "" {
		t.Error("fallback text must still be present")
	}
}

func TestSynthesize(t *testing.T) {
	gen := &stubGenerator{pcm: []byte{1, 2, 3, 4}}
	c := newTestClient(t, gen)

	pcm, ok := c.Synthesize(context.Background(), "Claro, Anthony")
	if !ok || len(pcm) != 4 {
		t.Errorf("expected audio, got ok=%v len=%d", ok, len(pcm))
	}

	gen.pcm, gen.pcmErr = nil, errors.New("tts down")
	if _, ok := c.Synthesize(context.Background(), "hola"); ok {
		t.Error("expected best-effort failure")
	}

	if _, ok := c.Synthesize(context.Background(), "  "); ok {
		t.Error("expected no synthesis for empty text")
	}
}
