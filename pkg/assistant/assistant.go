// Package assistant implements the KAREN conversational client: text replies
// backed by a generative model, plus speech synthesis for reading them aloud.
package assistant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/karen-assistant/karen/internal/i18n"
	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
)

// Generator produces model output. Implementations wrap a real backend;
// tests substitute a stub.
type Generator interface {
	GenerateText(ctx context.Context, system string, history []types.Message, prompt string) (string, error)
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}

// Reply is the outcome of one chat turn. When the backend fails, Text carries
// a localized fallback the caller can still render and speak, Failed is set,
// and Err holds the underlying cause.
type Reply struct {
	Text   string
	Failed bool
	Err    error
}

type Options struct {
	UserName string
	Language string
	Logger   *slog.Logger
}

// Client turns user messages into assistant replies.
type Client struct {
	gen       Generator
	localizer *i18n.Localizer
	system    string
	language  string
	logger    *slog.Logger
}

func New(gen Generator, localizer *i18n.Localizer, opts Options) *Client {
	if opts.UserName == "" {
		opts.UserName = "Anthony"
	}
	if opts.Language == "" {
		opts.Language = "es"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		gen:       gen,
		localizer: localizer,
		system:    Persona(opts.UserName),
		language:  opts.Language,
		logger:    opts.Logger,
	}
}

// SystemInstruction exposes the persona so live sessions run with the same one.
func (c *Client) SystemInstruction() string {
	if c == nil {
		return ""
	}
	return c.system
}

// SendMessage runs a single chat turn. The request is attempted once; there is
// no retry. A backend failure never surfaces as an error to the conversation:
// the reply carries the localized fallback and is marked Failed.
func (c *Client) SendMessage(ctx context.Context, text string, history []types.Message) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{
			Failed: true,
			Text:   c.localizer.Get(c.language, i18n.MsgFallback, nil),
			Err:    core.NewInvalidRequestErrorWithParam("message text must not be empty", "text"),
		}
	}

	out, err := c.gen.GenerateText(ctx, c.system, history, text)
	if err != nil {
		c.logger.Warn("assistant turn failed", "error", err)
		return Reply{
			Failed: true,
			Text:   c.localizer.Get(c.language, i18n.MsgFallback, nil),
			Err:    core.NewUpstreamError("generate reply", err),
		}
	}

	out = strings.TrimSpace(out)
	if out == "" {
		c.logger.Warn("assistant turn returned empty text")
		return Reply{
			Failed: true,
			Text:   c.localizer.Get(c.language, i18n.MsgFallback, nil),
			Err:    core.NewAPIError("generate reply returned empty text"),
		}
	}
	return Reply{Text: out}
}

// Synthesize renders text to raw PCM for playback. Synthesis is best effort:
// on failure it returns ok=false and the caller skips speech for the turn.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	pcm, err := c.gen.GenerateSpeech(ctx, text)
	if err != nil {
		c.logger.Warn("speech synthesis failed", "error", err)
		return nil, false
	}
	if len(pcm) == 0 {
		return nil, false
	}
	return pcm, true
}
