package live

import (
	"context"
	"log/slog"
	"sync/atomic"

	"google.golang.org/genai"

	"github.com/karen-assistant/karen/pkg/audio"
	"github.com/karen-assistant/karen/pkg/core"
)

// GenaiUpstream connects live sessions to the Gemini Live API.
type GenaiUpstream struct {
	client *genai.Client
	model  string
	system string
	logger *slog.Logger
}

func NewGenaiUpstream(client *genai.Client, model, system string, logger *slog.Logger) *GenaiUpstream {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenaiUpstream{client: client, model: model, system: system, logger: logger}
}

func (u *GenaiUpstream) Connect(ctx context.Context) (Conn, error) {
	cfg := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
	}
	if u.system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: u.system}}}
	}
	session, err := u.client.Live.Connect(ctx, u.model, cfg)
	if err != nil {
		return nil, core.NewTransportError("connect live endpoint", err)
	}
	c := &genaiConn{
		session: session,
		msgs:    make(chan ServerMessage, 16),
		logger:  u.logger,
	}
	go c.readLoop()
	return c, nil
}

type genaiConn struct {
	session *genai.Session
	msgs    chan ServerMessage
	closed  atomic.Bool
	logger  *slog.Logger
}

func (c *genaiConn) Send(blob audio.Blob) error {
	raw, err := audio.Decode(blob.Data)
	if err != nil {
		return err
	}
	if err := c.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: raw, MIMEType: blob.MIMEType},
	}); err != nil {
		return core.NewTransportError("send audio frame", err)
	}
	return nil
}

func (c *genaiConn) Receive() <-chan ServerMessage {
	return c.msgs
}

func (c *genaiConn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.session.Close()
}

func (c *genaiConn) readLoop() {
	defer close(c.msgs)
	for {
		msg, err := c.session.Receive()
		if err != nil {
			// A receive failure after Close is the expected shutdown path.
			if !c.closed.Load() {
				c.msgs <- ServerMessage{Err: core.NewTransportError("live stream", err)}
			}
			return
		}
		if msg == nil || msg.ServerContent == nil {
			continue
		}
		out := ServerMessage{
			Interrupted:  msg.ServerContent.Interrupted,
			TurnComplete: msg.ServerContent.TurnComplete,
		}
		if turn := msg.ServerContent.ModelTurn; turn != nil {
			for _, part := range turn.Parts {
				if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}
				out.Audio = &audio.Blob{
					Data:       audio.Encode(part.InlineData.Data),
					MIMEType:   part.InlineData.MIMEType,
					SampleRate: audio.PlaybackSampleRate,
				}
				break
			}
		}
		if out.Audio == nil && !out.Interrupted && !out.TurnComplete {
			continue
		}
		c.msgs <- out
	}
}
