package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/karen-assistant/karen/internal/config"
	"github.com/karen-assistant/karen/pkg/audio"
	"github.com/karen-assistant/karen/pkg/live"
)

// Live WebSocket protocol. All frames are JSON text messages.
//
// client -> server: {"type":"audio","data":<base64 16kHz mono pcm>}
//                   {"type":"stop"}
// server -> client: {"type":"session","state":...}
//                   {"type":"audio","data":<base64 24kHz mono pcm>,
//                    "start_at":<seconds>,"duration":<seconds>,
//                    "level":<rms 0..1>}
//                   {"type":"speaking","speaking":bool}
//                   {"type":"level","level":<mic peak 0..1>}
//                   {"type":"error","message":...}

type liveClientMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

type liveServerMessage struct {
	Type     string  `json:"type"`
	State    string  `json:"state,omitempty"`
	Data     string  `json:"data,omitempty"`
	StartAt  float64 `json:"start_at,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Level    float64 `json:"level,omitempty"`
	Speaking *bool   `json:"speaking,omitempty"`
	Message  string  `json:"message,omitempty"`
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if !s.originAllowed(r) {
		http.Error(w, "origin is not allowed", http.StatusForbidden)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	if s.cfg.LiveMaxFrameBytes > 0 {
		conn.SetReadLimit(s.cfg.LiveMaxFrameBytes)
	}
	s.metrics.LiveSessions.Inc()

	bridge := newLiveBridge(conn, s.cfg, s.metrics, s.logger)
	session := live.NewSession(bridge.source, s.upstream, bridge, live.Callbacks{
		OnState:    bridge.sendState,
		OnSpeaking: bridge.sendSpeaking,
	}, s.logger)

	if err := session.Start(r.Context()); err != nil {
		bridge.sendError(err.Error())
		return
	}

	// Tear the socket down once the session fully returns to idle so the
	// client is not left holding a dead voice channel.
	go func() {
		<-session.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	bridge.readLoop(session)

	if session.State() == live.StateActive {
		_ = session.Stop()
	}
	select {
	case <-session.Done():
	case <-time.After(5 * time.Second):
		s.logger.Warn("live session did not reach idle before handler exit")
	}
}

func (s *Server) originAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	if len(s.cfg.CORSAllowedOrigins) == 0 {
		return false
	}
	_, ok := s.cfg.CORSAllowedOrigins[origin]
	return ok
}

// liveBridge adapts one WebSocket connection to the live session's capture
// and playback boundaries: inbound audio frames feed the capture source,
// scheduled chunks are pushed back with their start times.
type liveBridge struct {
	conn    *websocket.Conn
	cfg     config.Config
	metrics *Metrics
	logger  *slog.Logger

	writeMu sync.Mutex
	epoch   time.Time

	source *wsCaptureSource
}

func newLiveBridge(conn *websocket.Conn, cfg config.Config, metrics *Metrics, logger *slog.Logger) *liveBridge {
	return &liveBridge{
		conn:    conn,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		epoch:   time.Now(),
		source:  &wsCaptureSource{frames: make(chan []float32, 8)},
	}
}

// Now implements live.Output.
func (b *liveBridge) Now() float64 {
	return time.Since(b.epoch).Seconds()
}

// Play implements live.Output: the chunk is pushed to the client right away
// together with its scheduled start, and the returned channel closes when
// the chunk's playback window has elapsed on the server clock. The RMS level
// lets the client drive its waveform indicator without decoding.
func (b *liveBridge) Play(buf *audio.Buffer, startAt float64) (<-chan struct{}, error) {
	d := buf.Duration()
	pcm := buf.PCM()
	if err := b.write(liveServerMessage{
		Type:     "audio",
		Data:     audio.Encode(pcm),
		StartAt:  startAt,
		Duration: d,
		Level:    audio.RMSEnergy(pcm),
	}); err != nil {
		return nil, err
	}
	b.metrics.LiveFrames.WithLabelValues("out").Inc()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if wait := startAt + d - b.Now(); wait > 0 {
			time.Sleep(time.Duration(wait * float64(time.Second)))
		}
	}()
	return done, nil
}

func (b *liveBridge) sendState(st live.State) {
	_ = b.write(liveServerMessage{Type: "session", State: st.String()})
}

func (b *liveBridge) sendSpeaking(speaking bool) {
	_ = b.write(liveServerMessage{Type: "speaking", Speaking: &speaking})
}

func (b *liveBridge) sendError(msg string) {
	_ = b.write(liveServerMessage{Type: "error", Message: msg})
}

func (b *liveBridge) write(msg liveServerMessage) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	_ = b.conn.SetWriteDeadline(time.Now().Add(b.cfg.LiveWriteTimeout))
	return b.conn.WriteJSON(msg)
}

// readLoop pumps inbound frames until the client disconnects or asks to
// stop. Frame pacing is enforced here so a misbehaving client cannot flood
// the upstream.
func (b *liveBridge) readLoop(session *live.Session) {
	var limiter *rate.Limiter
	if b.cfg.LiveMaxAudioFPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(b.cfg.LiveMaxAudioFPS), b.cfg.LiveInboundBurstFrames)
	}

	defer b.source.close()
	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg liveClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "audio":
			if limiter != nil && !limiter.Allow() {
				b.metrics.LiveFramesDropped.Inc()
				continue
			}
			raw, err := audio.Decode(msg.Data)
			if err != nil {
				// Malformed frame: dropped, session stays up.
				continue
			}
			buf, err := audio.DecodeAudioData(raw, audio.CaptureSampleRate, 1)
			if err != nil {
				continue
			}
			if b.source.push(buf.Samples) {
				b.metrics.LiveFrames.WithLabelValues("in").Inc()
				// Echo the mic level back so the client can animate its
				// listening waveform.
				_ = b.write(liveServerMessage{Type: "level", Level: audio.PeakAmplitude(raw)})
			}
		case "stop":
			_ = session.Stop()
		}
	}
}

// wsCaptureSource feeds client microphone frames into a live session.
type wsCaptureSource struct {
	frames  chan []float32
	stopped atomic.Bool
	once    sync.Once
}

func (c *wsCaptureSource) Start(context.Context) (<-chan []float32, error) {
	return c.frames, nil
}

func (c *wsCaptureSource) Stop() {
	c.stopped.Store(true)
}

// push delivers a frame unless capture has stopped or the session has
// fallen behind, in which case the frame is dropped.
func (c *wsCaptureSource) push(frame []float32) bool {
	if c.stopped.Load() {
		return false
	}
	select {
	case c.frames <- frame:
		return true
	default:
		return false
	}
}

func (c *wsCaptureSource) close() {
	c.once.Do(func() { close(c.frames) })
}
