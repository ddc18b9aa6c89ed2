package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics are the server's Prometheus collectors, registered on a private
// registry so tests never collide.
type Metrics struct {
	Registry *prometheus.Registry

	ChatTurns         *prometheus.CounterVec
	LiveSessions      prometheus.Counter
	LiveFrames        *prometheus.CounterVec
	LiveFramesDropped prometheus.Counter
	SpeechRequests    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ChatTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "karen_chat_turns_total",
			Help: "Chat turns by outcome.",
		}, []string{"outcome"}),
		LiveSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "karen_live_sessions_total",
			Help: "Live voice sessions opened.",
		}),
		LiveFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "karen_live_audio_frames_total",
			Help: "Live audio frames by direction.",
		}, []string{"direction"}),
		LiveFramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "karen_live_audio_frames_dropped_total",
			Help: "Inbound live audio frames dropped by rate limiting.",
		}),
		SpeechRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "karen_speech_requests_total",
			Help: "Speech synthesis requests by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		m.ChatTurns,
		m.LiveSessions,
		m.LiveFrames,
		m.LiveFramesDropped,
		m.SpeechRequests,
	)
	return m
}
