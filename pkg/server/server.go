// Package server exposes the KAREN application over HTTP: REST endpoints
// for the shell state and a WebSocket endpoint for live voice sessions.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karen-assistant/karen/internal/config"
	"github.com/karen-assistant/karen/pkg/assistant"
	"github.com/karen-assistant/karen/pkg/live"
	"github.com/karen-assistant/karen/pkg/server/mw"
	"github.com/karen-assistant/karen/pkg/shell"
)

type Server struct {
	cfg       config.Config
	logger    *slog.Logger
	mux       *http.ServeMux
	shell     *shell.Shell
	assistant *assistant.Client
	upstream  live.Upstream
	metrics   *Metrics
}

func New(cfg config.Config, sh *shell.Shell, client *assistant.Client, upstream live.Upstream, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		mux:       http.NewServeMux(),
		shell:     sh,
		assistant: client,
		upstream:  upstream,
		metrics:   NewMetrics(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	s.mux.HandleFunc("GET /v1/messages", s.handleListMessages)
	s.mux.HandleFunc("POST /v1/messages", s.handleSendMessage)

	s.mux.HandleFunc("GET /v1/view", s.handleGetView)
	s.mux.HandleFunc("PUT /v1/view", s.handleSetView)

	s.mux.HandleFunc("GET /v1/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /v1/settings", s.handleUpdateSettings)

	s.mux.HandleFunc("GET /v1/subjects", s.handleListSubjects)
	s.mux.HandleFunc("POST /v1/subjects", s.handleCreateSubject)
	s.mux.HandleFunc("DELETE /v1/subjects/{id}", s.handleDeleteSubject)
	s.mux.HandleFunc("POST /v1/subjects/{id}/topics", s.handleAddTopic)
	s.mux.HandleFunc("PATCH /v1/subjects/{id}/topics/{topicID}", s.handleUpdateTopic)
	s.mux.HandleFunc("DELETE /v1/subjects/{id}/topics/{topicID}", s.handleDeleteTopic)

	s.mux.HandleFunc("GET /v1/projects", s.handleListProjects)
	s.mux.HandleFunc("POST /v1/projects", s.handleCreateProject)
	s.mux.HandleFunc("POST /v1/projects/{id}/nodes", s.handleAddNode)
	s.mux.HandleFunc("PATCH /v1/projects/{id}/nodes/{nodeID}", s.handleMoveNode)
	s.mux.HandleFunc("DELETE /v1/projects/{id}/nodes/{nodeID}", s.handleDeleteNode)
	s.mux.HandleFunc("POST /v1/projects/{id}/connections", s.handleConnectNodes)

	s.mux.HandleFunc("GET /v1/timer", s.handleTimerStatus)
	s.mux.HandleFunc("POST /v1/timer/start", s.handleTimerStart)
	s.mux.HandleFunc("POST /v1/timer/pause", s.handleTimerPause)
	s.mux.HandleFunc("POST /v1/timer/resume", s.handleTimerResume)
	s.mux.HandleFunc("POST /v1/timer/reset", s.handleTimerReset)

	s.mux.HandleFunc("GET /v1/study/sessions", s.handleListStudySessions)

	s.mux.HandleFunc("POST /v1/speech", s.handleSpeech)

	s.mux.HandleFunc("GET /v1/live", s.handleLive)
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
