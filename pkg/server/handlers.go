package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
	"github.com/karen-assistant/karen/pkg/server/mw"
	"github.com/karen-assistant/karen/pkg/shell"
)

type errorEnvelope struct {
	Error *core.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *core.Error
	if !errors.As(err, &ce) {
		ce = core.NewAPIError(err.Error())
	}
	if reqID, ok := mw.RequestIDFrom(r.Context()); ok {
		ce = &core.Error{Type: ce.Type, Message: ce.Message, Param: ce.Param, Code: reqID}
	}
	status := http.StatusInternalServerError
	switch ce.Type {
	case core.ErrInvalidRequest:
		status = http.StatusBadRequest
	case core.ErrDeviceUnavailable:
		status = http.StatusServiceUnavailable
	case core.ErrTransport, core.ErrAPI:
		status = http.StatusBadGateway
	case core.ErrEncoding:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorEnvelope{Error: ce})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.NewInvalidRequestError("invalid request body")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMessages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"messages": s.shell.Store().Messages()})
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	turn, err := s.shell.SendMessage(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	outcome := "ok"
	if turn.Failed {
		// Fallback replies are still 200s; the outcome label separates them.
		outcome = "fallback"
	}
	s.metrics.ChatTurns.WithLabelValues(outcome).Inc()
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleGetView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]types.View{"view": s.shell.Store().View()})
}

type setViewRequest struct {
	View types.View `json:"view"`
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req setViewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.shell.Store().SetView(req.View); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]types.View{"view": req.View})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.Store().Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings types.Settings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.shell.Store().UpdateSettings(settings); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleListSubjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"subjects": s.shell.Store().Subjects()})
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var req shell.CreateSubjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	subj, err := s.shell.Store().CreateSubject(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, subj)
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.Store().DeleteSubject(r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddTopic(w http.ResponseWriter, r *http.Request) {
	var req shell.CreateTopicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.SubjectID = r.PathValue("id")
	topic, err := s.shell.Store().AddTopic(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (s *Server) handleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	var req shell.UpdateTopicRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.SubjectID = r.PathValue("id")
	req.TopicID = r.PathValue("topicID")
	topic, err := s.shell.Store().UpdateTopic(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.Store().DeleteTopic(r.PathValue("id"), r.PathValue("topicID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	projects := s.shell.Store().Projects()
	out := make([]map[string]any, len(projects))
	for i, p := range projects {
		out[i] = map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"nodes":       p.Nodes,
			"connections": p.LiveConnections(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": out})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req shell.CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.shell.Store().CreateProject(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req shell.AddNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.ProjectID = r.PathValue("id")
	node, err := s.shell.Store().AddNode(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	var req shell.MoveNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.ProjectID = r.PathValue("id")
	req.NodeID = r.PathValue("nodeID")
	if err := s.shell.Store().MoveNode(req); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.Store().DeleteNode(r.PathValue("id"), r.PathValue("nodeID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnectNodes(w http.ResponseWriter, r *http.Request) {
	var req shell.ConnectNodesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.ProjectID = r.PathValue("id")
	if err := s.shell.Store().ConnectNodes(req); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type timerStatusResponse struct {
	State     string  `json:"state"`
	Remaining float64 `json:"remaining_seconds"`
}

func (s *Server) handleTimerStatus(w http.ResponseWriter, _ *http.Request) {
	t := s.shell.Timer()
	writeJSON(w, http.StatusOK, timerStatusResponse{
		State:     t.State().String(),
		Remaining: t.Remaining().Seconds(),
	})
}

type timerStartRequest struct {
	DurationSeconds float64 `json:"duration_seconds"`
	SubjectID       string  `json:"subject_id"`
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	var req timerStartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d := time.Duration(req.DurationSeconds * float64(time.Second))
	if err := s.shell.StartStudyTimer(d, req.SubjectID); err != nil {
		writeError(w, r, err)
		return
	}
	s.handleTimerStatus(w, r)
}

func (s *Server) handleTimerPause(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.Timer().Pause(); err != nil {
		writeError(w, r, err)
		return
	}
	s.handleTimerStatus(w, r)
}

func (s *Server) handleTimerResume(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.Timer().Resume(); err != nil {
		writeError(w, r, err)
		return
	}
	s.handleTimerStatus(w, r)
}

func (s *Server) handleTimerReset(w http.ResponseWriter, r *http.Request) {
	s.shell.Timer().Reset()
	s.handleTimerStatus(w, r)
}

func (s *Server) handleListStudySessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.shell.Store().StudySessions()})
}

type speechRequest struct {
	Text string `json:"text"`
}

// handleSpeech renders a voice clip for a text string. Synthesis is best
// effort: when unavailable the caller gets 204 and skips playback.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	pcm, ok := s.assistant.Synthesize(r.Context(), req.Text)
	if !ok {
		s.metrics.SpeechRequests.WithLabelValues("unavailable").Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.metrics.SpeechRequests.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "audio/pcm;rate=24000")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pcm)
}
