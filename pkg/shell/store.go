package shell

import (
	"sync"

	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
)

// Store holds all shell state: the message list, settings, subjects,
// projects and the selected view. Everything is in memory only and guarded
// by one mutex; mutations read the latest snapshot under the lock so a
// concurrent edit never clobbers another.
type Store struct {
	mu       sync.Mutex
	messages []types.Message
	settings types.Settings
	view     types.View
	subjects []types.Subject
	projects []types.Project
	sessions []types.StudySession
}

func NewStore() *Store {
	return &Store{
		settings: types.DefaultSettings(),
		view:     types.ViewChat,
	}
}

// Messages returns a copy of the append-only message list.
func (s *Store) Messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Message(nil), s.messages...)
}

// AppendMessage appends msg, keeping insertion order. Messages are never
// mutated or deleted afterwards.
func (s *Store) AppendMessage(msg types.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

func (s *Store) Settings() types.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Store) UpdateSettings(settings types.Settings) error {
	if !settings.Valid() {
		return core.NewInvalidRequestError("settings hold unrepresentable values")
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

func (s *Store) View() types.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Store) SetView(v types.View) error {
	if !v.Valid() {
		return core.NewInvalidRequestErrorWithParam("unknown view", "view")
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	return nil
}

func (s *Store) Subjects() []types.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Subject, len(s.subjects))
	for i, subj := range s.subjects {
		out[i] = subj
		out[i].Topics = append([]types.Topic(nil), subj.Topics...)
	}
	return out
}

func (s *Store) CreateSubject(req CreateSubjectRequest) (types.Subject, error) {
	if err := req.Validate(); err != nil {
		return types.Subject{}, err
	}
	subj := types.NewSubject(req.Name)
	s.mu.Lock()
	s.subjects = append(s.subjects, subj)
	s.mu.Unlock()
	return subj, nil
}

func (s *Store) DeleteSubject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, subj := range s.subjects {
		if subj.ID == id {
			s.subjects = append(s.subjects[:i], s.subjects[i+1:]...)
			return nil
		}
	}
	return core.NewInvalidRequestErrorWithParam("unknown subject", "subject_id")
}

func (s *Store) AddTopic(req CreateTopicRequest) (types.Topic, error) {
	if err := req.Validate(); err != nil {
		return types.Topic{}, err
	}
	topic := types.NewTopic(req.Name, req.Difficulty, req.Term)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subjects {
		if s.subjects[i].ID == req.SubjectID {
			s.subjects[i].Topics = append(s.subjects[i].Topics, topic)
			return topic, nil
		}
	}
	return types.Topic{}, core.NewInvalidRequestErrorWithParam("unknown subject", "subject_id")
}

// UpdateTopic mutates status and progress in place on the stored topic.
func (s *Store) UpdateTopic(req UpdateTopicRequest) (types.Topic, error) {
	if err := req.Validate(); err != nil {
		return types.Topic{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subjects {
		if s.subjects[i].ID != req.SubjectID {
			continue
		}
		for j := range s.subjects[i].Topics {
			if s.subjects[i].Topics[j].ID != req.TopicID {
				continue
			}
			if req.Status != nil {
				s.subjects[i].Topics[j].Status = *req.Status
			}
			if req.Progress != nil {
				s.subjects[i].Topics[j].Progress = *req.Progress
			}
			return s.subjects[i].Topics[j], nil
		}
		return types.Topic{}, core.NewInvalidRequestErrorWithParam("unknown topic", "topic_id")
	}
	return types.Topic{}, core.NewInvalidRequestErrorWithParam("unknown subject", "subject_id")
}

func (s *Store) DeleteTopic(subjectID, topicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subjects {
		if s.subjects[i].ID != subjectID {
			continue
		}
		topics := s.subjects[i].Topics
		for j := range topics {
			if topics[j].ID == topicID {
				s.subjects[i].Topics = append(topics[:j], topics[j+1:]...)
				return nil
			}
		}
		return core.NewInvalidRequestErrorWithParam("unknown topic", "topic_id")
	}
	return core.NewInvalidRequestErrorWithParam("unknown subject", "subject_id")
}

func (s *Store) Projects() []types.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p
		out[i].Nodes = append([]types.Node(nil), p.Nodes...)
		out[i].Connections = append([]types.Connection(nil), p.Connections...)
	}
	return out
}

func (s *Store) CreateProject(req CreateProjectRequest) (types.Project, error) {
	if err := req.Validate(); err != nil {
		return types.Project{}, err
	}
	p := types.NewProject(req.Name)
	s.mu.Lock()
	s.projects = append(s.projects, p)
	s.mu.Unlock()
	return p, nil
}

func (s *Store) AddNode(req AddNodeRequest) (types.Node, error) {
	if err := req.Validate(); err != nil {
		return types.Node{}, err
	}
	node := types.NewNode(req.Label, req.X, req.Y, req.Type)
	node.Content = req.Content
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == req.ProjectID {
			s.projects[i].Nodes = append(s.projects[i].Nodes, node)
			return node, nil
		}
	}
	return types.Node{}, core.NewInvalidRequestErrorWithParam("unknown project", "project_id")
}

// MoveNode sets a node's canvas position. Drag updates arrive continuously;
// each one rewrites the latest stored position, never a stale copy.
func (s *Store) MoveNode(req MoveNodeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID != req.ProjectID {
			continue
		}
		for j := range s.projects[i].Nodes {
			if s.projects[i].Nodes[j].ID == req.NodeID {
				s.projects[i].Nodes[j].X = req.X
				s.projects[i].Nodes[j].Y = req.Y
				return nil
			}
		}
		return core.NewInvalidRequestErrorWithParam("unknown node", "node_id")
	}
	return core.NewInvalidRequestErrorWithParam("unknown project", "project_id")
}

// DeleteNode removes a node but leaves its connections; dangling endpoints
// are skipped at read time via LiveConnections.
func (s *Store) DeleteNode(projectID, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID != projectID {
			continue
		}
		nodes := s.projects[i].Nodes
		for j := range nodes {
			if nodes[j].ID == nodeID {
				s.projects[i].Nodes = append(nodes[:j], nodes[j+1:]...)
				return nil
			}
		}
		return core.NewInvalidRequestErrorWithParam("unknown node", "node_id")
	}
	return core.NewInvalidRequestErrorWithParam("unknown project", "project_id")
}

func (s *Store) ConnectNodes(req ConnectNodesRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID != req.ProjectID {
			continue
		}
		for _, c := range s.projects[i].Connections {
			if c.From == req.From && c.To == req.To {
				return nil
			}
		}
		s.projects[i].Connections = append(s.projects[i].Connections, types.Connection{From: req.From, To: req.To})
		return nil
	}
	return core.NewInvalidRequestErrorWithParam("unknown project", "project_id")
}

// RecordStudySession appends a completed countdown.
func (s *Store) RecordStudySession(session types.StudySession) {
	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()
}

func (s *Store) StudySessions() []types.StudySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.StudySession(nil), s.sessions...)
}
