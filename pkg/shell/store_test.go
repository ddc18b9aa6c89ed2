package shell

import (
	"testing"

	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
)

func TestCreateSubjectValidation(t *testing.T) {
	s := NewStore()

	if _, err := s.CreateSubject(CreateSubjectRequest{Name: "  "}); !core.IsType(err, core.ErrInvalidRequest) {
		t.Errorf("expected invalid request, got %v", err)
	}

	subj, err := s.CreateSubject(CreateSubjectRequest{Name: "Matemáticas"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if subj.ID == "" || subj.Name != "Matemáticas" {
		t.Errorf("unexpected subject %+v", subj)
	}
	if len(s.Subjects()) != 1 {
		t.Error("subject not stored")
	}
}

func TestTopicLifecycle(t *testing.T) {
	s := NewStore()
	subj, _ := s.CreateSubject(CreateSubjectRequest{Name: "Física"})

	bad := CreateTopicRequest{SubjectID: subj.ID, Name: "Ondas", Difficulty: "impossible", Term: 1}
	if _, err := s.AddTopic(bad); !core.IsType(err, core.ErrInvalidRequest) {
		t.Errorf("bad difficulty must be rejected, got %v", err)
	}

	topic, err := s.AddTopic(CreateTopicRequest{
		SubjectID:  subj.ID,
		Name:       "Ondas",
		Difficulty: types.DifficultyMedium,
		Term:       2,
	})
	if err != nil {
		t.Fatalf("add topic: %v", err)
	}
	if topic.Status != types.StatusLearning {
		t.Errorf("new topic must start learning, got %v", topic.Status)
	}

	mastered := types.StatusMastered
	progress := 100.0
	updated, err := s.UpdateTopic(UpdateTopicRequest{
		SubjectID: subj.ID,
		TopicID:   topic.ID,
		Status:    &mastered,
		Progress:  &progress,
	})
	if err != nil {
		t.Fatalf("update topic: %v", err)
	}
	if updated.Status != types.StatusMastered || updated.Progress != 100 {
		t.Errorf("update not applied: %+v", updated)
	}

	stored := s.Subjects()[0].Topics[0]
	if stored.Status != types.StatusMastered {
		t.Error("update must mutate the stored topic, not a copy")
	}

	if err := s.DeleteTopic(subj.ID, topic.ID); err != nil {
		t.Fatalf("delete topic: %v", err)
	}
	if len(s.Subjects()[0].Topics) != 0 {
		t.Error("topic not deleted")
	}
	if err := s.DeleteTopic(subj.ID, topic.ID); !core.IsType(err, core.ErrInvalidRequest) {
		t.Errorf("deleting a missing topic must fail, got %v", err)
	}
}

func TestUpdateTopicRequiresAChange(t *testing.T) {
	req := UpdateTopicRequest{SubjectID: "s", TopicID: "t"}
	if err := req.Validate(); !core.IsType(err, core.ErrInvalidRequest) {
		t.Errorf("empty update must be rejected, got %v", err)
	}
}

func TestMoveNodeRewritesLatestPosition(t *testing.T) {
	s := NewStore()
	proj, _ := s.CreateProject(CreateProjectRequest{Name: "Mapa"})
	node, err := s.AddNode(AddNodeRequest{ProjectID: proj.ID, Label: "Idea", Type: types.NodeText, X: 10, Y: 10})
	if err != nil {
		t.Fatalf("add node: %v", err)
	}

	// Continuous drag updates: each write lands on the stored node.
	for i := 1; i <= 5; i++ {
		if err := s.MoveNode(MoveNodeRequest{ProjectID: proj.ID, NodeID: node.ID, X: float64(i * 10), Y: 0}); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}
	got := s.Projects()[0].Nodes[0]
	if got.X != 50 || got.Y != 0 {
		t.Errorf("node at (%v,%v), want (50,0)", got.X, got.Y)
	}
}

func TestDeletedNodeLeavesDanglingConnectionSkipped(t *testing.T) {
	s := NewStore()
	proj, _ := s.CreateProject(CreateProjectRequest{Name: "Mapa"})
	a, _ := s.AddNode(AddNodeRequest{ProjectID: proj.ID, Label: "A", Type: types.NodeText})
	b, _ := s.AddNode(AddNodeRequest{ProjectID: proj.ID, Label: "B", Type: types.NodeText})

	if err := s.ConnectNodes(ConnectNodesRequest{ProjectID: proj.ID, From: a.ID, To: b.ID}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.DeleteNode(proj.ID, b.ID); err != nil {
		t.Fatalf("delete node: %v", err)
	}

	stored := s.Projects()[0]
	if len(stored.Connections) != 1 {
		t.Fatal("raw connection must remain after node deletion")
	}
	if len(stored.LiveConnections()) != 0 {
		t.Error("dangling connection must be skipped at read time")
	}
}

func TestConnectNodesRejectsSelfLoop(t *testing.T) {
	req := ConnectNodesRequest{ProjectID: "p", From: "n", To: "n"}
	if err := req.Validate(); !core.IsType(err, core.ErrInvalidRequest) {
		t.Errorf("self loop must be rejected, got %v", err)
	}
}

func TestSettingsAndViewGuards(t *testing.T) {
	s := NewStore()

	if got := s.View(); got != types.ViewChat {
		t.Errorf("initial view = %v, want chat", got)
	}
	if err := s.SetView("dashboard"); !core.IsType(err, core.ErrInvalidRequest) {
		t.Errorf("unknown view must be rejected, got %v", err)
	}
	if err := s.SetView(types.ViewStudy); err != nil {
		t.Fatalf("set view: %v", err)
	}

	bad := s.Settings()
	bad.VoiceSpeed = 0
	if err := s.UpdateSettings(bad); !core.IsType(err, core.ErrInvalidRequest) {
		t.Errorf("invalid settings must be rejected, got %v", err)
	}
	if s.Settings().VoiceSpeed == 0 {
		t.Error("rejected update must not be applied")
	}
}
