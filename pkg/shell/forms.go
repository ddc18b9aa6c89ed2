package shell

import (
	"strings"

	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/core/types"
)

// Form requests are validated before they touch the store; invalid input is
// rejected with a typed error naming the offending field.

type CreateSubjectRequest struct {
	Name string `json:"name"`
}

func (r CreateSubjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return core.NewInvalidRequestErrorWithParam("subject name must not be empty", "name")
	}
	return nil
}

type CreateTopicRequest struct {
	SubjectID  string           `json:"subject_id"`
	Name       string           `json:"name"`
	Difficulty types.Difficulty `json:"difficulty"`
	Term       int              `json:"term"`
}

func (r CreateTopicRequest) Validate() error {
	if r.SubjectID == "" {
		return core.NewInvalidRequestErrorWithParam("subject id is required", "subject_id")
	}
	if strings.TrimSpace(r.Name) == "" {
		return core.NewInvalidRequestErrorWithParam("topic name must not be empty", "name")
	}
	if !r.Difficulty.Valid() {
		return core.NewInvalidRequestErrorWithParam("difficulty must be easy, medium or hard", "difficulty")
	}
	if r.Term < 1 || r.Term > 3 {
		return core.NewInvalidRequestErrorWithParam("term must be 1, 2 or 3", "term")
	}
	return nil
}

type UpdateTopicRequest struct {
	SubjectID string             `json:"subject_id"`
	TopicID   string             `json:"topic_id"`
	Status    *types.TopicStatus `json:"status,omitempty"`
	Progress  *float64           `json:"progress,omitempty"`
}

func (r UpdateTopicRequest) Validate() error {
	if r.SubjectID == "" {
		return core.NewInvalidRequestErrorWithParam("subject id is required", "subject_id")
	}
	if r.TopicID == "" {
		return core.NewInvalidRequestErrorWithParam("topic id is required", "topic_id")
	}
	if r.Status == nil && r.Progress == nil {
		return core.NewInvalidRequestError("update must change status or progress")
	}
	if r.Status != nil && !r.Status.Valid() {
		return core.NewInvalidRequestErrorWithParam("status must be learning or mastered", "status")
	}
	if r.Progress != nil && (*r.Progress < 0 || *r.Progress > 100) {
		return core.NewInvalidRequestErrorWithParam("progress must be between 0 and 100", "progress")
	}
	return nil
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

func (r CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return core.NewInvalidRequestErrorWithParam("project name must not be empty", "name")
	}
	return nil
}

type AddNodeRequest struct {
	ProjectID string         `json:"project_id"`
	Label     string         `json:"label"`
	Type      types.NodeType `json:"type"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Content   string         `json:"content,omitempty"`
}

func (r AddNodeRequest) Validate() error {
	if r.ProjectID == "" {
		return core.NewInvalidRequestErrorWithParam("project id is required", "project_id")
	}
	if strings.TrimSpace(r.Label) == "" {
		return core.NewInvalidRequestErrorWithParam("node label must not be empty", "label")
	}
	if !r.Type.Valid() {
		return core.NewInvalidRequestErrorWithParam("node type must be text, image or link", "type")
	}
	return nil
}

type MoveNodeRequest struct {
	ProjectID string  `json:"project_id"`
	NodeID    string  `json:"node_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

func (r MoveNodeRequest) Validate() error {
	if r.ProjectID == "" {
		return core.NewInvalidRequestErrorWithParam("project id is required", "project_id")
	}
	if r.NodeID == "" {
		return core.NewInvalidRequestErrorWithParam("node id is required", "node_id")
	}
	return nil
}

type ConnectNodesRequest struct {
	ProjectID string `json:"project_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

func (r ConnectNodesRequest) Validate() error {
	if r.ProjectID == "" {
		return core.NewInvalidRequestErrorWithParam("project id is required", "project_id")
	}
	if r.From == "" || r.To == "" {
		return core.NewInvalidRequestError("both connection endpoints are required")
	}
	if r.From == r.To {
		return core.NewInvalidRequestError("a node cannot connect to itself")
	}
	return nil
}
