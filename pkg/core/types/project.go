package types

import "github.com/google/uuid"

// NodeType classifies a mind-map node.
type NodeType string

const (
	NodeText  NodeType = "text"
	NodeImage NodeType = "image"
	NodeLink  NodeType = "link"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeText, NodeImage, NodeLink:
		return true
	}
	return false
}

// Node is one mind-map node. X and Y are canvas coordinates mutated
// continuously during drag; positions are not clamped to any bounds.
type Node struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Type    NodeType `json:"type"`
	Content string   `json:"content,omitempty"`
}

// NewNode creates a node at the given canvas position.
func NewNode(label string, x, y float64, nodeType NodeType) Node {
	return Node{
		ID:    uuid.NewString(),
		Label: label,
		X:     x,
		Y:     y,
		Type:  nodeType,
	}
}

// Connection is a directed edge between two nodes. Endpoints are not
// validated against the node set; a connection whose endpoint no longer
// exists is skipped at read time rather than rejected.
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Project is one mind-map board.
type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// NewProject creates an empty project.
func NewProject(name string) Project {
	return Project{ID: uuid.NewString(), Name: name}
}

// LiveConnections returns the connections whose endpoints both reference
// existing nodes. Dangling references are silently dropped.
func (p Project) LiveConnections() []Connection {
	ids := make(map[string]struct{}, len(p.Nodes))
	for _, n := range p.Nodes {
		ids[n.ID] = struct{}{}
	}
	out := make([]Connection, 0, len(p.Connections))
	for _, c := range p.Connections {
		if _, ok := ids[c.From]; !ok {
			continue
		}
		if _, ok := ids[c.To]; !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
