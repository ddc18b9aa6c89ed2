// Package types defines the KAREN data model. None of these entities are
// persisted; every lifecycle is bounded by the in-memory application run.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one chat turn. Messages are immutable once appended and are
// ordered by insertion.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// View is one of the fixed top-level views.
type View string

const (
	ViewChat     View = "chat"
	ViewProjects View = "projects"
	ViewStudy    View = "study"
	ViewSettings View = "settings"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case ViewChat, ViewProjects, ViewStudy, ViewSettings:
		return true
	}
	return false
}
