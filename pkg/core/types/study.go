package types

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty grades a topic.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TopicStatus tracks study progress on a topic.
type TopicStatus string

const (
	StatusLearning TopicStatus = "learning"
	StatusMastered TopicStatus = "mastered"
)

// Valid reports whether s is a known status.
func (s TopicStatus) Valid() bool {
	return s == StatusLearning || s == StatusMastered
}

// Topic is one unit of study inside a subject. Status and Progress are
// mutated in place; everything else is set at creation.
type Topic struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Difficulty Difficulty  `json:"difficulty"`
	Term       int         `json:"term"` // 1, 2 or 3
	Status     TopicStatus `json:"status"`
	Progress   float64     `json:"progress"` // 0..100
}

// NewTopic creates a topic starting in the learning state.
func NewTopic(name string, difficulty Difficulty, term int) Topic {
	return Topic{
		ID:         uuid.NewString(),
		Name:       name,
		Difficulty: difficulty,
		Term:       term,
		Status:     StatusLearning,
	}
}

// Subject groups an ordered sequence of topics.
type Subject struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Topics []Topic `json:"topics"`
}

// NewSubject creates an empty subject.
func NewSubject(name string) Subject {
	return Subject{ID: uuid.NewString(), Name: name}
}

// StudySession records one completed timer countdown for a subject.
type StudySession struct {
	ID        string        `json:"id"`
	SubjectID string        `json:"subject_id"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewStudySession records a completed countdown stamped with the current time.
func NewStudySession(subjectID string, duration time.Duration) StudySession {
	return StudySession{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Duration:  duration,
		Timestamp: time.Now(),
	}
}
