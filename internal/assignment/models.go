package assignment

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mind-engage/mindengage-tasks/internal/grading"
)

type Kind string

const (
	KindTest         Kind = "test"
	KindHomework     Kind = "homework"
	KindLearningPath Kind = "learning_path"
	KindResource     Kind = "resource"
)

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindTest, KindHomework, KindLearningPath, KindResource:
		return k, true
	}
	return "", false
}

// QuizGraded reports whether progress and score derive from per-question
// correctness.
func (k Kind) QuizGraded() bool { return k == KindTest || k == KindHomework }

func (k Kind) GradingMode() grading.Mode {
	if k.QuizGraded() {
		return grading.ModeQuiz
	}
	return grading.ModeSteps
}

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"answer,omitempty"` // stripped in student views
	Timed         bool     `json:"timed"`
}

type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

const MediaTypePDF = "pdf"

type Resource struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	MediaType string `json:"type,omitempty"`
}

// Payload is the kind-specific content of an assignment. Exactly one of
// Test, Homework, LearningPath or ResourceSet.
type Payload interface {
	Kind() Kind
}

type Test struct{ Questions []Question }
type Homework struct{ Questions []Question }
type LearningPath struct{ Steps []Step }

// ResourceSet carries nothing beyond the assignment's resources.
type ResourceSet struct{}

func (Test) Kind() Kind         { return KindTest }
func (Homework) Kind() Kind     { return KindHomework }
func (LearningPath) Kind() Kind { return KindLearningPath }
func (ResourceSet) Kind() Kind  { return KindResource }

// NewPayload builds the payload for kind. Questions are marked timed only
// for tests.
func NewPayload(kind Kind, questions []Question, steps []Step) (Payload, error) {
	mark := func(timed bool) []Question {
		out := make([]Question, len(questions))
		for i, q := range questions {
			q.Timed = timed
			out[i] = q
		}
		return out
	}
	switch kind {
	case KindTest:
		return Test{Questions: mark(true)}, nil
	case KindHomework:
		return Homework{Questions: mark(false)}, nil
	case KindLearningPath:
		return LearningPath{Steps: append([]Step(nil), steps...)}, nil
	case KindResource:
		return ResourceSet{}, nil
	default:
		return nil, fmt.Errorf("unknown assignment kind %q", kind)
	}
}

// RosterEntry is one student's standing on one assignment. Entries are only
// created together with their assignment.
type RosterEntry struct {
	RollNo   string  `json:"rollNo"`
	Progress float64 `json:"progress"`
	Score    int     `json:"score"`
	Notified bool    `json:"notified"`
}

func NewRosterEntry(rollNo string) RosterEntry {
	return RosterEntry{RollNo: rollNo, Notified: true}
}

func (e RosterEntry) Standing() grading.Standing {
	return grading.Standing{Progress: e.Progress, Score: e.Score, Notified: e.Notified}
}

// WithStanding returns e moved to s; the roll number never changes.
func (e RosterEntry) WithStanding(s grading.Standing) RosterEntry {
	e.Progress, e.Score, e.Notified = s.Progress, s.Score, s.Notified
	return e
}

type Assignment struct {
	ID          string
	Title       string
	Description string
	OwnerID     string
	OwnerName   string // resolved for listings, not persisted
	Resources   []Resource
	Payload     Payload
	Roster      map[string]RosterEntry // keyed by roll number
	CreatedAt   int64
}

func (a Assignment) Kind() Kind {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.Kind()
}

func (a Assignment) Questions() []Question {
	switch p := a.Payload.(type) {
	case Test:
		return p.Questions
	case Homework:
		return p.Questions
	}
	return nil
}

func (a Assignment) Steps() []Step {
	if p, ok := a.Payload.(LearningPath); ok {
		return p.Steps
	}
	return nil
}

// GradingTask is the view of a the grading engine needs.
func (a Assignment) GradingTask() grading.Task {
	t := grading.Task{Mode: a.Kind().GradingMode()}
	for _, q := range a.Questions() {
		t.Keys = append(t.Keys, q.CorrectAnswer)
	}
	return t
}

// RollNos returns the roster keys in sorted order.
func (a Assignment) RollNos() []string {
	out := make([]string, 0, len(a.Roster))
	for r := range a.Roster {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// StudentView hides answer keys and every roster entry but rollNo's.
func (a Assignment) StudentView(rollNo string) Assignment {
	v := a
	switch p := a.Payload.(type) {
	case Test:
		v.Payload = Test{Questions: stripAnswers(p.Questions)}
	case Homework:
		v.Payload = Homework{Questions: stripAnswers(p.Questions)}
	}
	v.Roster = map[string]RosterEntry{}
	if e, ok := a.Roster[rollNo]; ok {
		v.Roster[rollNo] = e
	}
	return v
}

func stripAnswers(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.CorrectAnswer = ""
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// ---- wire shape ----

type document struct {
	ID          string        `json:"id"`
	Kind        Kind          `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Resources   []Resource    `json:"resources"`
	Quizzes     []Question    `json:"quizzes"`
	Steps       []Step        `json:"steps"`
	CreatedBy   string        `json:"createdBy"`
	OwnerName   string        `json:"createdByUsername,omitempty"`
	Students    []RosterEntry `json:"students"`
	CreatedAt   int64         `json:"created_at,omitempty"`
}

func (a Assignment) MarshalJSON() ([]byte, error) {
	d := document{
		ID:          a.ID,
		Kind:        a.Kind(),
		Title:       a.Title,
		Description: a.Description,
		Resources:   nonNilResources(a.Resources),
		Quizzes:     a.Questions(),
		Steps:       a.Steps(),
		CreatedBy:   a.OwnerID,
		OwnerName:   a.OwnerName,
		Students:    make([]RosterEntry, 0, len(a.Roster)),
		CreatedAt:   a.CreatedAt,
	}
	if d.Quizzes == nil {
		d.Quizzes = []Question{}
	}
	if d.Steps == nil {
		d.Steps = []Step{}
	}
	for _, r := range a.RollNos() {
		d.Students = append(d.Students, a.Roster[r])
	}
	return json.Marshal(d)
}

func (a *Assignment) UnmarshalJSON(b []byte) error {
	var d document
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	p, err := NewPayload(d.Kind, d.Quizzes, d.Steps)
	if err != nil {
		return err
	}
	*a = Assignment{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		OwnerID:     d.CreatedBy,
		OwnerName:   d.OwnerName,
		Resources:   d.Resources,
		Payload:     p,
		Roster:      make(map[string]RosterEntry, len(d.Students)),
		CreatedAt:   d.CreatedAt,
	}
	for _, e := range d.Students {
		a.Roster[e.RollNo] = e
	}
	return nil
}

func nonNilResources(r []Resource) []Resource {
	if r == nil {
		return []Resource{}
	}
	return r
}
