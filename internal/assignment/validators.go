package assignment

import (
	"encoding/json"
	"io"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

const answerInOptionsTag = "answer_in_options"

func init() {
	validate.Validate.RegisterStructValidation(questionStructValidation, QuestionInput{})
	validate.RegisterMessage(answerInOptionsTag, "{0} must match one of the options")
}

type QuestionInput struct {
	Question string   `json:"question" validate:"notblank"`
	Options  []string `json:"options" validate:"len=4"`
	Answer   string   `json:"answer" validate:"notblank"`
}

type StepInput struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
}

type ResourceInput struct {
	Title string `json:"title" validate:"notblank"`
	URL   string `json:"url" validate:"notblank"`
	Type  string `json:"type"`
}

// Attachment is an optional file uploaded with a new assignment.
type Attachment struct {
	Filename string
	Body     io.Reader
}

type CreateInput struct {
	Kind        string          `json:"type" validate:"required,oneof=test homework learning_path resource"`
	Title       string          `json:"title" validate:"notblank"`
	Description string          `json:"description"`
	RollNos     RollNos         `json:"rollNos" validate:"min=1"`
	Questions   []QuestionInput `json:"quizzes" validate:"dive"`
	Steps       []StepInput     `json:"steps" validate:"dive"`
	Resources   []ResourceInput `json:"resources" validate:"dive"`

	Attachment *Attachment `json:"-"`
}

// RollNos is a set of trimmed, non-empty roll numbers in first-seen order.
// It decodes from a comma-separated string or a JSON array of strings.
type RollNos []string

func ParseRollNos(csv string) RollNos {
	return NormalizeRollNos(strings.Split(csv, ","))
}

func NormalizeRollNos(in []string) RollNos {
	out := RollNos{}
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (r *RollNos) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = ParseRollNos(s)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	*r = NormalizeRollNos(arr)
	return nil
}

// ParseForm builds a CreateInput from form fields; quizzes, steps and
// resources are JSON-encoded arrays.
func ParseForm(get func(string) string) (CreateInput, error) {
	in := CreateInput{
		Kind:        strings.TrimSpace(get("type")),
		Title:       get("title"),
		Description: get("description"),
		RollNos:     ParseRollNos(get("rollNos")),
	}
	if err := decodeField("quizzes", get("quizzes"), &in.Questions); err != nil {
		return in, err
	}
	if err := decodeField("steps", get("steps"), &in.Steps); err != nil {
		return in, err
	}
	if err := decodeField("resources", get("resources"), &in.Resources); err != nil {
		return in, err
	}
	return in, nil
}

func decodeField(name, raw string, dst interface{}) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return apperr.NewValidationError("invalid "+name+" format",
			apperr.FieldError{Field: name, Message: name + " must be a JSON array"})
	}
	return nil
}

// Validate checks the shape of a prospective assignment. The first field
// error names the first offending item, e.g. quizzes[2].options.
func (in CreateInput) Validate() error {
	if err := validate.Struct("invalid assignment", in); err != nil {
		return err
	}
	kind, _ := ParseKind(in.Kind)
	switch {
	case kind.QuizGraded() && len(in.Questions) == 0:
		return apperr.NewValidationError("quizzes are required for tests and homework",
			apperr.FieldError{Field: "quizzes", Message: "at least one quiz is required"})
	case !kind.QuizGraded() && len(in.Questions) > 0:
		return apperr.NewValidationError("invalid assignment",
			apperr.FieldError{Field: "quizzes", Message: "quizzes are only allowed for tests and homework"})
	case kind != KindLearningPath && len(in.Steps) > 0:
		return apperr.NewValidationError("invalid assignment",
			apperr.FieldError{Field: "steps", Message: "steps are only allowed for learning paths"})
	}
	return nil
}

// build materializes a validated input into a new assignment with a fresh
// roster.
func (in CreateInput) build(id, ownerID string, createdAt int64) (Assignment, error) {
	kind, _ := ParseKind(in.Kind)
	qs := make([]Question, len(in.Questions))
	for i, q := range in.Questions {
		qs[i] = Question{Question: q.Question, Options: append([]string(nil), q.Options...), CorrectAnswer: q.Answer}
	}
	steps := make([]Step, len(in.Steps))
	for i, s := range in.Steps {
		steps[i] = Step{Title: s.Title, Description: s.Description}
	}
	p, err := NewPayload(kind, qs, steps)
	if err != nil {
		return Assignment{}, err
	}
	res := make([]Resource, len(in.Resources))
	for i, r := range in.Resources {
		res[i] = Resource{Title: r.Title, URL: r.URL, MediaType: r.Type}
	}
	a := Assignment{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     ownerID,
		Resources:   res,
		Payload:     p,
		Roster:      make(map[string]RosterEntry, len(in.RollNos)),
		CreatedAt:   createdAt,
	}
	for _, r := range in.RollNos {
		a.Roster[r] = NewRosterEntry(r)
	}
	return a, nil
}

func questionStructValidation(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionInput)
	if strings.TrimSpace(q.Answer) == "" {
		return
	}
	if !slices.Contains(q.Options, q.Answer) {
		sl.ReportError(q.Answer, "answer", "Answer", answerInOptionsTag, "")
	}
}
