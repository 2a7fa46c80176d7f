// Package assist gates and shapes requests to the text-generation
// collaborator: per-assignment help, the general study companion and quiz
// candidate generation.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/mind-engage/mindengage-tasks/internal/account"
	"github.com/mind-engage/mindengage-tasks/internal/apperr"
	"github.com/mind-engage/mindengage-tasks/internal/assignment"
	"github.com/mind-engage/mindengage-tasks/internal/genai"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

var (
	ErrTestInProgress = fmt.Errorf("AI assistance disabled during tests: %w", apperr.ErrForbidden)
	ErrNoContent      = errors.New("no content returned from text generation")
)

// quizFormat is appended to every quiz generation prompt.
const quizFormat = "\nReturn only a JSON array in the format: [{ \"question\": \"\", \"options\": [\"\", \"\", \"\", \"\"], \"answer\": \"\" }, ...]. Do not include any additional text, explanations, markdown, or code block markers. Ensure each question has exactly 4 options and a correct answer matching one of the options."

// MinPromptLen is the shortest accepted quiz prompt after trimming.
const MinPromptLen = 10

var jsonArray = regexp.MustCompile(`(?s)\[.*\]`)

// FallbackQuiz is returned whenever generated candidates cannot be used.
func FallbackQuiz() []assignment.QuestionInput {
	return []assignment.QuestionInput{{
		Question: "What is the capital of France?",
		Options:  []string{"Paris", "London", "Berlin", "Madrid"},
		Answer:   "Paris",
	}}
}

// Assignments resolves an assignment as seen by the caller.
type Assignments interface {
	Get(ctx context.Context, p account.Principal, id string) (assignment.Assignment, error)
}

type Service struct {
	Assignments Assignments
	Generator   genai.Generator
}

func NewService(as Assignments, gen genai.Generator) *Service {
	return &Service{Assignments: as, Generator: gen}
}

type AssistInput struct {
	Query        string `json:"query" validate:"notblank"`
	AssignmentID string `json:"assignmentId"`
}

type AskInput struct {
	Query string `json:"query" validate:"notblank"`
}

type Reply struct {
	Response string `json:"response"`
}

type GenerateInput struct {
	Prompt string `json:"prompt"`
}

type GenerateResult struct {
	Quizzes  []assignment.QuestionInput `json:"quizzes"`
	fallback bool
}

// Assist answers a student's question, in the context of an assignment when
// one is named. Tests are refused.
func (s *Service) Assist(ctx context.Context, p account.Principal, in AssistInput) (Reply, error) {
	if p.Role != account.RoleStudent {
		return Reply{}, apperr.ErrForbidden
	}
	if err := validate.Struct("Please provide a valid question", in); err != nil {
		return Reply{}, err
	}
	prompt := generalContext(in.Query)
	if id := strings.TrimSpace(in.AssignmentID); id != "" {
		a, err := s.Assignments.Get(ctx, p, id)
		if err != nil {
			return Reply{}, err
		}
		if a.Kind() == assignment.KindTest {
			return Reply{}, ErrTestInProgress
		}
		if prompt, err = assignmentContext(a, in.Query); err != nil {
			return Reply{}, err
		}
	}
	return s.reply(ctx, prompt, in.Query)
}

// Ask is the study companion, independent of any assignment.
func (s *Service) Ask(ctx context.Context, p account.Principal, in AskInput) (Reply, error) {
	if p.Role != account.RoleStudent {
		return Reply{}, apperr.ErrForbidden
	}
	if err := validate.Struct("Please provide a valid question", in); err != nil {
		return Reply{}, err
	}
	return s.reply(ctx, companionContext(in.Query), in.Query)
}

func (s *Service) reply(ctx context.Context, prompt, query string) (Reply, error) {
	text, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("assist: generation failed: %v", err)
		return Reply{}, apperr.Collaborator("generate response", err)
	}
	if text == "" {
		return Reply{}, apperr.Collaborator("generate response", ErrNoContent)
	}
	return Reply{Response: PostProcess(text, query)}, nil
}

// GenerateQuiz asks the generator for quiz candidates. Unusable output is
// replaced with FallbackQuiz, never surfaced as an error.
func (s *Service) GenerateQuiz(ctx context.Context, p account.Principal, in GenerateInput) (GenerateResult, error) {
	if p.Role != account.RoleTeacher {
		return GenerateResult{}, apperr.ErrForbidden
	}
	if err := validate.Validate.Var(strings.TrimSpace(in.Prompt), fmt.Sprintf("min=%d", MinPromptLen)); err != nil {
		return GenerateResult{}, apperr.NewValidationError("Prompt must be a string with at least 10 characters",
			apperr.FieldError{Field: "prompt", Message: fmt.Sprintf("prompt must be at least %d characters", MinPromptLen)})
	}

	text, err := s.Generator.Generate(ctx, in.Prompt+quizFormat)
	if err != nil {
		log.Printf("assist: quiz generation failed: %v", err)
		return GenerateResult{}, apperr.Collaborator("generate quizzes", err)
	}
	if text == "" {
		return GenerateResult{}, apperr.Collaborator("generate quizzes", ErrNoContent)
	}

	qs, err := ParseCandidates(text)
	if err != nil {
		log.Printf("assist: unusable quiz candidates, using fallback: %v", err)
		return GenerateResult{Quizzes: FallbackQuiz(), fallback: true}, nil
	}
	return GenerateResult{Quizzes: qs}, nil
}

type candidates struct {
	Quizzes []assignment.QuestionInput `json:"quizzes" validate:"min=1,dive"`
}

// ParseCandidates extracts the outermost JSON array from text and validates
// every quiz in it with the same rules as assignment creation.
func ParseCandidates(text string) ([]assignment.QuestionInput, error) {
	raw := text
	if m := jsonArray.FindString(text); m != "" {
		raw = m
	}
	var c candidates
	if err := json.Unmarshal([]byte(raw), &c.Quizzes); err != nil {
		return nil, err
	}
	if err := validate.Struct("invalid quiz candidates", c); err != nil {
		return nil, err
	}
	return c.Quizzes, nil
}
