package grading

import (
	"errors"
	"fmt"
	"math"
)

// Mode selects how a submission is graded.
type Mode string

const (
	ModeQuiz  Mode = "quiz"  // progress and score from per-question correctness
	ModeSteps Mode = "steps" // progress advances a fixed step per submission
)

// StepIncrement is the progress added by one submission in ModeSteps.
const StepIncrement = 25.0

var ErrNoQuestions = errors.New("grading: quiz has no questions")

// Task is a minimal view of an assignment needed for grading.
type Task struct {
	Mode Mode
	Keys []string // correct answer per question, in question order
}

// Standing is a student's position on one assignment.
type Standing struct {
	Progress float64
	Score    int
	Notified bool
}

// Answers maps a zero-based question index to the chosen option. Missing
// indices are unanswered.
type Answers map[int]string

// Result is the outcome of grading one submission.
type Result struct {
	Standing Standing
	Answered int
	Correct  int
	Tier     Tier
}

// Strategy computes the next standing for one grading mode.
type Strategy interface {
	Grade(t Task, cur Standing, answers Answers) (Result, error)
}

// Grader routes by mode to the correct Strategy and applies the rules
// shared by every mode.
type Grader interface {
	Grade(t Task, cur Standing, answers Answers) (Result, error)
}

type defaultGrader struct {
	strategies map[Mode]Strategy
}

// NewDefaultGrader installs the built-in strategies.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[Mode]Strategy{
			ModeQuiz:  quizStrategy{},
			ModeSteps: stepStrategy{increment: StepIncrement},
		},
	}
}

func (g *defaultGrader) Grade(t Task, cur Standing, answers Answers) (Result, error) {
	s, ok := g.strategies[t.Mode]
	if !ok {
		return Result{}, fmt.Errorf("grading: no strategy for mode %q", t.Mode)
	}
	res, err := s.Grade(t, cur, answers)
	if err != nil {
		return Result{}, err
	}
	res.Standing.Score = clampScore(res.Standing.Score)
	res.Standing.Notified = false
	res.Tier = Classify(res.Standing.Score)
	return res, nil
}

// --- Strategies ---

type quizStrategy struct{}

func (quizStrategy) Grade(t Task, _ Standing, answers Answers) (Result, error) {
	n := len(t.Keys)
	if n == 0 {
		return Result{}, ErrNoQuestions
	}
	weight := 100 / float64(n)

	var res Result
	raw := 0.0
	for i, key := range t.Keys {
		got, ok := answers[i]
		if !ok {
			continue
		}
		res.Answered++
		if got == key {
			res.Correct++
			raw += weight
		}
	}
	res.Standing.Progress = math.Min(float64(res.Answered)/float64(n)*100, 100)
	res.Standing.Score = roundHalfUp(raw)
	return res, nil
}

type stepStrategy struct{ increment float64 }

func (s stepStrategy) Grade(_ Task, cur Standing, _ Answers) (Result, error) {
	var res Result
	res.Standing.Progress = math.Min(cur.Progress+s.increment, 100)
	res.Standing.Score = roundHalfUp(res.Standing.Progress)
	return res, nil
}

// helpers

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
