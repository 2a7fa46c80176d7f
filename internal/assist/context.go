package assist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-tasks/internal/assignment"
)

// generalContext is used when a question is not tied to an assignment.
func generalContext(query string) string {
	return fmt.Sprintf(`You are Gradus, an AI study companion. A student has asked: "%s". Provide a clear, step-by-step, and suitable response to help the student understand the topic or solve the problem.`, query)
}

func companionContext(query string) string {
	return fmt.Sprintf(`You are Gradus, an AI study companion for students. A student has asked: "%s". Provide a clear, step-by-step, and suitable response to help the student understand the topic or solve the problem.`, query)
}

// assignmentContext embeds the kind-specific payload of a. Tests never get
// here.
func assignmentContext(a assignment.Assignment, query string) (string, error) {
	var lead, label string
	var payload any
	switch a.Kind() {
	case assignment.KindHomework:
		lead, label, payload = "with their homework", "The homework includes quizzes", a.Questions()
	case assignment.KindLearningPath:
		lead, label, payload = "with a learning path", "The learning path includes steps", a.Steps()
	case assignment.KindResource:
		lead, label, payload = "with supplementary resources", "The resources include", a.Resources
	default:
		return "", fmt.Errorf("assist: no context for kind %q", a.Kind())
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		b = []byte("[]")
	}
	return fmt.Sprintf(`You are assisting a student %s titled "%s". Description: %s. %s: %s. Provide solutions, information, to help the student with their query: "%s".`,
		lead, a.Title, a.Description, label, b, query), nil
}

// PostProcess strips code fences and makes sure the reply is step-marked.
func PostProcess(text, query string) string {
	text = strings.TrimFunc(strings.ReplaceAll(text, "```", ""), isTrimSpace)
	if !strings.Contains(text, "Step") {
		text = fmt.Sprintf("Step 1: Analyze the question: \"%s\".\nStep 2: Provide a clear explanation.\nStep 3: %s", query, text)
	}
	return text
}

// isTrimSpace is the whitespace set browsers strip with String.trim: it
// includes U+FEFF and excludes U+0085, unlike unicode.IsSpace.
func isTrimSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}
