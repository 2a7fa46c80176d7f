package assignment

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
)

func quiz(q, answer string, opts ...string) QuestionInput {
	return QuestionInput{Question: q, Options: opts, Answer: answer}
}

func validTest() CreateInput {
	return CreateInput{
		Kind:    string(KindTest),
		Title:   "Geo",
		RollNos: RollNos{"R1"},
		Questions: []QuestionInput{
			quiz("Capital of France?", "Paris", "Paris", "London", "Berlin", "Madrid"),
			quiz("Answer?", "42", "1", "2", "42", "7"),
		},
	}
}

func fieldsOf(t *testing.T, err error) []apperr.FieldError {
	t.Helper()
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve), "want validation error, got %v", err)
	require.NotEmpty(t, ve.Fields)
	return ve.Fields
}

func TestValidateAcceptsWellFormedTest(t *testing.T) {
	require.NoError(t, validTest().Validate())
}

func TestValidateOptionCount(t *testing.T) {
	for _, opts := range [][]string{{"a", "b", "c"}, {"a", "b", "c", "d", "e"}} {
		in := validTest()
		in.Questions[1] = quiz("Pick", "a", opts...)
		f := fieldsOf(t, in.Validate())
		assert.Equal(t, "quizzes[1].options", f[0].Field)
	}
}

func TestValidateAnswerMustBeAnOption(t *testing.T) {
	in := validTest()
	in.Questions[0].Answer = "Rome"
	f := fieldsOf(t, in.Validate())
	assert.Equal(t, "quizzes[0].answer", f[0].Field)
	assert.Contains(t, f[0].Message, "must match one of the options")
}

func TestValidateBlankQuestionText(t *testing.T) {
	in := validTest()
	in.Questions[1].Question = "   "
	f := fieldsOf(t, in.Validate())
	assert.Equal(t, "quizzes[1].question", f[0].Field)
}

func TestValidateDuplicateOptionsAllowed(t *testing.T) {
	in := validTest()
	in.Questions[0] = quiz("Same?", "x", "x", "x", "x", "x")
	assert.NoError(t, in.Validate())
}

func TestValidateKindRules(t *testing.T) {
	noQuiz := validTest()
	noQuiz.Questions = nil
	assert.Equal(t, "quizzes", fieldsOf(t, noQuiz.Validate())[0].Field)

	resWithQuiz := validTest()
	resWithQuiz.Kind = string(KindResource)
	assert.Equal(t, "quizzes", fieldsOf(t, resWithQuiz.Validate())[0].Field)

	homeworkSteps := validTest()
	homeworkSteps.Kind = string(KindHomework)
	homeworkSteps.Steps = []StepInput{{Title: "s", Description: "d"}}
	assert.Equal(t, "steps", fieldsOf(t, homeworkSteps.Validate())[0].Field)

	bad := validTest()
	bad.Kind = "exam"
	assert.Equal(t, "type", fieldsOf(t, bad.Validate())[0].Field)

	noStudents := validTest()
	noStudents.RollNos = RollNos{}
	assert.Equal(t, "rollNos", fieldsOf(t, noStudents.Validate())[0].Field)

	lp := CreateInput{Kind: string(KindLearningPath), Title: "Path", RollNos: RollNos{"R1"},
		Steps: []StepInput{{Title: "Read", Description: "chapter 1"}}}
	assert.NoError(t, lp.Validate())
}

func TestRollNos(t *testing.T) {
	assert.Equal(t, RollNos{"R1", "R2"}, ParseRollNos(" R1, R2,,R1 "))
	assert.Equal(t, RollNos{}, ParseRollNos(""))

	var in CreateInput
	require.NoError(t, json.Unmarshal([]byte(`{"type":"resource","rollNos":["A"," B ","A"]}`), &in))
	assert.Equal(t, RollNos{"A", "B"}, in.RollNos)
	require.NoError(t, json.Unmarshal([]byte(`{"rollNos":"C,D"}`), &in))
	assert.Equal(t, RollNos{"C", "D"}, in.RollNos)
}

func TestParseForm(t *testing.T) {
	form := map[string]string{
		"type":    "homework",
		"title":   "HW1",
		"rollNos": "R1,R2",
		"quizzes": `[{"question":"Q","options":["a","b","c","d"],"answer":"b"}]`,
	}
	in, err := ParseForm(func(k string) string { return form[k] })
	require.NoError(t, err)
	assert.Equal(t, "homework", in.Kind)
	assert.Equal(t, RollNos{"R1", "R2"}, in.RollNos)
	require.Len(t, in.Questions, 1)
	assert.Equal(t, "b", in.Questions[0].Answer)
	assert.NoError(t, in.Validate())

	form["quizzes"] = `[{"question":`
	_, err = ParseForm(func(k string) string { return form[k] })
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "invalid quizzes format", ve.Msg)
}

func TestBuildMarksTimedAndSeedsRoster(t *testing.T) {
	in := validTest()
	in.RollNos = RollNos{"R1", "R2"}
	a, err := in.build("a1", "t1", 100)
	require.NoError(t, err)
	for _, q := range a.Questions() {
		assert.True(t, q.Timed)
	}
	assert.Equal(t, []string{"R1", "R2"}, a.RollNos())
	assert.Equal(t, RosterEntry{RollNo: "R1", Notified: true}, a.Roster["R1"])

	in.Kind = string(KindHomework)
	hw, err := in.build("a2", "t1", 100)
	require.NoError(t, err)
	assert.False(t, hw.Questions()[0].Timed)
}

func TestValidateStepAndResourceFields(t *testing.T) {
	path := func(s StepInput) CreateInput {
		return CreateInput{Kind: string(KindLearningPath), Title: "Path", RollNos: RollNos{"R1"},
			Steps: []StepInput{{Title: "Read", Description: "ch 1"}, s}}
	}
	assert.Equal(t, "steps[1].title", fieldsOf(t, path(StepInput{Title: " ", Description: "d"}).Validate())[0].Field)
	assert.Equal(t, "steps[1].description", fieldsOf(t, path(StepInput{Title: "t"}).Validate())[0].Field)

	res := func(r ResourceInput) CreateInput {
		return CreateInput{Kind: string(KindResource), Title: "Docs", RollNos: RollNos{"R1"},
			Resources: []ResourceInput{r}}
	}
	assert.Equal(t, "resources[0].title", fieldsOf(t, res(ResourceInput{URL: "https://x/a.pdf"}).Validate())[0].Field)
	assert.Equal(t, "resources[0].url", fieldsOf(t, res(ResourceInput{Title: "notes"}).Validate())[0].Field)
	assert.NoError(t, res(ResourceInput{Title: "notes", URL: "https://x/a.pdf"}).Validate())
}
