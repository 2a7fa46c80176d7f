package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswersDecodeObject(t *testing.T) {
	var a Answers
	require.NoError(t, json.Unmarshal([]byte(`{"0":"Paris","2":null,"3":7}`), &a))
	assert.Equal(t, Answers{0: "Paris", 2: "", 3: ""}, a)
}

func TestAnswersDecodeArray(t *testing.T) {
	var a Answers
	require.NoError(t, json.Unmarshal([]byte(`["Paris", null]`), &a))
	assert.Equal(t, Answers{0: "Paris", 1: ""}, a)
}

func TestAnswersDecodeRejectsBadKey(t *testing.T) {
	var a Answers
	assert.Error(t, json.Unmarshal([]byte(`{"first":"Paris"}`), &a))
	assert.Error(t, json.Unmarshal([]byte(`{"-1":"Paris"}`), &a))
	assert.Error(t, json.Unmarshal([]byte(`"Paris"`), &a))
}

func TestNullAnswerCountsAsAnsweredButWrong(t *testing.T) {
	var a Answers
	require.NoError(t, json.Unmarshal([]byte(`{"0":"Paris","1":null}`), &a))

	res, err := NewDefaultGrader().Grade(Task{Mode: ModeQuiz, Keys: []string{"Paris", "42"}}, Standing{}, a)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Answered)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 100.0, res.Standing.Progress)
	assert.Equal(t, 50, res.Standing.Score)
}
