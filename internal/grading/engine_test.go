package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizPartialSubmission(t *testing.T) {
	g := NewDefaultGrader()
	task := Task{Mode: ModeQuiz, Keys: []string{"Paris", "42"}}

	res, err := g.Grade(task, Standing{Notified: true}, Answers{0: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Answered)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 50.0, res.Standing.Progress)
	assert.Equal(t, 50, res.Standing.Score)
	assert.False(t, res.Standing.Notified)
	assert.Equal(t, TierNeedsImprovement, res.Tier)
}

func TestQuizDenseAnswers(t *testing.T) {
	g := NewDefaultGrader()
	keys := []string{"a", "b", "c"}
	cases := []struct {
		answers Answers
		correct int
		score   int
	}{
		{Answers{0: "a", 1: "b", 2: "c"}, 3, 100},
		{Answers{0: "a", 1: "b", 2: "x"}, 2, 67},
		{Answers{0: "a", 1: "x", 2: "x"}, 1, 33},
		{Answers{0: "x", 1: "x", 2: "x"}, 0, 0},
	}
	for _, c := range cases {
		res, err := g.Grade(Task{Mode: ModeQuiz, Keys: keys}, Standing{}, c.answers)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.Standing.Progress)
		assert.Equal(t, c.correct, res.Correct)
		assert.Equal(t, c.score, res.Standing.Score)
	}
}

func TestQuizIgnoresOutOfRangeAndCountsEmptyAnswer(t *testing.T) {
	g := NewDefaultGrader()
	res, err := g.Grade(Task{Mode: ModeQuiz, Keys: []string{"a", "b", "c", "d"}}, Standing{}, Answers{1: "", 7: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Answered)
	assert.Equal(t, 25.0, res.Standing.Progress)
	assert.Equal(t, 0, res.Standing.Score)
}

func TestQuizRoundsHalfUp(t *testing.T) {
	g := NewDefaultGrader()
	keys := make([]string, 8)
	for i := range keys {
		keys[i] = "k"
	}
	// 1/8 = 12.5 -> 13
	res, err := g.Grade(Task{Mode: ModeQuiz, Keys: keys}, Standing{}, Answers{0: "k"})
	require.NoError(t, err)
	assert.Equal(t, 13, res.Standing.Score)
	assert.Equal(t, 12.5, res.Standing.Progress)
}

func TestQuizIgnoresCurrentStanding(t *testing.T) {
	g := NewDefaultGrader()
	res, err := g.Grade(Task{Mode: ModeQuiz, Keys: []string{"a", "b"}}, Standing{Progress: 100, Score: 100}, Answers{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Standing.Progress)
	assert.Equal(t, 0, res.Standing.Score)
}

func TestQuizWithoutQuestions(t *testing.T) {
	_, err := NewDefaultGrader().Grade(Task{Mode: ModeQuiz}, Standing{}, Answers{0: "a"})
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestStepsAdvanceAndSaturate(t *testing.T) {
	g := NewDefaultGrader()
	cur := Standing{Notified: true}
	want := []float64{25, 50, 75, 100, 100}
	for i, w := range want {
		res, err := g.Grade(Task{Mode: ModeSteps}, cur, Answers{0: "ignored"})
		require.NoError(t, err)
		assert.Equal(t, w, res.Standing.Progress, "submission %d", i+1)
		assert.Equal(t, int(w), res.Standing.Score)
		assert.False(t, res.Standing.Notified)
		assert.GreaterOrEqual(t, res.Standing.Progress, cur.Progress)
		cur = res.Standing
	}
	assert.Equal(t, TierMastery, Classify(cur.Score))
}

func TestUnknownMode(t *testing.T) {
	_, err := NewDefaultGrader().Grade(Task{Mode: "essay"}, Standing{}, nil)
	assert.Error(t, err)
}

func TestClassifyBoundaries(t *testing.T) {
	assert.Equal(t, TierMastery, Classify(100))
	assert.Equal(t, TierProficient, Classify(99))
	assert.Equal(t, TierProficient, Classify(60))
	assert.Equal(t, TierNeedsImprovement, Classify(59))
	assert.Equal(t, TierNeedsImprovement, Classify(0))
}

func TestTierMessage(t *testing.T) {
	assert.Equal(t, "Great job! You aced it!", TierMastery.Message())
	assert.Equal(t, "Good effort! Keep practicing.", TierProficient.Message())
	assert.Equal(t, "Needs improvement. Review the material and try again.", TierNeedsImprovement.Message())
}
