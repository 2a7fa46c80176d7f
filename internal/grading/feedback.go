package grading

// Tier classifies a score for feedback.
type Tier string

const (
	TierMastery          Tier = "mastery"
	TierProficient       Tier = "proficient"
	TierNeedsImprovement Tier = "needs_improvement"
)

// ProficientFrom is the lowest score in the proficient tier.
const ProficientFrom = 60

func Classify(score int) Tier {
	switch {
	case score == 100:
		return TierMastery
	case score >= ProficientFrom:
		return TierProficient
	default:
		return TierNeedsImprovement
	}
}

// Message is the student-facing feedback line for the tier.
func (t Tier) Message() string {
	switch t {
	case TierMastery:
		return "Great job! You aced it!"
	case TierProficient:
		return "Good effort! Keep practicing."
	default:
		return "Needs improvement. Review the material and try again."
	}
}
