package lessonplan

// Config holds generation settings shared by every generator.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the generation defaults: long outputs at a moderate
// temperature.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   8000,
		Temperature: 0.7,
	}
}

// Purpose labels recorded with each LLM request.
const (
	PurposePlan         = "rpp"
	PurposeMaterials    = "materials"
	PurposeLKPD         = "lkpd"
	PurposeAssessment   = "assessment"
	PurposeQuestionBank = "question-bank"
)
