package models

// GenerateExamRequest represents the request body for assembling a random exam.
type GenerateExamRequest struct {
	QuestionCount int    `json:"questionCount,omitempty"` // defaults to the standard exam size
	Category      string `json:"category,omitempty"`      // optional question-pool filter
}

// SubmitExamRequest represents the request body for submitting a finished attempt.
// Answers maps question ID to the chosen option index.
type SubmitExamRequest struct {
	Answers         map[string]int `json:"answers" binding:"required"`
	DurationSeconds int            `json:"durationSeconds"`
}

// CreateCheckoutRequest represents the request body for starting a purchase.
// Kind selects between a subscription plan and an attempt bundle.
type CreateCheckoutRequest struct {
	Kind     string `json:"kind" binding:"required"` // "plan" or "bundle"
	PlanName string `json:"planName,omitempty"`      // required when Kind == "plan"
	Bundle   int    `json:"bundle,omitempty"`        // attempt count when Kind == "bundle"
}
