package dto

import "time"

// InteractResponse is the single reply shape of the interact endpoint. The
// question fields are only set when a new question (main or follow-up) was
// just assigned.
type InteractResponse struct {
	Reply    string   `json:"reply"`
	Question string   `json:"question,omitempty"`
	Rubric   []string `json:"rubric,omitempty"`
	QID      string   `json:"q_id,omitempty"`
}

type QuestionResponse struct {
	ID                   string    `json:"id"`
	Topic                string    `json:"topic"`
	Difficulty           int       `json:"difficulty"`
	Type                 string    `json:"type"`
	Prompt               string    `json:"prompt"`
	Rubric               []string  `json:"rubric"`
	ClarificationAllowed bool      `json:"clarification_allowed"`
	RequiresLLM          bool      `json:"requires_llm"`
	CreatedAt            time.Time `json:"created_at"`
}

type AddQuestionResponse struct {
	Message  string           `json:"message"`
	Question QuestionResponse `json:"question"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type DeleteSessionsResponse struct {
	OK           bool   `json:"ok"`
	DeletedCount int64  `json:"deleted_count"`
	Message      string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
